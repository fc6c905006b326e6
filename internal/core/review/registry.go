package review

import (
	"context"
	"sync"
	"time"

	"github.com/agenthands/steward/internal/metrics"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry owns one Session per browser session id. Sessions share nothing
// but the store.
type Registry struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(store Store, ttl time.Duration) *Registry {
	return &Registry{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the session for id, creating it on first use, and records the
// steward acting through it.
func (r *Registry) Get(id, steward string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		e = &entry{session: NewSession(r.store, steward)}
		r.sessions[id] = e
		metrics.SetReviewSessions(len(r.sessions))
	} else {
		e.session.SetSteward(steward)
	}
	e.lastSeen = r.now()
	return e.session
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many it
// removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.SetReviewSessions(len(r.sessions))
	return removed
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
