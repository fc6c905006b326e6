package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/steward/internal/core/compare"
	"github.com/agenthands/steward/internal/core/model"
)

type State string

const (
	Loading   State = "loading"
	Empty     State = "empty"
	Reviewing State = "reviewing"
	Error     State = "error"
)

var (
	ErrBusy         = errors.New("another review action is in progress")
	ErrInvalidState = errors.New("action not allowed in current review state")
)

type DecisionInput struct {
	Candidate model.MatchCandidate
	Decision  model.Decision
	Notes     string
	Steward   string
}

// Store is the warehouse side of a review session.
type Store interface {
	PendingCandidates(ctx context.Context) ([]model.MatchCandidate, error)
	SourceRecord(ctx context.Context, recordID string) (*model.SourceRecord, error)
	// RecordDecision persists the candidate update and its audit entry as one
	// batch.
	RecordDecision(ctx context.Context, in DecisionInput) error
}

// Session walks one steward through the pending match queue. Mutating calls
// are single-flight: while one runs, the others fail with ErrBusy.
type Session struct {
	store Store
	busy  atomic.Bool

	mu         sync.Mutex
	steward    string
	state      State
	queue      []model.MatchCandidate
	cursor     int
	initialLen int
	resolved   int
	decided    map[string]bool
	pair       [2]*model.SourceRecord
	pairErr    error
	lastErr    error
}

func NewSession(store Store, steward string) *Session {
	return &Session{
		store:   store,
		steward: steward,
		state:   Loading,
		decided: make(map[string]bool),
	}
}

func (s *Session) SetSteward(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steward = name
}

func (s *Session) acquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *Session) release() {
	s.busy.Store(false)
}

// Load fetches the pending queue, ordered by composite score descending and
// candidate id ascending. Candidates decided earlier in this session are left
// out even if the warehouse still reports them as pending.
func (s *Session) Load(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	s.mu.Lock()
	s.state = Loading
	s.lastErr = nil
	s.mu.Unlock()

	candidates, err := s.store.PendingCandidates(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = Error
		s.lastErr = err
		s.queue = nil
		s.pair = [2]*model.SourceRecord{}
		s.mu.Unlock()
		return fmt.Errorf("failed to load review queue: %w", err)
	}

	s.mu.Lock()
	queue := make([]model.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !s.decided[c.CandidateID] {
			queue = append(queue, c)
		}
	}
	sortQueue(queue)
	s.queue = queue
	s.cursor = 0
	s.initialLen = len(queue)
	s.resolved = 0
	s.pair = [2]*model.SourceRecord{}
	s.pairErr = nil
	if len(queue) == 0 {
		s.state = Empty
		s.mu.Unlock()
		return nil
	}
	s.state = Reviewing
	current := queue[0]
	s.mu.Unlock()

	s.loadPair(ctx, current)
	return nil
}

func sortQueue(q []model.MatchCandidate) {
	sort.SliceStable(q, func(i, j int) bool {
		if q[i].Composite() != q[j].Composite() {
			return q[i].Composite() > q[j].Composite()
		}
		return q[i].CandidateID < q[j].CandidateID
	})
}

// Decide records a steward decision on a queued candidate. On failure the
// queue and cursor are untouched and the call may be retried.
func (s *Session) Decide(ctx context.Context, candidateID string, decision model.Decision, notes string) error {
	if !decision.Steward() {
		return fmt.Errorf("%w: unsupported decision %q", ErrInvalidState, decision)
	}
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	s.mu.Lock()
	if s.state != Reviewing {
		s.mu.Unlock()
		return ErrInvalidState
	}
	idx := s.indexOf(candidateID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: candidate %s is not in the queue", ErrInvalidState, candidateID)
	}
	in := DecisionInput{Candidate: s.queue[idx], Decision: decision, Notes: notes, Steward: s.steward}
	s.mu.Unlock()

	if err := s.store.RecordDecision(ctx, in); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return fmt.Errorf("failed to record decision: %w", err)
	}

	s.mu.Lock()
	s.lastErr = nil
	s.decided[candidateID] = true
	s.resolved++
	s.queue = append(s.queue[:idx], s.queue[idx+1:]...)
	if len(s.queue) == 0 {
		s.state = Empty
		s.cursor = 0
		s.pair = [2]*model.SourceRecord{}
		s.pairErr = nil
		s.mu.Unlock()
		return nil
	}
	if s.cursor > len(s.queue)-1 {
		s.cursor = len(s.queue) - 1
	}
	current := s.queue[s.cursor]
	s.mu.Unlock()

	s.loadPair(ctx, current)
	return nil
}

// Skip moves the cursor to the next candidate, wrapping around.
func (s *Session) Skip(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	s.mu.Lock()
	if s.state != Reviewing || len(s.queue) == 0 {
		s.mu.Unlock()
		return ErrInvalidState
	}
	prev := s.cursor
	s.cursor = (s.cursor + 1) % len(s.queue)
	current := s.queue[s.cursor]
	reload := s.cursor != prev || s.pair[0] == nil || s.pair[1] == nil
	s.mu.Unlock()

	if reload {
		s.loadPair(ctx, current)
	}
	return nil
}

// HandleKey maps y/n/s to confirm/reject/skip on the current candidate. Keys
// are ignored while a text input has focus, while another action is in
// flight, or outside the Reviewing state. handled reports whether the key
// triggered an action.
func (s *Session) HandleKey(ctx context.Context, key string, inputFocused bool, notes string) (handled bool, err error) {
	if inputFocused {
		return false, nil
	}

	var action func() error
	switch strings.ToLower(key) {
	case "y":
		action = func() error { return s.decideCurrent(ctx, model.DecisionConfirm, notes) }
	case "n":
		action = func() error { return s.decideCurrent(ctx, model.DecisionReject, notes) }
	case "s":
		action = func() error { return s.Skip(ctx) }
	default:
		return false, nil
	}

	if err := action(); err != nil {
		if errors.Is(err, ErrBusy) || errors.Is(err, ErrInvalidState) {
			return false, nil
		}
		return true, err
	}
	return true, nil
}

func (s *Session) decideCurrent(ctx context.Context, decision model.Decision, notes string) error {
	s.mu.Lock()
	if s.state != Reviewing || len(s.queue) == 0 {
		s.mu.Unlock()
		return ErrInvalidState
	}
	id := s.queue[s.cursor].CandidateID
	s.mu.Unlock()
	return s.Decide(ctx, id, decision, notes)
}

func (s *Session) indexOf(candidateID string) int {
	for i, c := range s.queue {
		if c.CandidateID == candidateID {
			return i
		}
	}
	return -1
}

// loadPair fetches both source records of c. A failure clears the pair and is
// shown on the snapshot; the session stays in Reviewing.
func (s *Session) loadPair(ctx context.Context, c model.MatchCandidate) {
	var pair [2]*model.SourceRecord
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range []string{c.SourceAID, c.SourceBID} {
		g.Go(func() error {
			rec, err := s.store.SourceRecord(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load source record %s: %w", id, err)
			}
			pair[i] = rec
			return nil
		})
	}
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Reviewing || len(s.queue) == 0 || s.queue[s.cursor].CandidateID != c.CandidateID {
		return
	}
	if err != nil {
		s.pair = [2]*model.SourceRecord{}
		s.pairErr = err
		return
	}
	s.pair = pair
	s.pairErr = nil
}

type Progress struct {
	Position int     `json:"position"`
	Total    int     `json:"total"`
	Resolved int     `json:"resolved"`
	Fraction float64 `json:"fraction"`
}

// Progress is measured against the queue length captured at the last Load,
// not the shrinking live queue.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

func (s *Session) progress() Progress {
	p := Progress{Total: s.initialLen, Resolved: s.resolved}
	switch {
	case s.initialLen == 0:
	case s.state == Empty:
		p.Position = s.initialLen
		p.Fraction = 1
	case s.state == Reviewing:
		p.Position = s.cursor + 1
		// resolved candidates left the queue, so they count toward the bar
		p.Fraction = math.Min(1, float64(s.resolved+s.cursor+1)/float64(s.initialLen))
	}
	return p
}

type Snapshot struct {
	State       State                             `json:"state"`
	Busy        bool                              `json:"busy"`
	Steward     string                            `json:"steward"`
	Cursor      int                               `json:"cursor"`
	QueueLength int                               `json:"queue_length"`
	Progress    Progress                          `json:"progress"`
	Candidate   *model.MatchCandidate             `json:"candidate,omitempty"`
	ScoreBands  map[model.ScoreField]compare.Band `json:"score_bands,omitempty"`
	SourceA     *model.SourceRecord               `json:"source_a,omitempty"`
	SourceB     *model.SourceRecord               `json:"source_b,omitempty"`
	Comparison  []compare.FieldComparison         `json:"comparison,omitempty"`
	PairError   string                            `json:"pair_error,omitempty"`
	Error       string                            `json:"error,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:       s.state,
		Busy:        s.busy.Load(),
		Steward:     s.steward,
		Cursor:      s.cursor,
		QueueLength: len(s.queue),
		Progress:    s.progress(),
		SourceA:     s.pair[0],
		SourceB:     s.pair[1],
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	if s.pairErr != nil {
		snap.PairError = s.pairErr.Error()
	}
	if s.state == Reviewing && len(s.queue) > 0 {
		c := s.queue[s.cursor]
		snap.Candidate = &c
		snap.ScoreBands = make(map[model.ScoreField]compare.Band, len(c.Scores))
		for f, v := range c.Scores {
			snap.ScoreBands[f] = compare.ScoreBand(v)
		}
		if s.pair[0] != nil && s.pair[1] != nil {
			snap.Comparison = compare.CompareRecords(s.pair[0], s.pair[1])
		}
	}
	return snap
}
