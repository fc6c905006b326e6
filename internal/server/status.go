package server

import (
	"context"
	"sync"
	"time"

	"github.com/agenthands/steward/internal/logger"
	"github.com/agenthands/steward/internal/metrics"
)

type ConnState string

const (
	Connecting   ConnState = "connecting"
	Connected    ConnState = "connected"
	Disconnected ConnState = "disconnected"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	State     ConnState  `json:"state"`
	Error     string     `json:"error,omitempty"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

// StatusMonitor polls warehouse connectivity in the background. The state
// stays Connecting until the first check finishes.
type StatusMonitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	log      *logger.Logger

	mu     sync.RWMutex
	status Status
}

func NewStatusMonitor(p Pinger, interval time.Duration, log *logger.Logger) *StatusMonitor {
	if log == nil {
		log = logger.Nop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatusMonitor{
		pinger:   p,
		interval: interval,
		timeout:  10 * time.Second,
		log:      log.With("component", "status"),
		status:   Status{State: Connecting},
	}
}

func (m *StatusMonitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Check pings once and records the outcome.
func (m *StatusMonitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(ctx)
	now := time.Now().UTC()
	next := Status{State: Connected, CheckedAt: &now}
	if err != nil {
		next.State = Disconnected
		next.Error = err.Error()
	}

	m.mu.Lock()
	prev := m.status.State
	m.status = next
	m.mu.Unlock()

	metrics.SetWarehouseUp(err == nil)
	if prev != next.State {
		if err != nil {
			m.log.Warn("warehouse unreachable", "error", err)
		} else {
			m.log.Info("warehouse connected")
		}
	}
	return next
}

// Run checks immediately and then on every interval until ctx is done.
func (m *StatusMonitor) Run(ctx context.Context) {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
