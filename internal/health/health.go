// Package health tracks whether the configured model has answered.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/abhisek/quizgen/internal/llm"
)

// Status values reported by Check.
const (
	StatusRunning = "running"
	StatusError   = "error"
)

const (
	DefaultProbeTimeout  = 3 * time.Second
	DefaultProbeInterval = 10 * time.Second
)

// Report is the health endpoint payload.
type Report struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Config tunes a Monitor.
type Config struct {
	// ProbeTimeout bounds a single probe call.
	ProbeTimeout time.Duration
	// ProbeInterval is the minimum gap between probes. Checks inside
	// the window return the last result.
	ProbeInterval time.Duration
}

// Monitor answers health checks. model_loaded becomes true after the
// first successful model call, whether a probe or a real generation,
// and stays true.
type Monitor struct {
	provider llm.Provider
	cfg      Config
	now      func() time.Time

	mu        sync.Mutex
	loaded    bool
	lastProbe time.Time
	lastErr   error
	// inflight is closed when the running probe finishes.
	inflight chan struct{}
}

// NewMonitor creates a Monitor probing p. Zero Config fields take the
// defaults.
func NewMonitor(p llm.Provider, cfg Config) *Monitor {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = DefaultProbeInterval
	}
	return &Monitor{provider: p, cfg: cfg, now: time.Now}
}

// MarkLoaded records that the model answered a real request.
func (m *Monitor) MarkLoaded() {
	m.mu.Lock()
	m.loaded = true
	m.lastErr = nil
	m.mu.Unlock()
}

// Loaded reports whether the model has answered at least once.
func (m *Monitor) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Check returns the current report. It probes the model at most once
// per ProbeInterval and never blocks longer than ProbeTimeout.
// Concurrent checks share one probe, and the lock is not held while it
// runs.
func (m *Monitor) Check(ctx context.Context) Report {
	m.mu.Lock()
	if m.loaded {
		m.mu.Unlock()
		return Report{Status: StatusRunning, ModelLoaded: true}
	}
	if m.provider == nil {
		m.mu.Unlock()
		return Report{Status: StatusError}
	}

	done := m.inflight
	now := m.now()
	if done == nil && (m.lastProbe.IsZero() || now.Sub(m.lastProbe) >= m.cfg.ProbeInterval) {
		m.lastProbe = now
		done = make(chan struct{})
		m.inflight = done
		m.mu.Unlock()

		err := m.probe(ctx)

		m.mu.Lock()
		if !m.loaded {
			m.lastErr = err
			m.loaded = err == nil
		}
		m.inflight = nil
		close(done)
		m.mu.Unlock()
	} else {
		m.mu.Unlock()
		if done != nil {
			select {
			case <-done:
			case <-ctx.Done():
			}
		}
	}

	return m.report()
}

func (m *Monitor) report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.loaded:
		return Report{Status: StatusRunning, ModelLoaded: true}
	case m.lastErr != nil, m.inflight != nil, m.lastProbe.IsZero():
		return Report{Status: StatusError}
	}
	return Report{Status: StatusRunning}
}

// Err returns the error from the last probe, if any.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Monitor) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()
	ctx = llm.WithPurpose(ctx, llm.PurposeHealthProbe)

	req := llm.Prompt("You are a health check. Reply with the single word OK.", "ping", nil)
	req.MaxTokens = 16
	_, err := m.provider.Generate(ctx, req)
	return err
}
