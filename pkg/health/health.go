// Package health implements liveness and readiness probes for the API server.
//
// Probes are registered before Start and then evaluated on a shared ticker.
// Consecutive-failure and consecutive-success thresholds keep a single slow
// database ping from flipping readiness off and on.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type probeKind int

const (
	liveness probeKind = iota
	readiness
)

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

// probe is one registered check plus its evaluation state. The streak
// counters are touched only by the scheduler goroutine; ok and lastErr are
// shared with the HTTP handlers and use atomics.
type probe struct {
	name    string
	kind    probeKind
	timeout time.Duration
	check   CheckFunc

	ok      atomic.Bool
	lastErr atomic.Pointer[error]

	failStreak int
	passStreak int
}

func (p *probe) evaluate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)
	p.lastErr.Store(&err)

	if err != nil {
		p.passStreak = 0
		p.failStreak++
		if p.failStreak >= defaultFailureThreshold {
			p.ok.Store(false)
		}
		return
	}

	p.failStreak = 0
	p.passStreak++
	if p.passStreak >= defaultSuccessThreshold {
		p.ok.Store(true)
	}
}

func (p *probe) failure() (string, bool) {
	if p.ok.Load() {
		return "", false
	}
	if errp := p.lastErr.Load(); errp != nil && *errp != nil {
		return (*errp).Error(), true
	}
	return "check is unhealthy", true
}

// Health evaluates registered probes and serves the /livez and /readyz
// endpoints.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New returns a Health with no probes registered. The service reports
// not-ready until SetReady(true) is called.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a probe gating /livez. Use it for process-level
// problems such as goroutine leaks or runaway GC pauses.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, liveness, timeout, check)
}

// AddReadinessCheck registers a probe gating /readyz. Use it for
// dependencies the service needs before it can take traffic, the database
// above all.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, readiness, timeout, check)
}

func (h *Health) add(name string, kind probeKind, timeout time.Duration, check CheckFunc) {
	p := &probe{name: name, kind: kind, timeout: timeout, check: check}
	// Optimistic start: a probe counts as healthy until it has failed
	// defaultFailureThreshold times in a row.
	p.ok.Store(true)

	h.mu.Lock()
	h.probes = append(h.probes, p)
	h.mu.Unlock()
}

// Start launches the scheduler goroutine. Every probe is evaluated once
// immediately and then on each tick. Register all probes before calling
// Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, len(h.probes))
	copy(probes, h.probes)
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for _, p := range probes {
			p.evaluate(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, p := range probes {
					p.evaluate(ctx)
				}
			}
		}
	}()
}

// Stop cancels the scheduler. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Call with true once startup is
// complete and with false at the start of graceful shutdown so load
// balancers drain the instance.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	for _, p := range h.snapshot(readiness) {
		if _, failed := p.failure(); failed {
			return false
		}
	}
	return true
}

func (h *Health) snapshot(kind probeKind) []*probe {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*probe, 0, len(h.probes))
	for _, p := range h.probes {
		if p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while every liveness probe passes, 503
// with the failing probes otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, h.failures(liveness))
}

// ReadyEndpoint serves /readyz: 200 only when SetReady(true) has been called
// and every readiness probe passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(readiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	h.respond(w, failures)
}

func (h *Health) failures(kind probeKind) map[string]string {
	failures := make(map[string]string)
	for _, p := range h.snapshot(kind) {
		if msg, failed := p.failure(); failed {
			failures[p.name] = msg
		}
	}
	return failures
}

func (h *Health) respond(w http.ResponseWriter, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
