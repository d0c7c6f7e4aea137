// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"sync"
	"time"
)

// Checker reports whether one dependency is usable.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the body of both probes.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status    Status `json:"status"`
	Critical  bool   `json:"critical"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	critical bool
}

// Handler holds the named dependency checks behind the readiness probe.
type Handler struct {
	timeout time.Duration

	mu       sync.RWMutex
	checkers map[string]registration
}

func NewHandler() *Handler {
	return &Handler{
		timeout:  5 * time.Second,
		checkers: make(map[string]registration),
	}
}

// RegisterCritical adds a check whose failure makes the service unready.
func (h *Handler) RegisterCritical(name string, check Checker) {
	h.register(name, registration{check: check, critical: true})
}

// RegisterNonCritical adds a check whose failure only degrades readiness.
// The store keeps serving collections while the event broker is away.
func (h *Handler) RegisterNonCritical(name string, check Checker) {
	h.register(name, registration{check: check})
}

func (h *Handler) register(name string, reg registration) {
	h.mu.Lock()
	h.checkers[name] = reg
	h.mu.Unlock()
}

// LivenessHandler answers 200 while the process can serve HTTP at all.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// ReadinessHandler runs every check concurrently. A failed critical check
// answers 503 "down"; failed non-critical checks answer 200 "degraded".
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		resp := Response{Status: StatusUp, Timestamp: time.Now().UTC(), Checks: h.run(ctx)}
		for _, c := range resp.Checks {
			switch {
			case c.Status == StatusUp:
			case c.Critical:
				resp.Status = StatusDown
			case resp.Status == StatusUp:
				resp.Status = StatusDegraded
			}
		}

		code := http.StatusOK
		if resp.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, code, resp)
	}
}

func (h *Handler) run(ctx context.Context) map[string]CheckResult {
	h.mu.RLock()
	checkers := maps.Clone(h.checkers)
	h.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checkers))
	)
	for name, reg := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := reg.check(ctx)
			res := CheckResult{Status: StatusUp, Critical: reg.critical, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status, res.Error = StatusDown, err.Error()
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

func writeResponse(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
