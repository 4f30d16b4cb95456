package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Status represents the health status of the oracle
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// RunRecord is the outcome of the last run.
type RunRecord struct {
	RunID   string    `json:"run_id,omitempty"`
	Outcome string    `json:"outcome"`
	Period  uint64    `json:"period,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// HealthReport is served on the health endpoints.
type HealthReport struct {
	Status      Status     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	Uptime      string     `json:"uptime"`
	Node        string     `json:"node"`
	NodeError   string     `json:"node_error,omitempty"`
	LastRun     *RunRecord `json:"last_run,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}

// HealthChecker tracks run outcomes and node reachability.
type HealthChecker struct {
	client       ChainClient
	maxStaleness time.Duration
	timeout      time.Duration
	started      time.Time

	mu          sync.RWMutex
	last        *RunRecord
	lastSuccess time.Time
}

// NewHealthChecker creates a checker. The oracle is degraded once no run has
// succeeded for maxStaleness after a failure.
func NewHealthChecker(client ChainClient, maxStaleness time.Duration) *HealthChecker {
	return &HealthChecker{
		client:       client,
		maxStaleness: maxStaleness,
		timeout:      5 * time.Second,
		started:      time.Now(),
	}
}

// Observe records the outcome of a run. It has the signature of Runner.OnRun.
func (h *HealthChecker) Observe(res Result, err error) {
	record := &RunRecord{RunID: res.RunID, Period: res.Period, At: time.Now()}
	switch {
	case errors.Is(err, ErrNothingToDo):
		record.Outcome = "skipped"
	case err != nil:
		record.Outcome = "failed"
		record.Error = err.Error()
	default:
		record.Outcome = "written"
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = record
	if err == nil || errors.Is(err, ErrNothingToDo) {
		h.lastSuccess = record.At
	}
}

// Check builds a report, probing the node.
func (h *HealthChecker) Check(ctx context.Context) HealthReport {
	now := time.Now()
	report := HealthReport{
		Status:    StatusHealthy,
		Timestamp: now,
		Uptime:    now.Sub(h.started).Round(time.Second).String(),
		Node:      "reachable",
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if _, err := h.client.Period(ctx); err != nil {
		report.Status = StatusUnhealthy
		report.Node = "unreachable"
		report.NodeError = err.Error()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last != nil {
		last := *h.last
		report.LastRun = &last
	}
	if !h.lastSuccess.IsZero() {
		success := h.lastSuccess
		report.LastSuccess = &success
	}
	if report.Status == StatusHealthy && h.last != nil && h.last.Outcome == "failed" {
		since := h.started
		if !h.lastSuccess.IsZero() {
			since = h.lastSuccess
		}
		if now.Sub(since) > h.maxStaleness {
			report.Status = StatusDegraded
		}
	}
	return report
}

// RegisterRoutes registers the health routes
func (h *HealthChecker) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.handleReady).Methods(http.MethodGet)
}

// handleHealth is a liveness check
func (h *HealthChecker) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": StatusHealthy,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// handleReady reports 503 unless the node is reachable and runs succeed
func (h *HealthChecker) handleReady(w http.ResponseWriter, r *http.Request) {
	report := h.Check(r.Context())
	code := http.StatusOK
	if report.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
