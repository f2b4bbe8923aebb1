package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker reports the state of the current CLI session on /health
type HealthChecker struct {
	mu            sync.RWMutex
	lastRun       time.Time
	runsCompleted int
	lastReturn    float64
	errors        []string
}

type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	LastRun       time.Time `json:"last_run"`
	RunsCompleted int       `json:"runs_completed"`
	LastReturn    float64   `json:"last_return_percent"`
	Uptime        string    `json:"uptime"`
	Errors        []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// RecordRun notes a completed backtest
func (h *HealthChecker) RecordRun(returnPercent float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = time.Now()
	h.runsCompleted++
	h.lastReturn = returnPercent
}

// RecordError keeps the last ten error messages
func (h *HealthChecker) RecordError(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err.Error())
	if len(h.errors) > 10 {
		h.errors = h.errors[len(h.errors)-10:]
	}
}

// Status builds the current health snapshot
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	switch {
	case len(h.errors) > 0:
		status = "unhealthy"
	case h.runsCompleted == 0:
		status = "starting"
	}

	return HealthStatus{
		Status:        status,
		Timestamp:     time.Now(),
		LastRun:       h.lastRun,
		RunsCompleted: h.runsCompleted,
		LastReturn:    h.lastReturn,
		Uptime:        time.Since(startTime).String(),
		Errors:        append([]string(nil), h.errors...),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(health)
}
