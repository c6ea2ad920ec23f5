package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const checkTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// checker reports nil when its component can serve requests.
type checker func(ctx context.Context) error

type HealthHandler struct {
	checkers map[string]checker
}

// NewHealthHandler checks the store under the name of its driver.
func NewHealthHandler(db *sql.DB, driver string) *HealthHandler {
	return &HealthHandler{checkers: map[string]checker{driver: storeChecker(db)}}
}

func storeChecker(db *sql.DB) checker {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("store not configured")
		}
		return db.PingContext(ctx)
	}
}

func runCheck(ctx context.Context, c checker) CheckEntry {
	start := time.Now()
	entry := CheckEntry{Status: HealthHealthy}
	if err := c(ctx); err != nil {
		entry.Status, entry.Message = HealthUnhealthy, err.Error()
	}
	entry.CheckedAt = time.Now()
	entry.DurationMs = time.Since(start).Milliseconds()
	return entry
}

// Ping only says the process is up.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// Check runs every checker. Any failure turns the answer into a 503; mirrored reads keep working.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := HealthResponse{Status: HealthHealthy, Components: make(map[string]CheckEntry, len(h.checkers))}
	for name, c := range h.checkers {
		entry := runCheck(ctx, c)
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
		resp.Components[name] = entry
	}
	resp.CheckedAt = time.Now()

	code := http.StatusOK
	if resp.Status == HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
