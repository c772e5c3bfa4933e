package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nexus-crm/nexus/internal/analytics"
	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/pkg/logger"
	"github.com/nexus-crm/nexus/internal/scheduler"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store      *crm.Store
	scheduler  *scheduler.Scheduler
	aggregator *analytics.Aggregator
}

// NewHandlers creates a new Handlers instance
func NewHandlers(store *crm.Store, sched *scheduler.Scheduler, agg *analytics.Aggregator) *Handlers {
	return &Handlers{
		store:      store,
		scheduler:  sched,
		aggregator: agg,
	}
}

// HealthCheck reports liveness and verifies the database connection
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := h.store.DB().PingContext(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// internalError logs the underlying failure and returns a sanitized 500.
func internalError(w http.ResponseWriter, message string, err error) {
	logger.Error(message, "error", err)
	respondError(w, http.StatusInternalServerError, message)
}

// parseUUIDParam extracts and validates a UUID path parameter.
// Writes a 400 response and returns false when the value is malformed.
func parseUUIDParam(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// parseDay parses an optional YYYY-MM-DD query value, defaulting to today (UTC).
func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
