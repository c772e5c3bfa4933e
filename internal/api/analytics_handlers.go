package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nexus-crm/nexus/internal/insights"
	"github.com/nexus-crm/nexus/internal/scoring"
)

// HandleGenerateDailyAnalytics computes (or recomputes) the daily snapshot
// for a user. Accepts an optional ?date=YYYY-MM-DD, defaulting to today.
func (h *Handlers) HandleGenerateDailyAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	snap, err := h.aggregator.Generate(r.Context(), userID, day)
	if err != nil {
		internalError(w, "failed to generate analytics", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleGetDailyAnalytics reads a previously generated snapshot without
// recomputing. 404 when that day has not been processed.
func (h *Handlers) HandleGetDailyAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	snap, err := h.store.GetSnapshot(r.Context(), userID, day)
	if err != nil {
		internalError(w, "failed to load analytics", err)
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "no snapshot for that day")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleNetworkingScore returns the composite networking score with its
// per-component breakdown.
func (h *Handlers) HandleNetworkingScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	inputs, err := h.aggregator.NetworkingInputs(r.Context(), userID, time.Now())
	if err != nil {
		internalError(w, "failed to compute networking score", err)
		return
	}
	respondJSON(w, http.StatusOK, scoring.ComputeNetworkingScore(inputs))
}

// HandleInsights returns prioritized insights derived from the current
// networking score and the latest daily snapshot. The snapshot is optional;
// a user with no snapshots still gets the network summary.
func (h *Handlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	now := time.Now()

	inputs, err := h.aggregator.NetworkingInputs(r.Context(), userID, now)
	if err != nil {
		internalError(w, "failed to compute networking score", err)
		return
	}
	score := scoring.ComputeNetworkingScore(inputs)

	snap, err := h.store.GetSnapshot(r.Context(), userID, now)
	if err != nil {
		internalError(w, "failed to load daily snapshot", err)
		return
	}
	if snap == nil {
		// Today's snapshot may not have been generated yet; fall back to
		// yesterday's so insights reflect the last computed day.
		snap, err = h.store.GetPreviousSnapshot(r.Context(), userID, now)
		if err != nil {
			internalError(w, "failed to load daily snapshot", err)
			return
		}
	}

	list := insights.Generate(score, snap)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"insights": list,
		"total":    len(list),
	})
}
