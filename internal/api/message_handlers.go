package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/scheduler"
)

type createMessageRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	ContactID uuid.UUID `json:"contact_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
}

// HandleCreateMessage records an outbound message and immediately schedules
// its simulated reply.
func (h *Handlers) HandleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == uuid.Nil || req.ContactID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "user_id and contact_id are required")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	msgType := req.Type
	if msgType == "" {
		msgType = crm.ChannelEmail
	}

	msg := &crm.Message{
		UserID:    req.UserID,
		ContactID: req.ContactID,
		Content:   req.Content,
		Type:      msgType,
	}
	if err := h.store.CreateMessage(r.Context(), msg); err != nil {
		internalError(w, "failed to create message", err)
		return
	}
	if err := h.scheduler.Schedule(r.Context(), msg.ID); err != nil {
		// The message exists; surface the scheduling failure without rolling back.
		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": msg,
			"warning": "reply scheduling failed",
		})
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// HandleGetMessage returns a single message
func (h *Handlers) HandleGetMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "messageId"))
	if !ok {
		return
	}
	msg, err := h.store.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			respondError(w, http.StatusNotFound, "message not found")
			return
		}
		internalError(w, "failed to fetch message", err)
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

// HandleScheduleReply arms (or re-arms) the simulated reply for a pending message
func (h *Handlers) HandleScheduleReply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "messageId"))
	if !ok {
		return
	}
	if err := h.scheduler.Schedule(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, crm.ErrNotFound):
			respondError(w, http.StatusNotFound, "message not found")
		case errors.Is(err, scheduler.ErrNotPending):
			respondError(w, http.StatusConflict, "message is not pending")
		default:
			internalError(w, "failed to schedule reply", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "scheduled"})
}

// HandleCancelReply cancels a scheduled reply. Cancelling a message that has
// already fired or was never scheduled is a no-op.
func (h *Handlers) HandleCancelReply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "messageId"))
	if !ok {
		return
	}
	if err := h.scheduler.Cancel(r.Context(), id); err != nil {
		internalError(w, "failed to cancel reply", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// HandleMessageAnalytics returns response-rate aggregates for a user's messages
func (h *Handlers) HandleMessageAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	stats, err := h.scheduler.UserAnalytics(r.Context(), userID)
	if err != nil {
		internalError(w, "failed to compute message analytics", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
