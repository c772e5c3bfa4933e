package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/scoring"
)

type createContactRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
	Company string    `json:"company"`
	Title   string    `json:"title"`
	Tags    crm.JSON  `json:"tags"`
}

// HandleCreateContact creates a contact for a user
func (h *Handlers) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	contact := &crm.Contact{
		UserID:  req.UserID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Title:   req.Title,
		Tags:    req.Tags,
	}
	if err := h.store.CreateContact(r.Context(), contact); err != nil {
		internalError(w, "failed to create contact", err)
		return
	}
	respondJSON(w, http.StatusCreated, contact)
}

// HandleGetContact returns a single contact with its recent interactions
func (h *Handlers) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "contactId"))
	if !ok {
		return
	}
	contact, err := h.store.GetContact(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			respondError(w, http.StatusNotFound, "contact not found")
			return
		}
		internalError(w, "failed to fetch contact", err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// HandleListContacts returns all contacts for a user
func (h *Handlers) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	contacts, err := h.store.ListContacts(r.Context(), userID)
	if err != nil {
		internalError(w, "failed to list contacts", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": contacts,
		"total":    len(contacts),
	})
}

// HandleContactScore returns the per-contact risk factor, outreach priority
// and the strength implied by recency of contact.
func (h *Handlers) HandleContactScore(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "contactId"))
	if !ok {
		return
	}
	contact, err := h.store.GetContact(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			respondError(w, http.StatusNotFound, "contact not found")
			return
		}
		internalError(w, "failed to fetch contact", err)
		return
	}

	now := time.Now()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id":         contact.ID,
		"risk_factor":        scoring.RiskFactor(contact, now),
		"priority":           scoring.Priority(contact, now),
		"days_since_contact": scoring.DaysSinceContact(contact, now),
		"current_strength":   contact.RelationshipStrength,
		"computed_strength":  scoring.StrengthForRecency(contact.LastContacted, now),
	})
}

type createInteractionRequest struct {
	UserID           uuid.UUID  `json:"user_id"`
	Type             string     `json:"type"`
	Outcome          string     `json:"outcome"`
	Notes            string     `json:"notes"`
	FollowUpRequired bool       `json:"follow_up_required"`
	OccurredAt       *time.Time `json:"occurred_at"`
}

// HandleCreateInteraction records an interaction against a contact and bumps
// the contact's last_contacted and interaction_count.
func (h *Handlers) HandleCreateInteraction(w http.ResponseWriter, r *http.Request) {
	contactID, ok := parseUUIDParam(w, chi.URLParam(r, "contactId"))
	if !ok {
		return
	}
	var req createInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Type == "" {
		respondError(w, http.StatusBadRequest, "type is required")
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	interaction := &crm.Interaction{
		UserID:           req.UserID,
		ContactID:        contactID,
		Type:             req.Type,
		Outcome:          req.Outcome,
		Notes:            req.Notes,
		FollowUpRequired: req.FollowUpRequired,
		OccurredAt:       occurredAt,
	}
	if err := h.store.CreateInteraction(r.Context(), interaction); err != nil {
		internalError(w, "failed to create interaction", err)
		return
	}
	respondJSON(w, http.StatusCreated, interaction)
}

// HandleCompleteFollowUp marks an interaction's follow-up as done
func (h *Handlers) HandleCompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "interactionId"))
	if !ok {
		return
	}
	if err := h.store.CompleteFollowUp(r.Context(), id); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			respondError(w, http.StatusNotFound, "interaction not found")
			return
		}
		internalError(w, "failed to complete follow-up", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

type createNoteRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Body   string    `json:"body"`
}

// HandleCreateNote attaches a note to a contact
func (h *Handlers) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	contactID, ok := parseUUIDParam(w, chi.URLParam(r, "contactId"))
	if !ok {
		return
	}
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Body == "" {
		respondError(w, http.StatusBadRequest, "body is required")
		return
	}
	note := &crm.Note{
		UserID:    req.UserID,
		ContactID: contactID,
		Body:      req.Body,
	}
	if err := h.store.CreateNote(r.Context(), note); err != nil {
		internalError(w, "failed to create note", err)
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

// HandleListNotes returns all notes for a contact, newest first
func (h *Handlers) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	contactID, ok := parseUUIDParam(w, chi.URLParam(r, "contactId"))
	if !ok {
		return
	}
	notes, err := h.store.ListNotes(r.Context(), contactID)
	if err != nil {
		internalError(w, "failed to list notes", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
		"total": len(notes),
	})
}

// HandleDeleteNote removes a note
func (h *Handlers) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "noteId"))
	if !ok {
		return
	}
	if err := h.store.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			respondError(w, http.StatusNotFound, "note not found")
			return
		}
		internalError(w, "failed to delete note", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
