package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateInteraction records a touchpoint and updates the contact's
// last_contacted timestamp and interaction counter in one transaction.
func (s *Store) CreateInteraction(ctx context.Context, in *Interaction) error {
	in.ID = uuid.New()
	in.CreatedAt = time.Now()
	if in.OccurredAt.IsZero() {
		in.OccurredAt = in.CreatedAt
	}
	if in.Outcome == "" {
		in.Outcome = OutcomeNeutral
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO crm_interactions (id, user_id, contact_id, type, outcome, notes,
			follow_up_required, follow_up_completed_at, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		in.ID, in.UserID, in.ContactID, in.Type, in.Outcome, in.Notes,
		in.FollowUpRequired, in.FollowUpCompletedAt, in.OccurredAt, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE crm_contacts
		SET last_contacted = GREATEST(COALESCE(last_contacted, 'epoch'::timestamptz), $2),
		    interaction_count = interaction_count + 1,
		    updated_at = NOW()
		WHERE id = $1`,
		in.ContactID, in.OccurredAt)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	return tx.Commit()
}

// CompleteFollowUp marks an interaction's required follow-up as done
func (s *Store) CompleteFollowUp(ctx context.Context, interactionID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE crm_interactions SET follow_up_completed_at = NOW()
		WHERE id = $1 AND follow_up_required AND follow_up_completed_at IS NULL`,
		interactionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentInteractions returns a contact's most recent interactions, newest first
func (s *Store) RecentInteractions(ctx context.Context, contactID uuid.UUID, limit int) ([]*Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, contact_id, type, outcome, notes, follow_up_required,
			follow_up_completed_at, occurred_at, created_at
		FROM crm_interactions WHERE contact_id = $1
		ORDER BY occurred_at DESC LIMIT $2`,
		contactID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []*Interaction
	for rows.Next() {
		in := &Interaction{}
		err := rows.Scan(&in.ID, &in.UserID, &in.ContactID, &in.Type, &in.Outcome,
			&in.Notes, &in.FollowUpRequired, &in.FollowUpCompletedAt, &in.OccurredAt,
			&in.CreatedAt)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}

// CountInteractions returns the total number of interactions for a user
func (s *Store) CountInteractions(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crm_interactions WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountInteractionsBetween counts interactions dated within [start, end)
func (s *Store) CountInteractionsBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crm_interactions WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3`,
		userID, start, end).Scan(&count)
	return count, err
}

// CountInteractionsSince counts interactions dated on or after since
func (s *Store) CountInteractionsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crm_interactions WHERE user_id = $1 AND occurred_at >= $2`,
		userID, since).Scan(&count)
	return count, err
}

// GroupInteractionsBetween groups a user's interactions within [start, end)
// by the given column ("type" or "outcome").
func (s *Store) groupInteractionsBetween(ctx context.Context, userID uuid.UUID, start, end time.Time, column string) (map[string]int, error) {
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) FROM crm_interactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3 GROUP BY %s`,
		column, column)

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		groups[key] = count
	}
	return groups, rows.Err()
}

// GroupInteractionsByType groups interactions within [start, end) by type
func (s *Store) GroupInteractionsByType(ctx context.Context, userID uuid.UUID, start, end time.Time) (map[string]int, error) {
	return s.groupInteractionsBetween(ctx, userID, start, end, "type")
}

// GroupInteractionsByOutcome groups interactions within [start, end) by outcome
func (s *Store) GroupInteractionsByOutcome(ctx context.Context, userID uuid.UUID, start, end time.Time) (map[string]int, error) {
	return s.groupInteractionsBetween(ctx, userID, start, end, "outcome")
}

// DistinctChannelsSince counts the distinct interaction types a user has
// used on or after since.
func (s *Store) DistinctChannelsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT type) FROM crm_interactions WHERE user_id = $1 AND occurred_at >= $2`,
		userID, since).Scan(&count)
	return count, err
}

// MonthsWithActivity counts the distinct calendar months with at least one
// interaction within the trailing lookback window.
func (s *Store) MonthsWithActivity(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT date_trunc('month', occurred_at))
		FROM crm_interactions WHERE user_id = $1 AND occurred_at >= $2`,
		userID, since).Scan(&count)
	return count, err
}

// FollowUpCounts returns how many follow-ups were required and how many of
// those are completed for a user.
func (s *Store) FollowUpCounts(ctx context.Context, userID uuid.UUID) (required, completed int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE follow_up_required),
			COUNT(*) FILTER (WHERE follow_up_required AND follow_up_completed_at IS NOT NULL)
		FROM crm_interactions WHERE user_id = $1`,
		userID).Scan(&required, &completed)
	return required, completed, err
}
