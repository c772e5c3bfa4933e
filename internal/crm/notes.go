package crm

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CreateNote attaches a note to a contact
func (s *Store) CreateNote(ctx context.Context, n *Note) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crm_notes (id, user_id, contact_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.ContactID, n.Body, n.CreatedAt, n.UpdatedAt)
	return err
}

// GetNote retrieves a note by ID
func (s *Store) GetNote(ctx context.Context, id uuid.UUID) (*Note, error) {
	n := &Note{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, contact_id, body, created_at, updated_at
		FROM crm_notes WHERE id = $1`, id).Scan(
		&n.ID, &n.UserID, &n.ContactID, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return n, err
}

// ListNotes retrieves all notes for a contact, newest first
func (s *Store) ListNotes(ctx context.Context, contactID uuid.UUID) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, contact_id, body, created_at, updated_at
		FROM crm_notes WHERE contact_id = $1 ORDER BY created_at DESC`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n := &Note{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.ContactID, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note
func (s *Store) DeleteNote(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM crm_notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
