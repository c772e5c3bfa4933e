package crm

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateContact creates a new contact
func (s *Store) CreateContact(ctx context.Context, c *Contact) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	if c.RelationshipStrength == "" {
		c.RelationshipStrength = StrengthWeak
	}

	query := `INSERT INTO crm_contacts (id, user_id, name, email, phone, company, title,
		relationship_strength, last_contacted, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.Email, c.Phone,
		c.Company, c.Title, c.RelationshipStrength, c.LastContacted, c.Tags,
		c.CreatedAt, c.UpdatedAt)
	return err
}

// GetContact retrieves a contact by ID along with its most recent
// interactions (bounded by RecentInteractionLimit).
func (s *Store) GetContact(ctx context.Context, id uuid.UUID) (*Contact, error) {
	query := `SELECT id, user_id, name, email, phone, company, title, relationship_strength,
		last_contacted, interaction_count, tags, created_at, updated_at
		FROM crm_contacts WHERE id = $1`

	c := &Contact{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Title,
		&c.RelationshipStrength, &c.LastContacted, &c.InteractionCount, &c.Tags,
		&c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	interactions, err := s.RecentInteractions(ctx, id, RecentInteractionLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent interactions: %w", err)
	}
	c.Interactions = interactions
	return c, nil
}

// ListContacts retrieves all contacts for a user, most recently contacted first
func (s *Store) ListContacts(ctx context.Context, userID uuid.UUID) ([]*Contact, error) {
	query := `SELECT id, user_id, name, email, phone, company, title, relationship_strength,
		last_contacted, interaction_count, created_at, updated_at
		FROM crm_contacts WHERE user_id = $1
		ORDER BY last_contacted DESC NULLS LAST, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		c := &Contact{}
		err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company,
			&c.Title, &c.RelationshipStrength, &c.LastContacted, &c.InteractionCount,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// TouchLastContacted advances a contact's last_contacted timestamp.
// It never moves the timestamp backwards.
func (s *Store) TouchLastContacted(ctx context.Context, contactID uuid.UUID, when time.Time) error {
	query := `UPDATE crm_contacts
		SET last_contacted = GREATEST(COALESCE(last_contacted, 'epoch'::timestamptz), $2),
		    updated_at = NOW()
		WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, contactID, when)
	return err
}

// UpdateStrength sets a contact's relationship strength tier
func (s *Store) UpdateStrength(ctx context.Context, contactID uuid.UUID, strength string) error {
	query := `UPDATE crm_contacts SET relationship_strength = $2, updated_at = NOW() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, contactID, strength)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountContacts returns the total number of contacts for a user
func (s *Store) CountContacts(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crm_contacts WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountContactsCreatedBetween counts contacts created within [start, end)
func (s *Store) CountContactsCreatedBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crm_contacts WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`,
		userID, start, end).Scan(&count)
	return count, err
}

// CountContactsByStrength groups a user's contacts by current strength tier
func (s *Store) CountContactsByStrength(ctx context.Context, userID uuid.UUID) (RelationshipDistribution, error) {
	var dist RelationshipDistribution
	rows, err := s.db.QueryContext(ctx,
		`SELECT relationship_strength, COUNT(*) FROM crm_contacts
		WHERE user_id = $1 GROUP BY relationship_strength`, userID)
	if err != nil {
		return dist, err
	}
	defer rows.Close()

	for rows.Next() {
		var strength string
		var count int
		if err := rows.Scan(&strength, &count); err != nil {
			return dist, err
		}
		switch strength {
		case StrengthStrong:
			dist.Strong = count
		case StrengthMedium:
			dist.Medium = count
		case StrengthWeak:
			dist.Weak = count
		case StrengthAtRisk:
			dist.AtRisk = count
		}
	}
	return dist, rows.Err()
}

// CountActiveContacts counts contacts whose last_contacted falls within the
// trailing engagement window starting at since.
func (s *Store) CountActiveContacts(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crm_contacts WHERE user_id = $1 AND last_contacted >= $2`,
		userID, since).Scan(&count)
	return count, err
}
