package crm

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CreateMessage creates a new outbound message in pending status
func (s *Store) CreateMessage(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	if m.Status == "" {
		m.Status = MessagePending
	}
	if m.Type == "" {
		m.Type = ChannelEmail
	}

	query := `INSERT INTO crm_messages (id, user_id, contact_id, content, type, status,
		reply_due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query, m.ID, m.UserID, m.ContactID, m.Content,
		m.Type, m.Status, m.ReplyDueAt, m.CreatedAt)
	return err
}

// GetMessage retrieves a message by ID
func (s *Store) GetMessage(ctx context.Context, id uuid.UUID) (*Message, error) {
	query := `SELECT id, user_id, contact_id, content, type, status,
		COALESCE(reply_content, ''), replied_at, reply_due_at, created_at
		FROM crm_messages WHERE id = $1`

	m := &Message{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.UserID, &m.ContactID, &m.Content, &m.Type, &m.Status,
		&m.ReplyContent, &m.RepliedAt, &m.ReplyDueAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return m, err
}

// SetReplyDue persists the scheduled fire time for a pending message so
// timers survive a restart. Passing nil clears it (cancellation).
func (s *Store) SetReplyDue(ctx context.Context, id uuid.UUID, due *time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE crm_messages SET reply_due_at = $2 WHERE id = $1 AND status = $3`,
		id, due, MessagePending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkReplied performs the compare-and-set transition pending → responded.
// Returns (false, nil) when the message was not pending anymore, which
// callers treat as losing the schedule/cancel race.
func (s *Store) MarkReplied(ctx context.Context, id uuid.UUID, replyContent string, repliedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE crm_messages
		SET status = $2, reply_content = $3, replied_at = $4, reply_due_at = NULL
		WHERE id = $1 AND status = $5`,
		id, MessageResponded, replyContent, repliedAt, MessagePending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkNoResponseBefore CAS-transitions pending messages created before the
// cutoff to no_response. Returns how many rows moved.
func (s *Store) MarkNoResponseBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE crm_messages SET status = $1, reply_due_at = NULL
		WHERE status = $2 AND created_at < $3`,
		MessageNoResponse, MessagePending, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListPendingScheduled returns pending messages that have a persisted
// reply_due_at, used to re-arm timers after a restart.
func (s *Store) ListPendingScheduled(ctx context.Context) ([]*Message, error) {
	query := `SELECT id, user_id, contact_id, content, type, status,
		COALESCE(reply_content, ''), replied_at, reply_due_at, created_at
		FROM crm_messages
		WHERE status = $1 AND reply_due_at IS NOT NULL
		ORDER BY reply_due_at`

	rows, err := s.db.QueryContext(ctx, query, MessagePending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		err := rows.Scan(&m.ID, &m.UserID, &m.ContactID, &m.Content, &m.Type,
			&m.Status, &m.ReplyContent, &m.RepliedAt, &m.ReplyDueAt, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MessageStatsForUser aggregates a user's messages: counts by status plus
// average response latency over responded messages.
func (s *Store) MessageStatsForUser(ctx context.Context, userID uuid.UUID) (*MessageStats, error) {
	stats := &MessageStats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'responded'),
			COUNT(*) FILTER (WHERE status = 'no_response'),
			COALESCE(AVG(EXTRACT(EPOCH FROM replied_at - created_at)) FILTER (WHERE status = 'responded'), 0)
		FROM crm_messages WHERE user_id = $1`,
		userID).Scan(&stats.Total, &stats.Pending, &stats.Responded, &stats.NoResponse,
		&stats.AvgResponseSeconds)
	if err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		stats.ResponseRate = float64(stats.Responded) / float64(stats.Total) * 100
	}
	return stats, nil
}
