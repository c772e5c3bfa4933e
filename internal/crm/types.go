package crm

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Relationship strength constants
const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
	StrengthAtRisk = "at_risk"
)

// Message status constants
const (
	MessagePending    = "pending"
	MessageResponded  = "responded"
	MessageNoResponse = "no_response"
)

// Channel constants, shared by messages and interactions
const (
	ChannelEmail    = "email"
	ChannelLinkedIn = "linkedin"
	ChannelPhone    = "phone"
	ChannelSMS      = "sms"
	ChannelMeeting  = "meeting"
)

// Interaction outcome constants
const (
	OutcomePositive = "positive"
	OutcomeNeutral  = "neutral"
	OutcomeNegative = "negative"
)

// RecentInteractionLimit bounds how many interactions are retained on a
// loaded Contact.
const RecentInteractionLimit = 5

// JSON helper type for JSONB fields
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, j)
}

// Contact represents a person in a user's network
type Contact struct {
	ID                   uuid.UUID      `json:"id" db:"id"`
	UserID               uuid.UUID      `json:"user_id" db:"user_id"`
	Name                 string         `json:"name" db:"name"`
	Email                string         `json:"email" db:"email"`
	Phone                string         `json:"phone" db:"phone"`
	Company              string         `json:"company" db:"company"`
	Title                string         `json:"title" db:"title"`
	RelationshipStrength string         `json:"relationship_strength" db:"relationship_strength"`
	LastContacted        *time.Time     `json:"last_contacted" db:"last_contacted"`
	InteractionCount     int            `json:"interaction_count" db:"interaction_count"`
	Interactions         []*Interaction `json:"interactions,omitempty"`
	Tags                 JSON           `json:"tags" db:"tags"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" db:"updated_at"`
}

// Interaction represents a single touchpoint with a contact
type Interaction struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	UserID              uuid.UUID  `json:"user_id" db:"user_id"`
	ContactID           uuid.UUID  `json:"contact_id" db:"contact_id"`
	Type                string     `json:"type" db:"type"`
	Outcome             string     `json:"outcome" db:"outcome"`
	Notes               string     `json:"notes" db:"notes"`
	FollowUpRequired    bool       `json:"follow_up_required" db:"follow_up_required"`
	FollowUpCompletedAt *time.Time `json:"follow_up_completed_at" db:"follow_up_completed_at"`
	OccurredAt          time.Time  `json:"occurred_at" db:"occurred_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}

// Message represents an outbound message with a simulated reply lifecycle.
// Status transitions exactly once: pending → responded or pending → no_response.
type Message struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	ContactID    uuid.UUID  `json:"contact_id" db:"contact_id"`
	Content      string     `json:"content" db:"content"`
	Type         string     `json:"type" db:"type"`
	Status       string     `json:"status" db:"status"`
	ReplyContent string     `json:"reply_content" db:"reply_content"`
	RepliedAt    *time.Time `json:"replied_at" db:"replied_at"`
	ReplyDueAt   *time.Time `json:"reply_due_at" db:"reply_due_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Note is a free-form note attached to a contact
type Note struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ContactID uuid.UUID `json:"contact_id" db:"contact_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MessageStats is a read-only aggregation over a user's messages
type MessageStats struct {
	Total              int     `json:"total"`
	Pending            int     `json:"pending"`
	Responded          int     `json:"responded"`
	NoResponse         int     `json:"no_response"`
	ResponseRate       float64 `json:"response_rate"`
	AvgResponseSeconds float64 `json:"avg_response_seconds"`
}

// ContactGrowth holds contact counters for a snapshot day
type ContactGrowth struct {
	Total int `json:"total"`
	New   int `json:"new"`
	Net   int `json:"net"`
}

// InteractionMetrics holds interaction counters for a snapshot day
type InteractionMetrics struct {
	Total     int            `json:"total"`
	New       int            `json:"new"`
	ByType    map[string]int `json:"by_type"`
	ByOutcome map[string]int `json:"by_outcome"`
}

// RelationshipDistribution counts contacts by current strength tier
type RelationshipDistribution struct {
	Strong int `json:"strong"`
	Medium int `json:"medium"`
	Weak   int `json:"weak"`
	AtRisk int `json:"at_risk"`
}

// EngagementMetrics holds the trailing-window activity measures
type EngagementMetrics struct {
	ActiveContacts int     `json:"active_contacts"`
	EngagementRate float64 `json:"engagement_rate"`
}

// GrowthTrends holds day-over-day deltas derived from the previous snapshot
type GrowthTrends struct {
	ContactGrowthRate     float64 `json:"contact_growth_rate"`
	InteractionGrowthRate float64 `json:"interaction_growth_rate"`
	EngagementGrowthRate  float64 `json:"engagement_growth_rate"`
}

// Insights holds the derived health score and advisory strings
type Insights struct {
	NetworkHealthScore float64  `json:"network_health_score"`
	Recommendations    []string `json:"recommendations"`
	RiskFactors        []string `json:"risk_factors"`
}

// Snapshot is the immutable-per-day analytics aggregate, keyed (user, day).
// Recomputing it against identical underlying data reproduces identical
// output except ProcessedAt.
type Snapshot struct {
	ID                       uuid.UUID                `json:"id" db:"id"`
	UserID                   uuid.UUID                `json:"user_id" db:"user_id"`
	Date                     time.Time                `json:"date" db:"snapshot_date"`
	ContactGrowth            ContactGrowth            `json:"contact_growth"`
	InteractionMetrics       InteractionMetrics       `json:"interaction_metrics"`
	RelationshipDistribution RelationshipDistribution `json:"relationship_distribution"`
	EngagementMetrics        EngagementMetrics        `json:"engagement_metrics"`
	GrowthTrends             GrowthTrends             `json:"growth_trends"`
	AIInsights               Insights                 `json:"ai_insights"`
	ProcessedAt              time.Time                `json:"processed_at" db:"processed_at"`
}
