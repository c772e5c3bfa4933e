package crm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// UpsertSnapshot writes a daily snapshot keyed (user_id, snapshot_date).
// The upsert is idempotent: rewriting with identical data reproduces the
// same row except processed_at.
func (s *Store) UpsertSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	snap.Date = Day(snap.Date)
	snap.ProcessedAt = time.Now()

	byType, err := json.Marshal(snap.InteractionMetrics.ByType)
	if err != nil {
		return fmt.Errorf("marshal by_type: %w", err)
	}
	byOutcome, err := json.Marshal(snap.InteractionMetrics.ByOutcome)
	if err != nil {
		return fmt.Errorf("marshal by_outcome: %w", err)
	}
	recommendations, err := json.Marshal(snap.AIInsights.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	riskFactors, err := json.Marshal(snap.AIInsights.RiskFactors)
	if err != nil {
		return fmt.Errorf("marshal risk_factors: %w", err)
	}

	query := `INSERT INTO crm_daily_analytics (id, user_id, snapshot_date,
		total_contacts, new_contacts, net_contacts,
		total_interactions, new_interactions, interactions_by_type, interactions_by_outcome,
		strong_count, medium_count, weak_count, at_risk_count,
		active_contacts, engagement_rate,
		contact_growth_rate, interaction_growth_rate, engagement_growth_rate,
		network_health_score, recommendations, risk_factors, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (user_id, snapshot_date) DO UPDATE SET
			total_contacts = EXCLUDED.total_contacts,
			new_contacts = EXCLUDED.new_contacts,
			net_contacts = EXCLUDED.net_contacts,
			total_interactions = EXCLUDED.total_interactions,
			new_interactions = EXCLUDED.new_interactions,
			interactions_by_type = EXCLUDED.interactions_by_type,
			interactions_by_outcome = EXCLUDED.interactions_by_outcome,
			strong_count = EXCLUDED.strong_count,
			medium_count = EXCLUDED.medium_count,
			weak_count = EXCLUDED.weak_count,
			at_risk_count = EXCLUDED.at_risk_count,
			active_contacts = EXCLUDED.active_contacts,
			engagement_rate = EXCLUDED.engagement_rate,
			contact_growth_rate = EXCLUDED.contact_growth_rate,
			interaction_growth_rate = EXCLUDED.interaction_growth_rate,
			engagement_growth_rate = EXCLUDED.engagement_growth_rate,
			network_health_score = EXCLUDED.network_health_score,
			recommendations = EXCLUDED.recommendations,
			risk_factors = EXCLUDED.risk_factors,
			processed_at = EXCLUDED.processed_at`

	_, err = s.db.ExecContext(ctx, query, snap.ID, snap.UserID, snap.Date,
		snap.ContactGrowth.Total, snap.ContactGrowth.New, snap.ContactGrowth.Net,
		snap.InteractionMetrics.Total, snap.InteractionMetrics.New, byType, byOutcome,
		snap.RelationshipDistribution.Strong, snap.RelationshipDistribution.Medium,
		snap.RelationshipDistribution.Weak, snap.RelationshipDistribution.AtRisk,
		snap.EngagementMetrics.ActiveContacts, snap.EngagementMetrics.EngagementRate,
		snap.GrowthTrends.ContactGrowthRate, snap.GrowthTrends.InteractionGrowthRate,
		snap.GrowthTrends.EngagementGrowthRate,
		snap.AIInsights.NetworkHealthScore, recommendations, riskFactors,
		snap.ProcessedAt)
	return err
}

// GetSnapshot retrieves the snapshot for (user, day). Returns (nil, nil)
// when no snapshot exists for that day.
func (s *Store) GetSnapshot(ctx context.Context, userID uuid.UUID, date time.Time) (*Snapshot, error) {
	query := `SELECT id, user_id, snapshot_date,
		total_contacts, new_contacts, net_contacts,
		total_interactions, new_interactions, interactions_by_type, interactions_by_outcome,
		strong_count, medium_count, weak_count, at_risk_count,
		active_contacts, engagement_rate,
		contact_growth_rate, interaction_growth_rate, engagement_growth_rate,
		network_health_score, recommendations, risk_factors, processed_at
		FROM crm_daily_analytics WHERE user_id = $1 AND snapshot_date = $2`

	snap := &Snapshot{}
	var byType, byOutcome, recommendations, riskFactors []byte
	err := s.db.QueryRowContext(ctx, query, userID, Day(date)).Scan(
		&snap.ID, &snap.UserID, &snap.Date,
		&snap.ContactGrowth.Total, &snap.ContactGrowth.New, &snap.ContactGrowth.Net,
		&snap.InteractionMetrics.Total, &snap.InteractionMetrics.New, &byType, &byOutcome,
		&snap.RelationshipDistribution.Strong, &snap.RelationshipDistribution.Medium,
		&snap.RelationshipDistribution.Weak, &snap.RelationshipDistribution.AtRisk,
		&snap.EngagementMetrics.ActiveContacts, &snap.EngagementMetrics.EngagementRate,
		&snap.GrowthTrends.ContactGrowthRate, &snap.GrowthTrends.InteractionGrowthRate,
		&snap.GrowthTrends.EngagementGrowthRate,
		&snap.AIInsights.NetworkHealthScore, &recommendations, &riskFactors,
		&snap.ProcessedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(byType, &snap.InteractionMetrics.ByType); err != nil {
		return nil, fmt.Errorf("unmarshal by_type: %w", err)
	}
	if err := json.Unmarshal(byOutcome, &snap.InteractionMetrics.ByOutcome); err != nil {
		return nil, fmt.Errorf("unmarshal by_outcome: %w", err)
	}
	if err := json.Unmarshal(recommendations, &snap.AIInsights.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	if err := json.Unmarshal(riskFactors, &snap.AIInsights.RiskFactors); err != nil {
		return nil, fmt.Errorf("unmarshal risk_factors: %w", err)
	}
	return snap, nil
}

// GetPreviousSnapshot retrieves the snapshot for the day before date, or
// (nil, nil) when there is no history.
func (s *Store) GetPreviousSnapshot(ctx context.Context, userID uuid.UUID, date time.Time) (*Snapshot, error) {
	return s.GetSnapshot(ctx, userID, Day(date).AddDate(0, 0, -1))
}
