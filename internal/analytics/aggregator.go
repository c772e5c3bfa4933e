// Package analytics computes the immutable-per-day snapshot of a user's
// contact and interaction state, including growth deltas against the
// previous day's snapshot.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/pkg/distlock"
	"github.com/nexus-crm/nexus/internal/pkg/logger"
	"github.com/nexus-crm/nexus/internal/scoring"
)

// Growth recommendation thresholds.
const (
	lowEngagementThreshold = 30.0
	lowNewContactThreshold = 2
)

// Aggregator generates daily analytics snapshots.
type Aggregator struct {
	store *crm.Store
	redis *redis.Client // optional; nil falls back to PG advisory locks

	engagementWindow time.Duration
	lockTTL          time.Duration
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRedis enables Redis-backed locking around snapshot generation.
func WithRedis(client *redis.Client) Option {
	return func(a *Aggregator) { a.redis = client }
}

// WithEngagementWindow overrides the trailing window used to classify a
// contact as active (default 30 days).
func WithEngagementWindow(d time.Duration) Option {
	return func(a *Aggregator) { a.engagementWindow = d }
}

// WithLockTTL overrides the snapshot-generation lock TTL.
func WithLockTTL(d time.Duration) Option {
	return func(a *Aggregator) { a.lockTTL = d }
}

// New creates a daily analytics aggregator.
func New(store *crm.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:            store,
		engagementWindow: 30 * 24 * time.Hour,
		lockTTL:          time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate computes and upserts the snapshot for (userID, date). The full
// read set is gathered before the write: a failed read aborts without
// touching the stored snapshot. Regenerating against identical data
// produces an identical snapshot except processed_at.
func (a *Aggregator) Generate(ctx context.Context, userID uuid.UUID, date time.Time) (*crm.Snapshot, error) {
	day := crm.Day(date)
	dayEnd := day.AddDate(0, 0, 1)

	// Concurrent generation for the same (user, day) is harmless but
	// wasteful; the lock lets the loser skip the recompute. Contention is
	// not an error.
	lock := distlock.NewLock(a.redis, a.store.DB(), lockKey(userID, day), a.lockTTL)
	if acquired, err := lock.Acquire(ctx); err == nil && acquired {
		defer lock.Release(ctx)
	} else if err == nil {
		logger.Warn("snapshot generation contended, recomputing",
			"user_id", userID, "date", day.Format("2006-01-02"))
	}

	totalContacts, err := a.store.CountContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	newContacts, err := a.store.CountContactsCreatedBetween(ctx, userID, day, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("count new contacts: %w", err)
	}
	totalInteractions, err := a.store.CountInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}
	newInteractions, err := a.store.CountInteractionsBetween(ctx, userID, day, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("count new interactions: %w", err)
	}
	byType, err := a.store.GroupInteractionsByType(ctx, userID, day, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("group interactions by type: %w", err)
	}
	byOutcome, err := a.store.GroupInteractionsByOutcome(ctx, userID, day, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("group interactions by outcome: %w", err)
	}
	distribution, err := a.store.CountContactsByStrength(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count contacts by strength: %w", err)
	}
	activeContacts, err := a.store.CountActiveContacts(ctx, userID, dayEnd.Add(-a.engagementWindow))
	if err != nil {
		return nil, fmt.Errorf("count active contacts: %w", err)
	}

	engagementRate := 0.0
	if totalContacts > 0 {
		engagementRate = float64(activeContacts) / float64(totalContacts) * 100
	}

	prev, err := a.store.GetPreviousSnapshot(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}

	trends := crm.GrowthTrends{}
	if prev != nil {
		trends.ContactGrowthRate = growthRate(totalContacts, prev.ContactGrowth.Total)
		trends.InteractionGrowthRate = growthRate(totalInteractions, prev.InteractionMetrics.Total)
		trends.EngagementGrowthRate = engagementRate - prev.EngagementMetrics.EngagementRate
	}

	health, riskFactors, err := a.networkHealth(ctx, userID, totalContacts, distribution, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("network health: %w", err)
	}

	recommendations := []string{}
	if engagementRate < lowEngagementThreshold {
		recommendations = append(recommendations,
			"Growth Recommendation: engagement is low; reconnect with dormant contacts this week.")
	}
	if newContacts < lowNewContactThreshold {
		recommendations = append(recommendations,
			"Growth Recommendation: few new contacts added today; aim for at least two new connections.")
	}

	snap := &crm.Snapshot{
		UserID: userID,
		Date:   day,
		ContactGrowth: crm.ContactGrowth{
			Total: totalContacts,
			New:   newContacts,
			Net:   newContacts,
		},
		InteractionMetrics: crm.InteractionMetrics{
			Total:     totalInteractions,
			New:       newInteractions,
			ByType:    byType,
			ByOutcome: byOutcome,
		},
		RelationshipDistribution: distribution,
		EngagementMetrics: crm.EngagementMetrics{
			ActiveContacts: activeContacts,
			EngagementRate: engagementRate,
		},
		GrowthTrends: trends,
		AIInsights: crm.Insights{
			NetworkHealthScore: health,
			Recommendations:    recommendations,
			RiskFactors:        riskFactors,
		},
	}

	if err := a.store.UpsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}
	return snap, nil
}

// NetworkingInputs assembles the read set for the composite networking
// score as of now.
func (a *Aggregator) NetworkingInputs(ctx context.Context, userID uuid.UUID, now time.Time) (scoring.NetworkingInputs, error) {
	var in scoring.NetworkingInputs

	totalContacts, err := a.store.CountContacts(ctx, userID)
	if err != nil {
		return in, fmt.Errorf("count contacts: %w", err)
	}
	distribution, err := a.store.CountContactsByStrength(ctx, userID)
	if err != nil {
		return in, fmt.Errorf("count contacts by strength: %w", err)
	}
	interactions30d, err := a.store.CountInteractionsSince(ctx, userID, now.AddDate(0, 0, -30))
	if err != nil {
		return in, fmt.Errorf("count recent interactions: %w", err)
	}
	months, err := a.store.MonthsWithActivity(ctx, userID, now.AddDate(0, -6, 0))
	if err != nil {
		return in, fmt.Errorf("count active months: %w", err)
	}
	channels, err := a.store.DistinctChannelsSince(ctx, userID, now.AddDate(0, -6, 0))
	if err != nil {
		return in, fmt.Errorf("count channels: %w", err)
	}
	required, completed, err := a.store.FollowUpCounts(ctx, userID)
	if err != nil {
		return in, fmt.Errorf("count follow-ups: %w", err)
	}

	in = scoring.NetworkingInputs{
		TotalContacts:      totalContacts,
		StrongContacts:     distribution.Strong,
		Interactions30d:    interactions30d,
		MonthsWithActivity: months,
		DistinctChannels:   channels,
		FollowUpsRequired:  required,
		FollowUpsCompleted: completed,
	}
	return in, nil
}

// networkHealth computes the snapshot's embedded health score and the
// per-contact risk factor strings. The score is a snapshot field like any
// other, so a failed read here aborts the whole generation rather than
// writing a half-populated snapshot.
func (a *Aggregator) networkHealth(ctx context.Context, userID uuid.UUID, totalContacts int, dist crm.RelationshipDistribution, asOf time.Time) (float64, []string, error) {
	riskFactors := []string{}

	in, err := a.NetworkingInputs(ctx, userID, asOf)
	if err != nil {
		return 0, nil, err
	}
	score := scoring.ComputeNetworkingScore(in)

	contacts, err := a.store.ListContacts(ctx, userID)
	if err != nil {
		return 0, nil, fmt.Errorf("list contacts: %w", err)
	}
	atRisk := 0
	for _, c := range contacts {
		if scoring.RiskFactor(c, asOf) >= 70 {
			atRisk++
		}
	}
	if atRisk > 0 {
		riskFactors = append(riskFactors,
			fmt.Sprintf("%d contacts have a risk factor of 70 or higher", atRisk))
	}
	if totalContacts > 0 && dist.AtRisk > 0 {
		riskFactors = append(riskFactors,
			fmt.Sprintf("%d relationships are classified at risk", dist.AtRisk))
	}

	return float64(score.Overall), riskFactors, nil
}

func growthRate(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func lockKey(userID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("analytics:%s:%s", userID, day.Format("2006-01-02"))
}
