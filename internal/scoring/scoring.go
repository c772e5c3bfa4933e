// Package scoring computes deterministic relationship health metrics:
// per-contact risk and priority scores plus the account-wide composite
// networking score. All functions are pure; callers supply the data and
// the reference time.
package scoring

import (
	"time"

	"github.com/nexus-crm/nexus/internal/crm"
)

// DaysSinceContact returns whole days elapsed since the contact was last
// contacted. A never-contacted contact reports the days since creation, so
// it lands in the worst recency tier once old enough;  a brand-new contact
// with no history reports 0.
func DaysSinceContact(c *crm.Contact, now time.Time) int {
	ref := c.CreatedAt
	if c.LastContacted != nil {
		ref = *c.LastContacted
	}
	days := int(now.Sub(ref).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// RiskFactor estimates how likely a relationship is decaying, bounded [0, 100].
// Contributions: strength tier (weak +40 / medium +20 / strong +5, at_risk
// scored as weak), recency (>60d +30 / >30d +20 / >14d +10), and +25 when the
// contact has no interactions at all.
func RiskFactor(c *crm.Contact, now time.Time) int {
	risk := 0

	switch c.RelationshipStrength {
	case crm.StrengthWeak, crm.StrengthAtRisk:
		risk += 40
	case crm.StrengthMedium:
		risk += 20
	case crm.StrengthStrong:
		risk += 5
	}

	days := DaysSinceContact(c, now)
	switch {
	case days > 60:
		risk += 30
	case days > 30:
		risk += 20
	case days > 14:
		risk += 10
	}

	if c.InteractionCount == 0 {
		risk += 25
	}

	if risk > 100 {
		risk = 100
	}
	return risk
}

// Priority ranks outreach urgency as an integer in [0, 5].
// Strength contributes 3/2/1 (weak/medium/strong, at_risk as weak), recency
// 3/2/1/0 for >45/>30/>14 days, and +2 when there are no interactions.
func Priority(c *crm.Contact, now time.Time) int {
	priority := 0

	switch c.RelationshipStrength {
	case crm.StrengthWeak, crm.StrengthAtRisk:
		priority += 3
	case crm.StrengthMedium:
		priority += 2
	case crm.StrengthStrong:
		priority += 1
	}

	days := DaysSinceContact(c, now)
	switch {
	case days > 45:
		priority += 3
	case days > 30:
		priority += 2
	case days > 14:
		priority += 1
	}

	if c.InteractionCount == 0 {
		priority += 2
	}

	if priority > 5 {
		priority = 5
	}
	return priority
}

// StrengthForRecency is the single source of truth mapping contact recency
// to a relationship strength tier. Every call site that derives strength
// from recency must go through it.
func StrengthForRecency(lastContacted *time.Time, now time.Time) string {
	if lastContacted == nil {
		return crm.StrengthAtRisk
	}
	days := int(now.Sub(*lastContacted).Hours() / 24)
	switch {
	case days <= 14:
		return crm.StrengthStrong
	case days <= 30:
		return crm.StrengthMedium
	case days <= 60:
		return crm.StrengthWeak
	default:
		return crm.StrengthAtRisk
	}
}
