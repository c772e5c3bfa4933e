// Package insights maps computed metrics and scores to human-readable
// advisory records through fixed thresholds. Everything here is pure:
// identical inputs always produce identical output.
package insights

import (
	"fmt"

	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/scoring"
)

// Insight type constants
const (
	TypeSummary     = "summary"
	TypeWarning     = "warning"
	TypeExcellent   = "excellent"
	TypeOpportunity = "opportunity"
	TypeRisk        = "risk"
)

// Thresholds for the fixed advisory rules.
const (
	lowEngagementRate    = 30.0
	strongShareExcellent = 60.0
)

// Insight is a single advisory record for the presentation layer.
type Insight struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// Generate renders the advisory set for a snapshot and networking score.
func Generate(score scoring.NetworkingScore, snap *crm.Snapshot) []Insight {
	out := []Insight{networkSummary(score)}

	if snap == nil {
		return out
	}

	if snap.EngagementMetrics.EngagementRate < lowEngagementRate {
		out = append(out, Insight{
			Type:           TypeWarning,
			Title:          "Low engagement",
			Message:        fmt.Sprintf("Only %.0f%% of your contacts were active in the last 30 days.", snap.EngagementMetrics.EngagementRate),
			Recommendation: "Reach out to a few dormant contacts this week to lift your engagement rate.",
		})
	}

	total := snap.ContactGrowth.Total
	if total > 0 {
		strongShare := float64(snap.RelationshipDistribution.Strong) / float64(total) * 100
		if strongShare > strongShareExcellent {
			out = append(out, Insight{
				Type:           TypeExcellent,
				Title:          "Excellent relationship quality",
				Message:        fmt.Sprintf("%.0f%% of your relationships are strong.", strongShare),
				Recommendation: "Keep nurturing your inner circle while expanding your reach.",
			})
		}
	}

	if snap.GrowthTrends.ContactGrowthRate < 0 {
		out = append(out, Insight{
			Type:           TypeWarning,
			Title:          "Shrinking network",
			Message:        fmt.Sprintf("Your contact base declined %.1f%% since yesterday.", -snap.GrowthTrends.ContactGrowthRate),
			Recommendation: "Add new connections to offset the decline.",
		})
	}

	if snap.InteractionMetrics.New == 0 {
		out = append(out, Insight{
			Type:           TypeOpportunity,
			Title:          "No interactions today",
			Message:        "You logged no interactions today.",
			Recommendation: "Schedule one quick call or message to keep momentum.",
		})
	}

	for _, rf := range snap.AIInsights.RiskFactors {
		out = append(out, Insight{
			Type:           TypeRisk,
			Title:          "Relationships at risk",
			Message:        rf,
			Recommendation: "Prioritize outreach to your highest-risk contacts.",
		})
	}

	return out
}

// networkSummary maps the score band to a standing summary insight.
func networkSummary(score scoring.NetworkingScore) Insight {
	in := Insight{
		Type:    TypeSummary,
		Title:   fmt.Sprintf("Networking score: %s", score.Category),
		Message: fmt.Sprintf("Your networking score is %d out of 100.", score.Overall),
	}
	switch score.Category {
	case "Excellent":
		in.Recommendation = "Your network is thriving. Maintain your current cadence."
	case "Good":
		in.Recommendation = "Solid network health. A little more channel diversity would push you higher."
	case "Fair":
		in.Recommendation = "Your network needs attention. Focus on consistent weekly outreach."
	default:
		in.Recommendation = "Start small: reconnect with three contacts this week."
	}
	return in
}
