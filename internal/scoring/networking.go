package scoring

import "math"

// Component weights. They sum to 100, so the capped component scores can
// never push the overall past 100 before the final clamp.
const (
	WeightNetworkSize = 20.0
	WeightQuality     = 25.0
	WeightActivity    = 20.0
	WeightConsistency = 15.0
	WeightDiversity   = 10.0
	WeightFollowUp    = 10.0
)

// Saturation points for the ratio-based components.
const (
	networkSizeTarget = 50.0 // contacts for a full networkSize score
	activityTarget    = 20.0 // interactions in the last 30 days
	consistencyTarget = 6.0  // months with activity
	diversityTarget   = 5.0  // distinct channels
)

// NetworkingInputs is the read set for the composite networking score.
type NetworkingInputs struct {
	TotalContacts      int
	StrongContacts     int
	Interactions30d    int
	MonthsWithActivity int
	DistinctChannels   int
	FollowUpsRequired  int
	FollowUpsCompleted int
}

// ScoreComponent is one weighted sub-score, bounded [0, Max].
type ScoreComponent struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
}

// NetworkingScore is the account-wide composite health metric.
type NetworkingScore struct {
	Overall    int              `json:"overall"`
	Components []ScoreComponent `json:"components"`
	Category   string           `json:"category"`
}

// capped scales value/target into [0, weight].
func capped(value, target, weight float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Min(weight, value/target*weight)
}

// ComputeNetworkingScore composes six weighted sub-scores into a 0–100
// metric. Empty datasets produce zeroed (or neutral, for follow-ups)
// components, never NaN.
func ComputeNetworkingScore(in NetworkingInputs) NetworkingScore {
	networkSize := capped(float64(in.TotalContacts), networkSizeTarget, WeightNetworkSize)

	quality := 0.0
	if in.TotalContacts > 0 {
		quality = float64(in.StrongContacts) / float64(in.TotalContacts) * WeightQuality
	}

	activity := capped(float64(in.Interactions30d), activityTarget, WeightActivity)
	consistency := capped(float64(in.MonthsWithActivity), consistencyTarget, WeightConsistency)
	diversity := capped(float64(in.DistinctChannels), diversityTarget, WeightDiversity)

	// Neutral half-score when no follow-ups were ever required.
	followUp := WeightFollowUp / 2
	if in.FollowUpsRequired > 0 {
		followUp = float64(in.FollowUpsCompleted) / float64(in.FollowUpsRequired) * WeightFollowUp
		if followUp > WeightFollowUp {
			followUp = WeightFollowUp
		}
	}

	components := []ScoreComponent{
		{Name: "networkSize", Score: networkSize, Max: WeightNetworkSize},
		{Name: "relationshipQuality", Score: quality, Max: WeightQuality},
		{Name: "activityLevel", Score: activity, Max: WeightActivity},
		{Name: "consistency", Score: consistency, Max: WeightConsistency},
		{Name: "channelDiversity", Score: diversity, Max: WeightDiversity},
		{Name: "followUpEffectiveness", Score: followUp, Max: WeightFollowUp},
	}

	sum := 0.0
	for _, c := range components {
		sum += c.Score
	}
	overall := int(math.Round(math.Min(100, sum)))

	return NetworkingScore{
		Overall:    overall,
		Components: components,
		Category:   Category(overall),
	}
}

// Category maps an overall score to its band.
func Category(overall int) string {
	switch {
	case overall >= 80:
		return "Excellent"
	case overall >= 60:
		return "Good"
	case overall >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}
