package scoring

import (
	"math"
	"testing"
)

func TestComputeNetworkingScoreEmpty(t *testing.T) {
	score := ComputeNetworkingScore(NetworkingInputs{})

	// No contacts and no activity: only the neutral follow-up half-score.
	if score.Overall != 5 {
		t.Errorf("Overall = %d, want 5", score.Overall)
	}
	if score.Category != "Poor" {
		t.Errorf("Category = %q, want Poor", score.Category)
	}
	for _, c := range score.Components {
		if math.IsNaN(c.Score) {
			t.Errorf("component %s is NaN", c.Name)
		}
		if c.Score < 0 || c.Score > c.Max {
			t.Errorf("component %s = %v, out of [0,%v]", c.Name, c.Score, c.Max)
		}
	}
}

func TestComputeNetworkingScoreSaturated(t *testing.T) {
	score := ComputeNetworkingScore(NetworkingInputs{
		TotalContacts:      200,
		StrongContacts:     200,
		Interactions30d:    100,
		MonthsWithActivity: 12,
		DistinctChannels:   8,
		FollowUpsRequired:  4,
		FollowUpsCompleted: 4,
	})

	if score.Overall != 100 {
		t.Errorf("Overall = %d, want 100", score.Overall)
	}
	if score.Category != "Excellent" {
		t.Errorf("Category = %q, want Excellent", score.Category)
	}
	for _, c := range score.Components {
		if c.Score != c.Max {
			t.Errorf("component %s = %v, want saturated at %v", c.Name, c.Score, c.Max)
		}
	}
}

func TestComputeNetworkingScoreComponents(t *testing.T) {
	score := ComputeNetworkingScore(NetworkingInputs{
		TotalContacts:      25, // half of target → 10
		StrongContacts:     5,  // 20% of contacts → 5
		Interactions30d:    10, // half of target → 10
		MonthsWithActivity: 3,  // half of target → 7.5
		DistinctChannels:   2,  // 2/5 of target → 4
		FollowUpsRequired:  0,  // neutral → 5
	})

	want := map[string]float64{
		"networkSize":           10,
		"relationshipQuality":   5,
		"activityLevel":         10,
		"consistency":           7.5,
		"channelDiversity":      4,
		"followUpEffectiveness": 5,
	}
	for _, c := range score.Components {
		if w, ok := want[c.Name]; !ok || math.Abs(c.Score-w) > 1e-9 {
			t.Errorf("component %s = %v, want %v", c.Name, c.Score, w)
		}
	}

	// 10 + 5 + 10 + 7.5 + 4 + 5 = 41.5 → 42
	if score.Overall != 42 {
		t.Errorf("Overall = %d, want 42", score.Overall)
	}
	if score.Category != "Fair" {
		t.Errorf("Category = %q, want Fair", score.Category)
	}
}

func TestComputeNetworkingScoreZeroContactsQuality(t *testing.T) {
	score := ComputeNetworkingScore(NetworkingInputs{
		TotalContacts:   0,
		StrongContacts:  0,
		Interactions30d: 5,
	})
	for _, c := range score.Components {
		if c.Name == "relationshipQuality" && c.Score != 0 {
			t.Errorf("relationshipQuality = %v, want 0 with no contacts", c.Score)
		}
	}
}

func TestComputeNetworkingScoreFollowUpRatio(t *testing.T) {
	score := ComputeNetworkingScore(NetworkingInputs{
		TotalContacts:      10,
		FollowUpsRequired:  4,
		FollowUpsCompleted: 1,
	})
	for _, c := range score.Components {
		if c.Name == "followUpEffectiveness" && math.Abs(c.Score-2.5) > 1e-9 {
			t.Errorf("followUpEffectiveness = %v, want 2.5", c.Score)
		}
	}
}

// Each ratio component must be monotone in its driving metric.
func TestComputeNetworkingScoreMonotone(t *testing.T) {
	base := NetworkingInputs{
		TotalContacts:      10,
		StrongContacts:     2,
		Interactions30d:    5,
		MonthsWithActivity: 2,
		DistinctChannels:   2,
		FollowUpsRequired:  2,
		FollowUpsCompleted: 1,
	}

	componentScore := func(in NetworkingInputs, name string) float64 {
		for _, c := range ComputeNetworkingScore(in).Components {
			if c.Name == name {
				return c.Score
			}
		}
		t.Fatalf("component %s not found", name)
		return 0
	}

	for i := 0; i < 120; i++ {
		grown := base
		grown.Interactions30d = i
		next := grown
		next.Interactions30d = i + 1
		if componentScore(next, "activityLevel") < componentScore(grown, "activityLevel") {
			t.Fatalf("activityLevel decreased at %d interactions", i)
		}
	}

	for i := 0; i < 20; i++ {
		grown := base
		grown.MonthsWithActivity = i
		next := grown
		next.MonthsWithActivity = i + 1
		if componentScore(next, "consistency") < componentScore(grown, "consistency") {
			t.Fatalf("consistency decreased at %d months", i)
		}
	}

	for i := 0; i < 10; i++ {
		grown := base
		grown.DistinctChannels = i
		next := grown
		next.DistinctChannels = i + 1
		if componentScore(next, "channelDiversity") < componentScore(grown, "channelDiversity") {
			t.Fatalf("channelDiversity decreased at %d channels", i)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{100, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{60, "Good"},
		{59, "Fair"},
		{40, "Fair"},
		{39, "Poor"},
		{0, "Poor"},
	}
	for _, tt := range tests {
		if got := Category(tt.overall); got != tt.want {
			t.Errorf("Category(%d) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}
