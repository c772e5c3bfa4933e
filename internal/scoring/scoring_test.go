package scoring

import (
	"testing"
	"time"

	"github.com/nexus-crm/nexus/internal/crm"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func contactWith(strength string, daysSince int, interactions int) *crm.Contact {
	last := testNow.AddDate(0, 0, -daysSince)
	return &crm.Contact{
		RelationshipStrength: strength,
		LastContacted:        &last,
		InteractionCount:     interactions,
		CreatedAt:            testNow.AddDate(-1, 0, 0),
	}
}

func TestRiskFactor(t *testing.T) {
	tests := []struct {
		name    string
		contact *crm.Contact
		want    int
	}{
		{
			name:    "weak stale no interactions",
			contact: contactWith(crm.StrengthWeak, 70, 0),
			want:    95, // 40 + 30 + 25
		},
		{
			name:    "strong recent active",
			contact: contactWith(crm.StrengthStrong, 3, 12),
			want:    5,
		},
		{
			name:    "medium moderately stale",
			contact: contactWith(crm.StrengthMedium, 35, 4),
			want:    40, // 20 + 20
		},
		{
			name:    "medium slightly stale",
			contact: contactWith(crm.StrengthMedium, 20, 4),
			want:    30, // 20 + 10
		},
		{
			name:    "at_risk scored as worst tier",
			contact: contactWith(crm.StrengthAtRisk, 70, 0),
			want:    95,
		},
		{
			name: "never contacted old contact",
			contact: &crm.Contact{
				RelationshipStrength: crm.StrengthWeak,
				InteractionCount:     0,
				CreatedAt:            testNow.AddDate(0, 0, -90),
			},
			want: 95,
		},
		{
			name:    "boundary at 14 days contributes nothing",
			contact: contactWith(crm.StrengthStrong, 14, 3),
			want:    5,
		},
		{
			name:    "boundary at 15 days",
			contact: contactWith(crm.StrengthStrong, 15, 3),
			want:    15, // 5 + 10
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskFactor(tt.contact, testNow)
			if got != tt.want {
				t.Errorf("RiskFactor() = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("RiskFactor() = %d, out of [0,100]", got)
			}
		})
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		name    string
		contact *crm.Contact
		want    int
	}{
		{
			name:    "weak stale no interactions clips at 5",
			contact: contactWith(crm.StrengthWeak, 50, 0),
			want:    5, // 3 + 3 + 2 = 8 → 5
		},
		{
			name:    "strong recent",
			contact: contactWith(crm.StrengthStrong, 5, 9),
			want:    1,
		},
		{
			name:    "medium 35 days",
			contact: contactWith(crm.StrengthMedium, 35, 2),
			want:    4, // 2 + 2
		},
		{
			name:    "strong 20 days no interactions",
			contact: contactWith(crm.StrengthStrong, 20, 0),
			want:    4, // 1 + 1 + 2
		},
		{
			name:    "at_risk same as weak",
			contact: contactWith(crm.StrengthAtRisk, 5, 4),
			want:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Priority(tt.contact, testNow)
			if got != tt.want {
				t.Errorf("Priority() = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 5 {
				t.Errorf("Priority() = %d, out of [0,5]", got)
			}
		})
	}
}

func TestDaysSinceContact(t *testing.T) {
	last := testNow.Add(-36 * time.Hour)
	c := &crm.Contact{LastContacted: &last}
	if got := DaysSinceContact(c, testNow); got != 1 {
		t.Errorf("DaysSinceContact() = %d, want 1", got)
	}

	// Future timestamps clamp to zero rather than going negative.
	future := testNow.Add(time.Hour)
	c = &crm.Contact{LastContacted: &future}
	if got := DaysSinceContact(c, testNow); got != 0 {
		t.Errorf("DaysSinceContact(future) = %d, want 0", got)
	}
}

func TestStrengthForRecency(t *testing.T) {
	tests := []struct {
		name string
		days int
		want string
	}{
		{"same day", 0, crm.StrengthStrong},
		{"14 days", 14, crm.StrengthStrong},
		{"15 days", 15, crm.StrengthMedium},
		{"30 days", 30, crm.StrengthMedium},
		{"31 days", 31, crm.StrengthWeak},
		{"60 days", 60, crm.StrengthWeak},
		{"61 days", 61, crm.StrengthAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := testNow.AddDate(0, 0, -tt.days)
			if got := StrengthForRecency(&last, testNow); got != tt.want {
				t.Errorf("StrengthForRecency(%d days) = %q, want %q", tt.days, got, tt.want)
			}
		})
	}

	if got := StrengthForRecency(nil, testNow); got != crm.StrengthAtRisk {
		t.Errorf("StrengthForRecency(nil) = %q, want %q", got, crm.StrengthAtRisk)
	}
}
