package policy_test

import (
	"testing"

	"github.com/lodestar-watch/lodestar/internal/policy"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name            string
		tier            policy.Tier
		confidence      float64
		wantDisposition policy.Disposition
		wantMovesGauges bool
		wantProvisional bool
	}{
		{"A high confidence", policy.TierA, 0.90, policy.DispositionAutoApproved, true, false},
		{"A low confidence still moves gauges", policy.TierA, 0.30, policy.DispositionNeedsReview, true, false},
		{"B official lab is provisional", policy.TierB, 0.85, policy.DispositionAutoApproved, true, true},
		{"B below threshold", policy.TierB, 0.59, policy.DispositionNeedsReview, true, true},
		{"C confident but never moves gauges", policy.TierC, 0.99, policy.DispositionAutoApproved, false, false},
		{"D social", policy.TierD, 0.70, policy.DispositionAutoApproved, false, false},
		{"D low confidence", policy.TierD, 0.10, policy.DispositionNeedsReview, false, false},
		{"threshold boundary inclusive", policy.TierA, 0.60, policy.DispositionAutoApproved, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.Classify(tt.tier, tt.confidence)
			if d.Disposition != tt.wantDisposition {
				t.Errorf("Disposition = %s, want %s", d.Disposition, tt.wantDisposition)
			}
			if d.MovesGauges != tt.wantMovesGauges {
				t.Errorf("MovesGauges = %v, want %v", d.MovesGauges, tt.wantMovesGauges)
			}
			if d.Provisional != tt.wantProvisional {
				t.Errorf("Provisional = %v, want %v", d.Provisional, tt.wantProvisional)
			}
		})
	}
}

func TestTierBoost(t *testing.T) {
	tests := []struct {
		tier policy.Tier
		want float64
	}{
		{policy.TierA, 0.10},
		{policy.TierB, 0.05},
		{policy.TierC, 0},
		{policy.TierD, 0},
	}

	for _, tt := range tests {
		if got := tt.tier.Boost(); got != tt.want {
			t.Errorf("Boost(%s) = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestTierValid(t *testing.T) {
	for _, tier := range []policy.Tier{policy.TierA, policy.TierB, policy.TierC, policy.TierD} {
		if !tier.Valid() {
			t.Errorf("Valid(%s) = false, want true", tier)
		}
	}
	if policy.Tier("E").Valid() {
		t.Error("Valid(E) = true, want false")
	}
	if policy.Tier("").Valid() {
		t.Error("Valid(\"\") = true, want false")
	}
}
