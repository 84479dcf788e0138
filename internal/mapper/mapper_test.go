package mapper_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lodestar-watch/lodestar/internal/mapper"
	"github.com/lodestar-watch/lodestar/internal/policy"
	"github.com/lodestar-watch/lodestar/internal/registry"
)

func snapshot(t *testing.T, rules ...registry.Rule) *registry.Snapshot {
	t.Helper()
	snap, err := registry.NewSnapshot(rules)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return snap
}

func TestMapTierBoost(t *testing.T) {
	snap := snapshot(t, registry.Rule{
		Pattern: "frontiermath", SignpostCode: "bench.frontiermath", BaseConfidence: 0.80,
	})

	tests := []struct {
		name string
		tier policy.Tier
		want float64
	}{
		{"A adds 0.10", policy.TierA, 0.90},
		{"B adds 0.05", policy.TierB, 0.85},
		{"C adds nothing", policy.TierC, 0.80},
		{"D adds nothing", policy.TierD, 0.80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapper.Map(mapper.Input{
				Title: "Lab posts new FrontierMath result",
				Tier:  tt.tier,
			}, snap, nil)

			if len(got) != 1 {
				t.Fatalf("got %d candidates, want 1", len(got))
			}
			if math.Abs(got[0].Confidence-tt.want) > 1e-9 {
				t.Errorf("confidence = %v, want %v", got[0].Confidence, tt.want)
			}
		})
	}
}

func TestMapClampsToOne(t *testing.T) {
	snap := snapshot(t, registry.Rule{
		Pattern: "agi achieved", SignpostCode: "milestone.agi", BaseConfidence: 0.95,
	})

	got := mapper.Map(mapper.Input{Title: "AGI achieved, says paper", Tier: policy.TierA}, snap, nil)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamped 1.0", got[0].Confidence)
	}
}

func TestMapCapsAtTwoSignposts(t *testing.T) {
	snap := snapshot(t,
		registry.Rule{Pattern: "alpha", SignpostCode: "sp.alpha", BaseConfidence: 0.9},
		registry.Rule{Pattern: "beta", SignpostCode: "sp.beta", BaseConfidence: 0.7},
		registry.Rule{Pattern: "gamma", SignpostCode: "sp.gamma", BaseConfidence: 0.5},
	)

	got := mapper.Map(mapper.Input{
		Title:   "alpha beta gamma",
		Summary: "covers all three",
		Tier:    policy.TierC,
	}, snap, nil)

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].SignpostCode != "sp.alpha" || got[1].SignpostCode != "sp.beta" {
		t.Errorf("kept %s, %s; want sp.alpha, sp.beta", got[0].SignpostCode, got[1].SignpostCode)
	}
}

func TestMapKeepsMaxPerSignpost(t *testing.T) {
	snap := snapshot(t,
		registry.Rule{Pattern: "gpqa", SignpostCode: "bench.gpqa", BaseConfidence: 0.6},
		registry.Rule{Pattern: "gpqa diamond", SignpostCode: "bench.gpqa", BaseConfidence: 0.85},
	)

	got := mapper.Map(mapper.Input{Title: "New GPQA Diamond record", Tier: policy.TierC}, snap, nil)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Confidence != 0.85 {
		t.Errorf("confidence = %v, want max 0.85", got[0].Confidence)
	}
}

func TestMapTieBreak(t *testing.T) {
	snap := snapshot(t,
		registry.Rule{Pattern: "reasoning", SignpostCode: "sp.busy", BaseConfidence: 0.7},
		registry.Rule{Pattern: "reasoning", SignpostCode: "sp.quiet", BaseConfidence: 0.7},
	)

	t.Run("prefers lower category load", func(t *testing.T) {
		loads := map[string]int{"sp.busy": 12, "sp.quiet": 3}
		got := mapper.Map(mapper.Input{Title: "reasoning leap", Tier: policy.TierC}, snap, loads)
		if got[0].SignpostCode != "sp.quiet" {
			t.Errorf("first = %s, want sp.quiet", got[0].SignpostCode)
		}
	})

	t.Run("falls back to lexical order", func(t *testing.T) {
		got := mapper.Map(mapper.Input{Title: "reasoning leap", Tier: policy.TierC}, snap, nil)
		if got[0].SignpostCode != "sp.busy" {
			t.Errorf("first = %s, want sp.busy (lexical)", got[0].SignpostCode)
		}
	})
}

func TestMapNoMatches(t *testing.T) {
	snap := snapshot(t, registry.Rule{
		Pattern: "quantum", SignpostCode: "sp.q", BaseConfidence: 0.8,
	})

	got := mapper.Map(mapper.Input{Title: "unrelated news", Tier: policy.TierA}, snap, nil)
	if len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}

func TestMapDeterministic(t *testing.T) {
	snap := snapshot(t,
		registry.Rule{Pattern: "coding", SignpostCode: "sp.code", BaseConfidence: 0.8},
		registry.Rule{Pattern: "agents", SignpostCode: "sp.agents", BaseConfidence: 0.8},
	)
	in := mapper.Input{Title: "Coding agents improve", Tier: policy.TierB}

	first := mapper.Map(in, snap, nil)
	for range 10 {
		again := mapper.Map(in, snap, nil)
		if len(again) != len(first) {
			t.Fatal("length varies between runs")
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("output varies between runs: %+v vs %+v", again[i], first[i])
			}
		}
	}
}

func TestMapRationale(t *testing.T) {
	snap := snapshot(t, registry.Rule{
		Pattern: "mmlu", SignpostCode: "bench.mmlu", BaseConfidence: 0.75,
	})

	got := mapper.Map(mapper.Input{Title: "MMLU saturated", Tier: policy.TierB}, snap, nil)
	want := "Auto-mapped via alias registry (conf=0.80)"
	if got[0].Rationale != want {
		t.Errorf("rationale = %q, want %q", got[0].Rationale, want)
	}
}

type stubScorer struct {
	candidates []mapper.Candidate
	err        error
}

func (s *stubScorer) Score(_ context.Context, _ mapper.Input) ([]mapper.Candidate, error) {
	return s.candidates, s.err
}

func TestFallback(t *testing.T) {
	in := mapper.Input{Title: "obscure item", Tier: policy.TierD}

	t.Run("nil scorer yields nil", func(t *testing.T) {
		got, err := mapper.Fallback(context.Background(), nil, in)
		if err != nil || got != nil {
			t.Errorf("got %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("clamps and caps", func(t *testing.T) {
		scorer := &stubScorer{candidates: []mapper.Candidate{
			{SignpostCode: "sp.a", Confidence: 1.4},
			{SignpostCode: "sp.a", Confidence: 0.5},
			{SignpostCode: "sp.b", Confidence: -0.2},
			{SignpostCode: "sp.c", Confidence: 0.9},
		}}

		got, err := mapper.Fallback(context.Background(), scorer, in)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d candidates, want 2", len(got))
		}
		if got[0].Confidence != 1.0 {
			t.Errorf("confidence = %v, want clamped 1.0", got[0].Confidence)
		}
		if got[1].SignpostCode != "sp.b" || got[1].Confidence != 0 {
			t.Errorf("second candidate = %+v, want sp.b at 0", got[1])
		}
		for _, c := range got {
			if c.Source != mapper.SourceScorer {
				t.Errorf("source = %s, want scorer", c.Source)
			}
		}
	})

	t.Run("propagates scorer error", func(t *testing.T) {
		wantErr := errors.New("model unavailable")
		_, err := mapper.Fallback(context.Background(), &stubScorer{err: wantErr}, in)
		if !errors.Is(err, wantErr) {
			t.Errorf("err = %v, want %v", err, wantErr)
		}
	})
}
