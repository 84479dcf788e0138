// Package mapper implements auto-mapping: scoring a normalized event against
// the alias registry to produce candidate signpost links. Map is a pure
// function of its inputs so a frozen registry snapshot yields reproducible
// outputs; the optional Scorer fallback is the only non-deterministic path
// and is consulted only when alias matching finds nothing.
package mapper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lodestar-watch/lodestar/internal/policy"
	"github.com/lodestar-watch/lodestar/internal/registry"
)

// MaxLinks caps the number of distinct signposts one event may evidence.
// Events are rarely evidence for more than two milestones at once; capping
// keeps registry noise from over-linking.
const MaxLinks = 2

// Source identifies how a candidate was produced.
type Source string

const (
	SourceAlias  Source = "alias"
	SourceScorer Source = "scorer"
)

// Input is the slice of an event the mapper consumes.
type Input struct {
	Title   string
	Summary string
	Tier    policy.Tier
}

// Candidate is a proposed event→signpost link with its mapping confidence.
type Candidate struct {
	SignpostCode string
	Confidence   float64
	Rationale    string
	Source       Source
}

// Map scores the event text against every alias rule and returns at most
// MaxLinks candidates, highest confidence first.
//
// Confidence is the rule's base confidence plus the tier boost, clamped to
// [0, 1]. Multiple rules matching the same signpost keep the maximum.
// Equal-confidence candidates are ordered by ascending category load (the
// approved-link count for the signpost's category, supplied by the caller),
// then lexically by signpost code for determinism.
func Map(in Input, snap *registry.Snapshot, loads map[string]int) []Candidate {
	text := registry.Normalize(in.Title + " " + in.Summary)
	if text == "" {
		return nil
	}

	boost := in.Tier.Boost()
	best := make(map[string]float64)

	// patterns and text share the same normalization, so matching is a
	// plain substring check
	for _, rule := range snap.Rules() {
		if rule.Pattern == "" || !strings.Contains(text, rule.Pattern) {
			continue
		}

		conf := clamp(rule.BaseConfidence + boost)
		if conf > best[rule.SignpostCode] {
			best[rule.SignpostCode] = conf
		}
	}

	if len(best) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(best))
	for code, conf := range best {
		candidates = append(candidates, Candidate{
			SignpostCode: code,
			Confidence:   conf,
			Rationale:    fmt.Sprintf("Auto-mapped via alias registry (conf=%.2f)", conf),
			Source:       SourceAlias,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if loads[a.SignpostCode] != loads[b.SignpostCode] {
			return loads[a.SignpostCode] < loads[b.SignpostCode]
		}
		return a.SignpostCode < b.SignpostCode
	})

	if len(candidates) > MaxLinks {
		candidates = candidates[:MaxLinks]
	}

	return candidates
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
