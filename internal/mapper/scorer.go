package mapper

import "context"

// Scorer is an optional fallback strategy consulted only when alias matching
// yields zero candidates. Implementations may use a model; the deterministic
// alias path never depends on one.
type Scorer interface {
	Score(ctx context.Context, in Input) ([]Candidate, error)
}

// Fallback runs the scorer and sanitizes its output: confidences clamped to
// [0, 1], unknown sources tagged SourceScorer, at most MaxLinks candidates
// kept in the scorer's order. A nil scorer yields nil.
func Fallback(ctx context.Context, scorer Scorer, in Input) ([]Candidate, error) {
	if scorer == nil {
		return nil, nil
	}

	candidates, err := scorer.Score(ctx, in)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, MaxLinks)
	seen := make(map[string]bool)

	for _, c := range candidates {
		if c.SignpostCode == "" || seen[c.SignpostCode] {
			continue
		}
		seen[c.SignpostCode] = true

		c.Confidence = clamp(c.Confidence)
		c.Source = SourceScorer

		out = append(out, c)
		if len(out) == MaxLinks {
			break
		}
	}

	return out, nil
}
