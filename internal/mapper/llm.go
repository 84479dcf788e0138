package mapper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/lodestar-watch/lodestar/pkg/formatting"
)

const scorerPrompt = `You map AI-progress news items to tracked milestone codes.

Valid milestone codes:
%s

Item title: %s
Item summary: %s

Respond with a JSON array of at most 2 objects:
[{"signpost_code": "...", "confidence": 0.0, "rationale": "..."}]
Only use codes from the list. Confidence reflects how directly the item
evidences the milestone. Respond with [] if none apply.`

type llmCandidate struct {
	SignpostCode string  `json:"signpost_code"`
	Confidence   float64 `json:"confidence"`
	Rationale    string  `json:"rationale"`
}

// LLMScorer scores unmatched events with a chat model. Suggestions are
// restricted to known signpost codes; anything else is discarded.
type LLMScorer struct {
	agent  gaconfig.AgentConfig
	codes  []string
	logger *slog.Logger
}

// NewLLMScorer creates a scorer over the given agent configuration and the
// set of valid signpost codes.
func NewLLMScorer(cfg gaconfig.AgentConfig, codes []string, logger *slog.Logger) *LLMScorer {
	return &LLMScorer{
		agent:  cfg,
		codes:  codes,
		logger: logger.With("scorer", "llm"),
	}
}

// Score sends the event text to the model and parses its JSON response.
func (s *LLMScorer) Score(ctx context.Context, in Input) ([]Candidate, error) {
	a, err := agent.New(&s.agent)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	prompt := fmt.Sprintf(scorerPrompt, strings.Join(s.codes, "\n"), in.Title, in.Summary)

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("scorer chat call: %w", err)
	}

	parsed, err := formatting.Parse[[]llmCandidate](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("parse scorer response: %w", err)
	}

	known := make(map[string]bool, len(s.codes))
	for _, code := range s.codes {
		known[code] = true
	}

	candidates := make([]Candidate, 0, len(parsed))
	for _, c := range parsed {
		if !known[c.SignpostCode] {
			s.logger.Warn("scorer suggested unknown signpost", "code", c.SignpostCode)
			continue
		}
		candidates = append(candidates, Candidate{
			SignpostCode: c.SignpostCode,
			Confidence:   c.Confidence,
			Rationale:    c.Rationale,
			Source:       SourceScorer,
		})
	}

	return candidates, nil
}
