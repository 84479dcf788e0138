// Package registry implements the alias registry: the versioned, immutable
// rule table that maps text patterns to signposts with a base confidence.
// A snapshot is loaded once per mapping run and never mutated mid-run, so a
// frozen rule set pins exact mapper outputs for regression testing.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Rule maps a normalized-text pattern to a signpost with a base confidence.
type Rule struct {
	Pattern        string  `toml:"pattern"`
	SignpostCode   string  `toml:"signpost"`
	BaseConfidence float64 `toml:"confidence"`
}

// Snapshot is an immutable, versioned rule set. Version is a content hash:
// two snapshots with the same rules always carry the same version.
type Snapshot struct {
	rules    []Rule
	version  string
	loadedAt time.Time
}

// NewSnapshot validates rules and freezes them into a Snapshot.
// Patterns are normalized the same way event text is normalized so matching
// stays a plain substring check.
func NewSnapshot(rules []Rule) (*Snapshot, error) {
	frozen := make([]Rule, 0, len(rules))

	for i, r := range rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("rule %d: %w", i, ErrEmptyPattern)
		}
		if strings.TrimSpace(r.SignpostCode) == "" {
			return nil, fmt.Errorf("rule %d (%q): %w", i, r.Pattern, ErrEmptySignpost)
		}
		if r.BaseConfidence < 0 || r.BaseConfidence > 1 {
			return nil, fmt.Errorf(
				"rule %d (%q): %w: %v",
				i, r.Pattern, ErrConfidenceRange, r.BaseConfidence,
			)
		}

		frozen = append(frozen, Rule{
			Pattern:        Normalize(r.Pattern),
			SignpostCode:   r.SignpostCode,
			BaseConfidence: r.BaseConfidence,
		})
	}

	return &Snapshot{
		rules:    frozen,
		version:  hashRules(frozen),
		loadedAt: time.Now().UTC(),
	}, nil
}

// Rules returns a copy of the rule set.
func (s *Snapshot) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Version returns the content hash identifying this rule set.
func (s *Snapshot) Version() string {
	return s.version
}

// LoadedAt returns when the snapshot was created.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Len returns the number of rules.
func (s *Snapshot) Len() int {
	return len(s.rules)
}

// Codes returns the distinct signpost codes referenced by the rules, sorted.
func (s *Snapshot) Codes() []string {
	seen := make(map[string]bool, len(s.rules))
	codes := make([]string, 0, len(s.rules))

	for _, r := range s.rules {
		if !seen[r.SignpostCode] {
			seen[r.SignpostCode] = true
			codes = append(codes, r.SignpostCode)
		}
	}

	sort.Strings(codes)
	return codes
}

// Normalize lowercases text, strips punctuation, and collapses whitespace.
// Both alias patterns and event text pass through this before matching.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r > 127:
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

func hashRules(rules []Rule) string {
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = fmt.Sprintf("%s|%s|%.6f", r.Pattern, r.SignpostCode, r.BaseConfidence)
	}
	sort.Strings(lines)

	h := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h[:])
}
