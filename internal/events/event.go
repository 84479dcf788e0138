// Package events implements the evidence event domain for Lodestar.
// An Event is one durable piece of evidence created by a connector run;
// it is never deleted, only retracted.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/internal/policy"
)

// SourceType classifies where a piece of evidence came from.
type SourceType string

const (
	SourcePaper       SourceType = "paper"
	SourceBlog        SourceType = "blog"
	SourceNews        SourceType = "news"
	SourceLeaderboard SourceType = "leaderboard"
	SourceGov         SourceType = "gov"
	SourceSocial      SourceType = "social"
)

// Valid reports whether s is a recognized source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourcePaper, SourceBlog, SourceNews, SourceLeaderboard, SourceGov, SourceSocial:
		return true
	}
	return false
}

// Event represents a discrete piece of evidence about capability progress.
// EvidenceTier is a property of the source, assigned by the connector that
// created the event and immutable thereafter.
type Event struct {
	ID           uuid.UUID   `json:"id"`
	IdentityKey  string      `json:"identity_key"`
	Title        string      `json:"title"`
	Summary      string      `json:"summary"`
	Publisher    string      `json:"publisher"`
	SourceURL    string      `json:"source_url"`
	SourceType   SourceType  `json:"source_type"`
	EvidenceTier policy.Tier `json:"evidence_tier"`
	PublishedAt  time.Time   `json:"published_at"`
	IngestedAt   time.Time   `json:"ingested_at"`
	Provisional  bool        `json:"provisional"`
	NeedsReview  bool        `json:"needs_review"`
	Retracted    bool        `json:"retracted"`
	IngestRunID  *uuid.UUID  `json:"ingest_run_id,omitempty"`
}

// CreateCommand carries the data needed to persist a new event.
// IdentityKey must already be computed by the deduplicator.
type CreateCommand struct {
	IdentityKey  string
	Title        string
	Summary      string
	Publisher    string
	SourceURL    string
	SourceType   SourceType
	EvidenceTier policy.Tier
	PublishedAt  time.Time
	Provisional  bool
	NeedsReview  bool
	IngestRunID  *uuid.UUID
}

// RetractCommand carries the data needed to retract an event and its live links.
type RetractCommand struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}
