// Package links implements the event→signpost link domain: the mapping
// artifacts produced by the auto-mapper and governed by the moderation state
// machine, with an append-only changelog recording every transition.
package links

import (
	"time"

	"github.com/google/uuid"
)

// Link represents one event→signpost mapping with its confidence and
// moderation state. MovesGauges is derived from the event's evidence tier at
// creation and immutable afterwards: tier C/D links never move published
// gauges regardless of moderation outcome.
type Link struct {
	ID           uuid.UUID  `json:"id"`
	EventID      uuid.UUID  `json:"event_id"`
	SignpostCode string     `json:"signpost_code"`
	Confidence   float64    `json:"confidence"`
	Rationale    string     `json:"rationale"`
	MovesGauges  bool       `json:"moves_gauges"`
	Status       Status     `json:"moderation_status"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy   *string    `json:"resolved_by,omitempty"`
}

// ChangelogEntry is one append-only audit record of a link state transition.
// PriorStatus is nil for the initial system assignment.
type ChangelogEntry struct {
	ID          uuid.UUID `json:"id"`
	LinkID      uuid.UUID `json:"link_id"`
	PriorStatus *Status   `json:"prior_status,omitempty"`
	NewStatus   Status    `json:"new_status"`
	Actor       string    `json:"actor"`
	Reason      *string   `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to persist a new candidate link.
// Status must be one of the two initial dispositions.
type CreateCommand struct {
	EventID      uuid.UUID
	SignpostCode string
	Confidence   float64
	Rationale    string
	MovesGauges  bool
	Status       Status
}

// ModerationCommand carries an admin moderation action. Note is optional on
// approval; Reason is mandatory for rejection and retraction.
type ModerationCommand struct {
	Actor  string `json:"actor"`
	Note   string `json:"note,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ModerationResult pairs the updated link with the changelog entry the
// transition appended.
type ModerationResult struct {
	Link      *Link           `json:"link"`
	Changelog *ChangelogEntry `json:"changelog"`
}
