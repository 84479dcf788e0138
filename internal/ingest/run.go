// Package ingest implements connector-driven evidence ingestion: fetching raw
// feed items, deduplicating them into events, auto-mapping each new event to
// signposts, and recording every run with per-item accounting.
package ingest

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of an ingest run.
type RunStatus string

const (
	// RunRunning marks a run that has started and not yet finished.
	RunRunning RunStatus = "running"
	// RunOK marks a run where every fetched item was handled cleanly.
	RunOK RunStatus = "ok"
	// RunDegraded marks a run that finished but skipped or failed some
	// items. The run's counters say which kind.
	RunDegraded RunStatus = "degraded"
	// RunError marks a run that could not complete, typically a fetch
	// failure before any item was processed.
	RunError RunStatus = "error"
)

// Valid reports whether s is a recognized run status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunRunning, RunOK, RunDegraded, RunError:
		return true
	}
	return false
}

// Counts accumulates per-item and per-link accounting for one run.
type Counts struct {
	ItemsSeen         int `json:"items_seen"`
	ItemsIngested     int `json:"items_ingested"`
	ItemsDeduplicated int `json:"items_deduplicated"`
	ItemsMalformed    int `json:"items_malformed"`
	ItemsFailed       int `json:"items_failed"`
	LinksCreated      int `json:"links_created"`
	LinksAutoApproved int `json:"links_auto_approved"`
	LinksNeedsReview  int `json:"links_needs_review"`
}

// Clean reports whether every seen item was either ingested or deduplicated.
func (c Counts) Clean() bool {
	return c.ItemsMalformed == 0 && c.ItemsFailed == 0
}

// IngestRun is the durable record of one connector execution.
type IngestRun struct {
	ID         uuid.UUID  `json:"id"`
	Connector  string     `json:"connector"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      *string    `json:"error,omitempty"`
	Counts
}
