package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/lodestar-watch/lodestar/internal/events"
	"github.com/lodestar-watch/lodestar/internal/policy"
)

// RawItem is one feed entry as fetched, before deduplication.
type RawItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Validate reports whether the item carries enough identity to deduplicate.
// An item with neither title nor URL cannot be keyed and is dropped.
func (i RawItem) Validate() error {
	if strings.TrimSpace(i.Title) == "" && strings.TrimSpace(i.URL) == "" {
		return ErrMalformedItem
	}
	return nil
}

// Connector fetches raw items from one evidence source. The source type and
// evidence tier are properties of the source, fixed at configuration time:
// a connector cannot report one item as a paper and the next as a rumor.
type Connector interface {
	Name() string
	Source() events.SourceType
	Tier() policy.Tier
	Fetch(ctx context.Context) ([]RawItem, error)
}
