package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lodestar-watch/lodestar/internal/events"
	"github.com/lodestar-watch/lodestar/internal/policy"
)

// FeedConfig describes one RSS/Atom evidence source.
type FeedConfig struct {
	Name       string `toml:"name"`
	URL        string `toml:"url"`
	SourceType string `toml:"source_type"`
	Tier       string `toml:"tier"`
	Publisher  string `toml:"publisher"`
	Schedule   string `toml:"schedule"`
}

func (c *FeedConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("connector name required")
	}
	if c.URL == "" {
		return fmt.Errorf("connector %q: url required", c.Name)
	}
	if !events.SourceType(c.SourceType).Valid() {
		return fmt.Errorf("connector %q: invalid source_type %q", c.Name, c.SourceType)
	}
	if !policy.Tier(c.Tier).Valid() {
		return fmt.Errorf("connector %q: invalid tier %q", c.Name, c.Tier)
	}
	return nil
}

// FeedConnector fetches items from an RSS or Atom feed via gofeed.
type FeedConnector struct {
	cfg    FeedConfig
	parser *gofeed.Parser
	now    func() time.Time
}

// NewFeedConnector creates a connector for the given feed configuration.
func NewFeedConnector(cfg FeedConfig) (*FeedConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &FeedConnector{
		cfg:    cfg,
		parser: gofeed.NewParser(),
		now:    time.Now,
	}, nil
}

func (c *FeedConnector) Name() string              { return c.cfg.Name }
func (c *FeedConnector) Source() events.SourceType { return events.SourceType(c.cfg.SourceType) }
func (c *FeedConnector) Tier() policy.Tier         { return policy.Tier(c.cfg.Tier) }

// Fetch parses the feed and converts its entries to raw items. Items without
// a parseable publication date fall back to the fetch time, which keeps the
// day component of their identity key stable for the rest of the day.
func (c *FeedConnector) Fetch(ctx context.Context) ([]RawItem, error) {
	feed, err := c.parser.ParseURLWithContext(c.cfg.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %q: %w", c.cfg.Name, err)
	}

	publisher := c.cfg.Publisher
	if publisher == "" {
		publisher = feed.Title
	}

	items := make([]RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := c.now().UTC()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, RawItem{
			Title:       item.Title,
			Summary:     item.Description,
			URL:         item.Link,
			Publisher:   publisher,
			PublishedAt: published,
		})
	}

	return items, nil
}
