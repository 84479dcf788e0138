package ingest

import (
	"fmt"
	"os"
)

// Config holds evidence source definitions and the alias registry location.
type Config struct {
	AliasRules string       `toml:"alias_rules"`
	Feeds      []FeedConfig `toml:"feed"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	AliasRules string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. A non-empty overlay feed
// list replaces the base list wholesale; feeds are not merged element-wise.
func (c *Config) Merge(overlay *Config) {
	if overlay.AliasRules != "" {
		c.AliasRules = overlay.AliasRules
	}
	if len(overlay.Feeds) > 0 {
		c.Feeds = overlay.Feeds
	}
}

// Connectors builds a connector per configured feed.
func (c *Config) Connectors() ([]Connector, error) {
	connectors := make([]Connector, 0, len(c.Feeds))
	for _, feed := range c.Feeds {
		fc, err := NewFeedConnector(feed)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, fc)
	}
	return connectors, nil
}

func (c *Config) loadDefaults() {
	if c.AliasRules == "" {
		c.AliasRules = "aliases.toml"
	}
	for i := range c.Feeds {
		if c.Feeds[i].Schedule == "" {
			c.Feeds[i].Schedule = "@hourly"
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.AliasRules != "" {
		if v := os.Getenv(env.AliasRules); v != "" {
			c.AliasRules = v
		}
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Feeds))
	for _, feed := range c.Feeds {
		if err := feed.validate(); err != nil {
			return err
		}
		if seen[feed.Name] {
			return fmt.Errorf("duplicate connector name %q", feed.Name)
		}
		seen[feed.Name] = true
	}
	return nil
}
