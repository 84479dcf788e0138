package api

import (
	"fmt"

	"github.com/lodestar-watch/lodestar/internal/events"
	"github.com/lodestar-watch/lodestar/internal/ingest"
	"github.com/lodestar-watch/lodestar/internal/links"
	"github.com/lodestar-watch/lodestar/internal/mapper"
	"github.com/lodestar-watch/lodestar/internal/registry"
	"github.com/lodestar-watch/lodestar/internal/signposts"
	"github.com/lodestar-watch/lodestar/internal/surprise"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Signposts  signposts.System
	Events     events.System
	Links      links.System
	Surprise   surprise.System
	Runs       ingest.RunStore
	Pipeline   *ingest.Pipeline
	Connectors []ingest.Connector
	Registry   *registry.Snapshot
}

// NewDomain creates all domain systems from the API runtime: the alias
// registry snapshot, the optional model scorer, and the ingest pipeline over
// the event, link, and signpost systems.
func NewDomain(runtime *Runtime) (*Domain, error) {
	cfg := runtime.Config
	db := runtime.Database.Connection()

	snapshot, err := registry.Load(cfg.Ingest.AliasRules)
	if err != nil {
		return nil, fmt.Errorf("load alias registry: %w", err)
	}
	runtime.Logger.Info("alias registry loaded",
		"rules", snapshot.Len(),
		"version", snapshot.Version(),
	)

	signpostsSystem := signposts.New(db, runtime.Logger)
	linksSystem := links.New(db, runtime.Logger, runtime.Pagination)
	eventsSystem := events.New(db, runtime.Logger, linksSystem, runtime.Pagination)
	surpriseSystem := surprise.New(db, runtime.Logger)
	runStore := ingest.NewRunStore(db, runtime.Logger, runtime.Pagination)

	var scorer mapper.Scorer
	if cfg.Scorer.Enabled {
		// Suggestions are constrained to codes the registry knows; the
		// scorer cannot invent signposts the aliases never mention.
		scorer = mapper.NewLLMScorer(cfg.Scorer.Agent, snapshot.Codes(), runtime.Logger)
	}

	pipeline := ingest.NewPipeline(
		eventsSystem,
		linksSystem,
		signpostsSystem,
		runStore,
		snapshot,
		scorer,
		runtime.Storage,
		runtime.Logger,
	)

	connectors, err := cfg.Ingest.Connectors()
	if err != nil {
		return nil, fmt.Errorf("build connectors: %w", err)
	}

	return &Domain{
		Signposts:  signpostsSystem,
		Events:     eventsSystem,
		Links:      linksSystem,
		Surprise:   surpriseSystem,
		Runs:       runStore,
		Pipeline:   pipeline,
		Connectors: connectors,
		Registry:   snapshot,
	}, nil
}
