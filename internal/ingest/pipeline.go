package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/internal/events"
	"github.com/lodestar-watch/lodestar/internal/links"
	"github.com/lodestar-watch/lodestar/internal/mapper"
	"github.com/lodestar-watch/lodestar/internal/policy"
	"github.com/lodestar-watch/lodestar/internal/registry"
	"github.com/lodestar-watch/lodestar/internal/signposts"
	"github.com/lodestar-watch/lodestar/pkg/storage"
)

// Pipeline turns raw connector items into events and candidate links.
// One item failing never aborts the run; failures are counted and the run
// finishes degraded instead.
type Pipeline struct {
	events    events.System
	links     links.System
	signposts signposts.System
	runs      RunStore
	registry  *registry.Snapshot
	scorer    mapper.Scorer
	archive   storage.System
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

// NewPipeline wires the ingest pipeline. The scorer and archive are optional:
// a nil scorer disables the model fallback, a nil archive disables raw
// payload retention.
func NewPipeline(
	events events.System,
	links links.System,
	signposts signposts.System,
	runs RunStore,
	registry *registry.Snapshot,
	scorer mapper.Scorer,
	archive storage.System,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		events:    events,
		links:     links,
		signposts: signposts,
		runs:      runs,
		registry:  registry,
		scorer:    scorer,
		archive:   archive,
		logger:    logger.With("system", "ingest"),
		inflight:  make(map[string]bool),
	}
}

// Run executes one connector end to end and returns the finished run record.
// A second Run for the same connector while one is in flight returns
// ErrRunInFlight without touching the database.
func (p *Pipeline) Run(ctx context.Context, c Connector) (*IngestRun, error) {
	if err := p.acquire(c.Name()); err != nil {
		return nil, err
	}
	defer p.release(c.Name())

	run, err := p.runs.Begin(ctx, c.Name())
	if err != nil {
		return nil, err
	}

	var counts Counts
	status, errMsg := p.execute(ctx, c, run.ID, &counts)
	return p.runs.Finish(ctx, run.ID, status, counts, errMsg)
}

// execute runs the connector and reports the terminal status. It recovers
// panics so Run finalizes the row no matter how the connector or mapping
// fails; a row stranded at running would misreport connector health forever.
func (p *Pipeline) execute(ctx context.Context, c Connector, runID uuid.UUID, counts *Counts) (status RunStatus, errMsg string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("run panicked", "connector", c.Name(), "panic", r)
			status, errMsg = RunError, fmt.Sprintf("panic: %v", r)
		}
	}()

	items, err := c.Fetch(ctx)
	if err != nil {
		p.logger.Error("fetch failed", "connector", c.Name(), "error", err)
		return RunError, err.Error()
	}

	loads, err := p.signposts.CategoryLoads(ctx)
	if err != nil {
		// Tie-breaking degrades to lexical order; not worth failing the run.
		p.logger.Warn("category loads unavailable", "error", err)
		loads = nil
	}

	for _, item := range items {
		counts.ItemsSeen++
		if err := p.processItem(ctx, c, runID, item, loads, counts); err != nil {
			if errors.Is(err, ErrMalformedItem) {
				counts.ItemsMalformed++
				continue
			}
			counts.ItemsFailed++
			p.logger.Error("item failed",
				"connector", c.Name(),
				"title", item.Title,
				"error", err,
			)
		}
	}

	if !counts.Clean() {
		return RunDegraded, ""
	}
	return RunOK, ""
}

func (p *Pipeline) processItem(
	ctx context.Context,
	c Connector,
	runID uuid.UUID,
	item RawItem,
	loads map[string]int,
	counts *Counts,
) error {
	if err := item.Validate(); err != nil {
		return err
	}

	key := events.NewIdentityKey(item.Title, item.URL, item.PublishedAt)

	if _, err := p.events.FindByIdentityKey(ctx, key); err == nil {
		counts.ItemsDeduplicated++
		return nil
	} else if !errors.Is(err, events.ErrNotFound) {
		return fmt.Errorf("dedup lookup: %w", err)
	}

	tier := c.Tier()

	candidates := mapper.Map(mapper.Input{
		Title:   item.Title,
		Summary: item.Summary,
		Tier:    tier,
	}, p.registry, loads)

	if len(candidates) == 0 {
		fallback, err := mapper.Fallback(ctx, p.scorer, mapper.Input{
			Title:   item.Title,
			Summary: item.Summary,
			Tier:    tier,
		})
		if err != nil {
			p.logger.Warn("scorer fallback failed", "title", item.Title, "error", err)
		} else {
			candidates = fallback
		}
	}

	needsReview := len(candidates) == 0
	for _, cand := range candidates {
		if disposition(cand, tier) == policy.DispositionNeedsReview {
			needsReview = true
		}
	}

	// A validated item has a title or a URL; fall back to the URL so the
	// event always carries a displayable title.
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = item.URL
	}

	event, err := p.events.Create(ctx, events.CreateCommand{
		IdentityKey:  key,
		Title:        title,
		Summary:      item.Summary,
		Publisher:    item.Publisher,
		SourceURL:    item.URL,
		SourceType:   c.Source(),
		EvidenceTier: tier,
		PublishedAt:  item.PublishedAt,
		Provisional:  tier == policy.TierB,
		NeedsReview:  needsReview,
		IngestRunID:  &runID,
	})
	if err != nil {
		// Lost the insert race to a concurrent run: same outcome as the
		// lookup-side dedup.
		if errors.Is(err, events.ErrDuplicate) {
			counts.ItemsDeduplicated++
			return nil
		}
		return fmt.Errorf("create event: %w", err)
	}
	counts.ItemsIngested++

	p.archiveItem(ctx, runID, key, item)

	for _, cand := range candidates {
		d := policy.Classify(tier, cand.Confidence)

		status := links.StatusNeedsReview
		if disposition(cand, tier) == policy.DispositionAutoApproved {
			status = links.StatusAutoApproved
		}

		if _, err := p.links.Create(ctx, links.CreateCommand{
			EventID:      event.ID,
			SignpostCode: cand.SignpostCode,
			Confidence:   cand.Confidence,
			Rationale:    cand.Rationale,
			MovesGauges:  d.MovesGauges,
			Status:       status,
		}); err != nil {
			p.logger.Error("link creation failed",
				"event_id", event.ID,
				"signpost", cand.SignpostCode,
				"error", err,
			)
			continue
		}

		counts.LinksCreated++
		if status == links.StatusAutoApproved {
			counts.LinksAutoApproved++
		} else {
			counts.LinksNeedsReview++
		}
	}

	return nil
}

// disposition applies the tier policy to a candidate. Scorer-sourced
// candidates always enter review: confidence from a model is a hint for the
// moderator, never a bypass.
func disposition(cand mapper.Candidate, tier policy.Tier) policy.Disposition {
	if cand.Source == mapper.SourceScorer {
		return policy.DispositionNeedsReview
	}
	return policy.Classify(tier, cand.Confidence).Disposition
}

func (p *Pipeline) archiveItem(ctx context.Context, runID uuid.UUID, key string, item RawItem) {
	if p.archive == nil {
		return
	}

	data, err := json.Marshal(item)
	if err != nil {
		p.logger.Warn("archive marshal failed", "key", key, "error", err)
		return
	}

	blobKey := fmt.Sprintf("runs/%s/%s.json", runID, key)
	if err := p.archive.Upload(ctx, blobKey, bytes.NewReader(data), "application/json"); err != nil {
		p.logger.Warn("archive upload failed", "key", blobKey, "error", err)
	}
}

func (p *Pipeline) acquire(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inflight[name] {
		return fmt.Errorf("%w: %s", ErrRunInFlight, name)
	}
	p.inflight[name] = true
	return nil
}

func (p *Pipeline) release(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, name)
}
