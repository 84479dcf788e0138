package events

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/internal/links"
	"github.com/lodestar-watch/lodestar/pkg/pagination"
	"github.com/lodestar-watch/lodestar/pkg/query"
	"github.com/lodestar-watch/lodestar/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	links      links.System
	pagination pagination.Config
}

// New creates an event repository implementing the System interface.
// The link system handles the cascade when an event is retracted.
func New(db *sql.DB, logger *slog.Logger, links links.System, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "events"),
		links:      links,
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.links, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Event], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Summary", "Publisher")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Event, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) FindByIdentityKey(ctx context.Context, key string) (*Event, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingIdentity
	}

	q, args := query.
		NewBuilder(projection).
		WhereEquals("IdentityKey", key).
		BuildSingleOrNull()

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Event, error) {
	if err := validateCreate(cmd); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO events(
			identity_key, title, summary, publisher, source_url, source_type,
			evidence_tier, published_at, provisional, needs_review, ingest_run_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, identity_key, title, summary, publisher, source_url, source_type,
			evidence_tier, published_at, ingested_at, provisional, needs_review,
			retracted, ingest_run_id`

	args := []any{
		cmd.IdentityKey,
		cmd.Title,
		cmd.Summary,
		cmd.Publisher,
		cmd.SourceURL,
		cmd.SourceType,
		cmd.EvidenceTier,
		cmd.PublishedAt,
		cmd.Provisional,
		cmd.NeedsReview,
		cmd.IngestRunID,
	}

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEvent)
	if err != nil {
		// A unique violation on identity_key means a concurrent run won the
		// race for the same item; callers treat this as a benign repeat.
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("event created",
		"id", e.ID,
		"tier", e.EvidenceTier,
		"source_type", e.SourceType,
		"publisher", e.Publisher,
	)
	return &e, nil
}

func (r *repo) Retract(ctx context.Context, id uuid.UUID, cmd RetractCommand) ([]links.ModerationResult, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Retracted {
		return nil, ErrAlreadyRetracted
	}

	return r.links.RetractEvent(ctx, id, cmd.Actor, cmd.Reason)
}

func validateCreate(cmd CreateCommand) error {
	if strings.TrimSpace(cmd.IdentityKey) == "" {
		return ErrMissingIdentity
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return ErrMissingTitle
	}
	if !cmd.SourceType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, cmd.SourceType)
	}
	if !cmd.EvidenceTier.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, cmd.EvidenceTier)
	}
	return nil
}
