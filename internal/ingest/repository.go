package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/pagination"
	"github.com/lodestar-watch/lodestar/pkg/query"
	"github.com/lodestar-watch/lodestar/pkg/repository"
)

const runColumns = `id, connector, status, started_at, finished_at, error,
		items_seen, items_ingested, items_deduplicated, items_malformed, items_failed,
		links_created, links_auto_approved, links_needs_review`

type runRepo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewRunStore creates a run store backed by the given database.
func NewRunStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) RunStore {
	return &runRepo{
		db:         db,
		logger:     logger.With("system", "ingest"),
		pagination: pagination,
	}
}

func (r *runRepo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[IngestRun], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *runRepo) Find(ctx context.Context, id uuid.UUID) (*IngestRun, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &run, nil
}

func (r *runRepo) Begin(ctx context.Context, connector string) (*IngestRun, error) {
	q := fmt.Sprintf(`
		INSERT INTO ingest_runs(connector, status)
		VALUES ($1, $2)
		RETURNING %s`, runColumns)

	run, err := repository.QueryOne(ctx, r.db, q, []any{connector, RunRunning}, scanRun)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	r.logger.Info("run started", "run_id", run.ID, "connector", connector)
	return &run, nil
}

func (r *runRepo) Finish(
	ctx context.Context,
	id uuid.UUID,
	status RunStatus,
	counts Counts,
	errMsg string,
) (*IngestRun, error) {
	var errVal *string
	if errMsg != "" {
		errVal = &errMsg
	}

	q := fmt.Sprintf(`
		UPDATE ingest_runs
		SET status = $1, finished_at = NOW(), error = $2,
			items_seen = $3, items_ingested = $4, items_deduplicated = $5,
			items_malformed = $6, items_failed = $7,
			links_created = $8, links_auto_approved = $9, links_needs_review = $10
		WHERE id = $11
		RETURNING %s`, runColumns)

	args := []any{
		status,
		errVal,
		counts.ItemsSeen,
		counts.ItemsIngested,
		counts.ItemsDeduplicated,
		counts.ItemsMalformed,
		counts.ItemsFailed,
		counts.LinksCreated,
		counts.LinksAutoApproved,
		counts.LinksNeedsReview,
		id,
	}

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info("run finished",
		"run_id", run.ID,
		"connector", run.Connector,
		"status", run.Status,
		"seen", run.ItemsSeen,
		"ingested", run.ItemsIngested,
		"deduplicated", run.ItemsDeduplicated,
		"links", run.LinksCreated,
	)
	return &run, nil
}
