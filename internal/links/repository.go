package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/pagination"
	"github.com/lodestar-watch/lodestar/pkg/query"
	"github.com/lodestar-watch/lodestar/pkg/repository"
)

// SystemActor is the actor recorded for transitions the pipeline itself
// performs, such as the initial disposition assignment.
const SystemActor = "system"

const linkColumns = `id, event_id, signpost_code, confidence, rationale,
		moves_gauges, moderation_status, version, created_at, resolved_at, resolved_by`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a link repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "links"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Link], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "SignpostCode", "Rationale")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLink)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Link, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLink)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (r *repo) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]Link, error) {
	qb := query.NewBuilder(projection, defaultSort).WhereEquals("EventID", eventID)
	q, args := qb.Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanLink)
	if err != nil {
		return nil, fmt.Errorf("query event links: %w", err)
	}
	return items, nil
}

func (r *repo) ListChangelog(ctx context.Context, linkID uuid.UUID) ([]ChangelogEntry, error) {
	q := `
		SELECT id, link_id, prior_status, new_status, actor, reason, created_at
		FROM moderation_changelog
		WHERE link_id = $1
		ORDER BY created_at ASC`

	entries, err := repository.QueryMany(ctx, r.db, q, []any{linkID}, scanChangelogEntry)
	if err != nil {
		return nil, fmt.Errorf("query changelog: %w", err)
	}
	return entries, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Link, error) {
	if !cmd.Status.Initial() {
		return nil, fmt.Errorf("%w: %q is not an initial disposition", ErrInvalidStatus, cmd.Status)
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO event_signpost_links(event_id, signpost_code, confidence, rationale, moves_gauges, moderation_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, linkColumns)

	insertArgs := []any{
		cmd.EventID,
		cmd.SignpostCode,
		cmd.Confidence,
		cmd.Rationale,
		cmd.MovesGauges,
		cmd.Status,
	}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Link, error) {
		link, err := repository.QueryOne(ctx, tx, insertQ, insertArgs, scanLink)
		if err != nil {
			return Link{}, err
		}

		if _, err := appendChangelog(ctx, tx, link.ID, nil, link.Status, SystemActor, nil); err != nil {
			return Link{}, err
		}

		return link, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("link created",
		"id", l.ID,
		"event_id", l.EventID,
		"signpost", l.SignpostCode,
		"status", l.Status,
		"moves_gauges", l.MovesGauges,
	)
	return &l, nil
}

func (r *repo) Approve(ctx context.Context, id uuid.UUID, cmd ModerationCommand) (*ModerationResult, error) {
	var note *string
	if n := strings.TrimSpace(cmd.Note); n != "" {
		note = &n
	}
	return r.transition(ctx, id, StatusApproved, cmd.Actor, note)
}

func (r *repo) Reject(ctx context.Context, id uuid.UUID, cmd ModerationCommand) (*ModerationResult, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", ErrMissingReason)
	}
	return r.transition(ctx, id, StatusRejected, cmd.Actor, &reason)
}

func (r *repo) Retract(ctx context.Context, id uuid.UUID, cmd ModerationCommand) (*ModerationResult, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: retraction requires a reason", ErrMissingReason)
	}
	return r.transition(ctx, id, StatusRetracted, cmd.Actor, &reason)
}

// transition applies one moderation state change. The status update and the
// changelog append are a single transaction; the optimistic version check
// serializes concurrent actions on the same link, so exactly one wins and
// the loser sees ErrConflictingTransition.
func (r *repo) transition(
	ctx context.Context,
	id uuid.UUID,
	to Status,
	actor string,
	reason *string,
) (*ModerationResult, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, ErrMissingActor
	}

	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(current.Status, to) {
		return nil, fmt.Errorf(
			"%w: cannot move link %s from %q to %q",
			ErrInvalidTransition, id, current.Status, to,
		)
	}

	updateQ := fmt.Sprintf(`
		UPDATE event_signpost_links
		SET moderation_status = $1, resolved_at = NOW(), resolved_by = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING %s`, linkColumns)

	result, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ModerationResult, error) {
		updated, err := repository.QueryOne(
			ctx, tx, updateQ,
			[]any{to, actor, id, current.Version},
			scanLink,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ModerationResult{}, fmt.Errorf(
					"%w: link %s changed since it was read",
					ErrConflictingTransition, id,
				)
			}
			return ModerationResult{}, err
		}

		prior := current.Status
		entry, err := appendChangelog(ctx, tx, id, &prior, to, actor, reason)
		if err != nil {
			return ModerationResult{}, err
		}

		return ModerationResult{Link: &updated, Changelog: entry}, nil
	})

	if err != nil {
		return nil, err
	}

	r.logger.Info("link transitioned",
		"id", id,
		"prior", current.Status,
		"new", to,
		"actor", actor,
	)
	return &result, nil
}

func (r *repo) RetractEvent(ctx context.Context, eventID uuid.UUID, actor, reason string) ([]ModerationResult, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, ErrMissingActor
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: event retraction requires a reason", ErrMissingReason)
	}

	selectQ := fmt.Sprintf(`
		SELECT %s
		FROM event_signpost_links
		WHERE event_id = $1 AND moderation_status IN ('auto_approved', 'approved')
		FOR UPDATE`, linkColumns)

	updateQ := fmt.Sprintf(`
		UPDATE event_signpost_links
		SET moderation_status = $1, resolved_at = NOW(), resolved_by = $2, version = version + 1
		WHERE id = $3
		RETURNING %s`, linkColumns)

	results, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]ModerationResult, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE events SET retracted = TRUE WHERE id = $1 AND NOT retracted",
			eventID,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrEventRetracted
			}
			return nil, err
		}

		live, err := repository.QueryMany(ctx, tx, selectQ, []any{eventID}, scanLink)
		if err != nil {
			return nil, fmt.Errorf("query live links: %w", err)
		}

		results := make([]ModerationResult, 0, len(live))
		for _, link := range live {
			updated, err := repository.QueryOne(
				ctx, tx, updateQ,
				[]any{StatusRetracted, actor, link.ID},
				scanLink,
			)
			if err != nil {
				return nil, fmt.Errorf("retract link %s: %w", link.ID, err)
			}

			prior := link.Status
			entry, err := appendChangelog(ctx, tx, link.ID, &prior, StatusRetracted, actor, &reason)
			if err != nil {
				return nil, err
			}

			results = append(results, ModerationResult{Link: &updated, Changelog: entry})
		}

		return results, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("event retracted",
		"event_id", eventID,
		"links_retracted", len(results),
		"actor", actor,
	)
	return results, nil
}

// appendChangelog inserts one audit row. The changelog is append-only: no
// update or delete statement exists anywhere in this package.
func appendChangelog(
	ctx context.Context,
	tx *sql.Tx,
	linkID uuid.UUID,
	prior *Status,
	next Status,
	actor string,
	reason *string,
) (*ChangelogEntry, error) {
	q := `
		INSERT INTO moderation_changelog(link_id, prior_status, new_status, actor, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, link_id, prior_status, new_status, actor, reason, created_at`

	entry, err := repository.QueryOne(
		ctx, tx, q,
		[]any{linkID, prior, next, actor, reason},
		scanChangelogEntry,
	)
	if err != nil {
		return nil, fmt.Errorf("append changelog: %w", err)
	}
	return &entry, nil
}
