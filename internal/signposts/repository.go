package signposts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lodestar-watch/lodestar/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a signpost repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "signposts"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Signpost, error) {
	q := `SELECT code, title, category FROM signposts ORDER BY code`

	items, err := repository.QueryMany(ctx, r.db, q, nil, scanSignpost)
	if err != nil {
		return nil, fmt.Errorf("query signposts: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, code string) (*Signpost, error) {
	q := `SELECT code, title, category FROM signposts WHERE code = $1`

	s, err := repository.QueryOne(ctx, r.db, q, []any{code}, scanSignpost)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Codes(ctx context.Context) ([]string, error) {
	q := `SELECT code FROM signposts ORDER BY code`

	codes, err := repository.QueryMany(ctx, r.db, q, nil, func(s repository.Scanner) (string, error) {
		var code string
		err := s.Scan(&code)
		return code, err
	})
	if err != nil {
		return nil, fmt.Errorf("query signpost codes: %w", err)
	}
	return codes, nil
}

func (r *repo) CategoryLoads(ctx context.Context) (map[string]int, error) {
	q := `
		SELECT s.code, COUNT(l.id)
		FROM signposts s
		JOIN signposts member ON member.category = s.category
		LEFT JOIN event_signpost_links l
			ON l.signpost_code = member.code
			AND l.moderation_status IN ('auto_approved', 'approved')
		GROUP BY s.code`

	type row struct {
		code  string
		count int
	}

	rows, err := repository.QueryMany(ctx, r.db, q, nil, func(s repository.Scanner) (row, error) {
		var v row
		err := s.Scan(&v.code, &v.count)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("query category loads: %w", err)
	}

	loads := make(map[string]int, len(rows))
	for _, v := range rows {
		loads[v.code] = v.count
	}
	return loads, nil
}

func scanSignpost(s repository.Scanner) (Signpost, error) {
	var sp Signpost
	err := s.Scan(&sp.Code, &sp.Title, &sp.Category)
	return sp, err
}
