package surprise

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/repository"
)

// DefaultWindowDays is the trailing evidence window when none is requested.
const DefaultWindowDays = 90

// ReportOptions tunes the evidence window and score floor of a report.
type ReportOptions struct {
	WindowDays int
	MinScore   float64
}

// ReportItem is one piece of live evidence scored against the prediction.
type ReportItem struct {
	EventID     uuid.UUID `json:"event_id"`
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	PublishedAt time.Time `json:"published_at"`
	Confidence  float64   `json:"confidence"`
	Assessment
}

// Report is the surprise picture for one signpost over a trailing window.
// Prediction is null when the signpost has no forecast on record; the report
// still succeeds, it just carries nothing to score against.
type Report struct {
	SignpostCode string       `json:"signpost_code"`
	Prediction   *Prediction  `json:"prediction"`
	WindowDays   int          `json:"window_days"`
	MinScore     float64      `json:"min_score"`
	Items        []ReportItem `json:"items"`
}

// System defines the public contract for surprise operations.
type System interface {
	Handler() *Handler

	// CurrentPrediction returns the newest prediction for a signpost.
	CurrentPrediction(ctx context.Context, signpostCode string) (*Prediction, error)

	// Report scores the signpost's live evidence inside the trailing window
	// against the current prediction, dropping items below MinScore. A
	// signpost without predictions yields a report with a null prediction
	// and no items; an unknown signpost is ErrUnknownSignpost.
	Report(ctx context.Context, signpostCode string, opts ReportOptions) (*Report, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// New creates a surprise repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "surprise"),
		now:    time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) CurrentPrediction(ctx context.Context, signpostCode string) (*Prediction, error) {
	q := `
		SELECT id, signpost_code, predicted_date, uncertainty_days, source, created_at
		FROM predictions
		WHERE signpost_code = $1
		ORDER BY created_at DESC
		LIMIT 1`

	p, err := repository.QueryOne(ctx, r.db, q, []any{signpostCode}, scanPrediction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNoPrediction, signpostCode)
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) Report(ctx context.Context, signpostCode string, opts ReportOptions) (*Report, error) {
	if opts.WindowDays == 0 {
		opts.WindowDays = DefaultWindowDays
	}
	if opts.WindowDays < 0 {
		return nil, ErrInvalidWindow
	}
	if opts.MinScore < 0 {
		return nil, ErrInvalidMinScore
	}

	if err := r.checkSignpost(ctx, signpostCode); err != nil {
		return nil, err
	}

	prediction, err := r.CurrentPrediction(ctx, signpostCode)
	if err != nil {
		// No forecast is a valid answer, not a failure.
		if !errors.Is(err, ErrNoPrediction) {
			return nil, err
		}
		prediction = nil
	}

	var rows []ReportItem
	if prediction != nil {
		since := r.now().UTC().AddDate(0, 0, -opts.WindowDays)

		q := `
			SELECT e.id, e.title, e.publisher, e.published_at, l.confidence
			FROM event_signpost_links l
			JOIN events e ON e.id = l.event_id
			WHERE l.signpost_code = $1
			AND l.moderation_status IN ('auto_approved', 'approved')
			AND NOT e.retracted
			AND e.published_at >= $2
			ORDER BY e.published_at DESC`

		rows, err = repository.QueryMany(ctx, r.db, q, []any{signpostCode, since}, scanReportRow)
		if err != nil {
			return nil, fmt.Errorf("query evidence: %w", err)
		}
	}

	return assembleReport(signpostCode, prediction, rows, opts), nil
}

func (r *repo) checkSignpost(ctx context.Context, code string) error {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM signposts WHERE code = $1)`
	if err := r.db.QueryRowContext(ctx, q, code).Scan(&exists); err != nil {
		return fmt.Errorf("check signpost: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSignpost, code)
	}
	return nil
}

// assembleReport scores each evidence row against the prediction and applies
// the score floor. A nil prediction produces a report with no items.
func assembleReport(code string, p *Prediction, rows []ReportItem, opts ReportOptions) *Report {
	items := make([]ReportItem, 0, len(rows))
	if p != nil {
		for _, row := range rows {
			row.Assessment = Score(p.PredictedDate, p.UncertaintyDays, row.PublishedAt)
			if row.Score < opts.MinScore {
				continue
			}
			items = append(items, row)
		}
	}

	return &Report{
		SignpostCode: code,
		Prediction:   p,
		WindowDays:   opts.WindowDays,
		MinScore:     opts.MinScore,
		Items:        items,
	}
}

func scanPrediction(s repository.Scanner) (Prediction, error) {
	var p Prediction
	err := s.Scan(
		&p.ID,
		&p.SignpostCode,
		&p.PredictedDate,
		&p.UncertaintyDays,
		&p.Source,
		&p.CreatedAt,
	)
	return p, err
}

func scanReportRow(s repository.Scanner) (ReportItem, error) {
	var item ReportItem
	err := s.Scan(
		&item.EventID,
		&item.Title,
		&item.Publisher,
		&item.PublishedAt,
		&item.Confidence,
	)
	return item, err
}
