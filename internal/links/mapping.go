package links

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/query"
	"github.com/lodestar-watch/lodestar/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "event_signpost_links", "l").
	Project("id", "ID").
	Project("event_id", "EventID").
	Project("signpost_code", "SignpostCode").
	Project("confidence", "Confidence").
	Project("rationale", "Rationale").
	Project("moves_gauges", "MovesGauges").
	Project("moderation_status", "Status").
	Project("version", "Version").
	Project("created_at", "CreatedAt").
	Project("resolved_at", "ResolvedAt").
	Project("resolved_by", "ResolvedBy")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for link queries.
// ApprovedOnly restricts results to live states (auto_approved, approved);
// combine with MovesGauges=true for the published-metrics predicate.
type Filters struct {
	EventID       *uuid.UUID `json:"event_id,omitempty"`
	SignpostCode  *string    `json:"signpost_code,omitempty"`
	Status        *string    `json:"status,omitempty"`
	MovesGauges   *bool      `json:"moves_gauges,omitempty"`
	ApprovedOnly  bool       `json:"approved_only,omitempty"`
	MinConfidence *float64   `json:"min_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("EventID", f.EventID).
		WhereEquals("SignpostCode", f.SignpostCode).
		WhereEquals("Status", f.Status).
		WhereEquals("MovesGauges", f.MovesGauges).
		WhereGTE("Confidence", f.MinConfidence)

	if f.ApprovedOnly {
		b.WhereRaw("l.moderation_status IN ('auto_approved', 'approved')")
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if eid := values.Get("event_id"); eid != "" {
		if v, err := uuid.Parse(eid); err == nil {
			f.EventID = &v
		}
	}

	if sc := values.Get("signpost_code"); sc != "" {
		f.SignpostCode = &sc
	}

	if st := values.Get("status"); st != "" {
		f.Status = &st
	}

	if mg := values.Get("moves_gauges"); mg != "" {
		if v, err := strconv.ParseBool(mg); err == nil {
			f.MovesGauges = &v
		}
	}

	if ao := values.Get("approved_only"); ao != "" {
		if v, err := strconv.ParseBool(ao); err == nil {
			f.ApprovedOnly = v
		}
	}

	if mc := values.Get("min_confidence"); mc != "" {
		if v, err := strconv.ParseFloat(mc, 64); err == nil {
			f.MinConfidence = &v
		}
	}

	return f
}

func scanLink(s repository.Scanner) (Link, error) {
	var l Link
	err := s.Scan(
		&l.ID,
		&l.EventID,
		&l.SignpostCode,
		&l.Confidence,
		&l.Rationale,
		&l.MovesGauges,
		&l.Status,
		&l.Version,
		&l.CreatedAt,
		&l.ResolvedAt,
		&l.ResolvedBy,
	)
	return l, err
}

func scanChangelogEntry(s repository.Scanner) (ChangelogEntry, error) {
	var e ChangelogEntry
	err := s.Scan(
		&e.ID,
		&e.LinkID,
		&e.PriorStatus,
		&e.NewStatus,
		&e.Actor,
		&e.Reason,
		&e.CreatedAt,
	)
	return e, err
}
