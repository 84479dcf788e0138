package ingest

import (
	"net/url"

	"github.com/lodestar-watch/lodestar/pkg/query"
	"github.com/lodestar-watch/lodestar/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "ingest_runs", "r").
	Project("id", "ID").
	Project("connector", "Connector").
	Project("status", "Status").
	Project("started_at", "StartedAt").
	Project("finished_at", "FinishedAt").
	Project("error", "Error").
	Project("items_seen", "ItemsSeen").
	Project("items_ingested", "ItemsIngested").
	Project("items_deduplicated", "ItemsDeduplicated").
	Project("items_malformed", "ItemsMalformed").
	Project("items_failed", "ItemsFailed").
	Project("links_created", "LinksCreated").
	Project("links_auto_approved", "LinksAutoApproved").
	Project("links_needs_review", "LinksNeedsReview")

var defaultSort = query.SortField{
	Field:      "StartedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for run queries.
type Filters struct {
	Connector *string `json:"connector,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Connector", f.Connector).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("connector"); c != "" {
		f.Connector = &c
	}

	if s := values.Get("status"); s != "" {
		if RunStatus(s).Valid() {
			f.Status = &s
		}
	}

	return f
}

func scanRun(s repository.Scanner) (IngestRun, error) {
	var r IngestRun
	err := s.Scan(
		&r.ID,
		&r.Connector,
		&r.Status,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Error,
		&r.ItemsSeen,
		&r.ItemsIngested,
		&r.ItemsDeduplicated,
		&r.ItemsMalformed,
		&r.ItemsFailed,
		&r.LinksCreated,
		&r.LinksAutoApproved,
		&r.LinksNeedsReview,
	)
	return r, err
}
