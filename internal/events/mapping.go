package events

import (
	"net/url"
	"strconv"
	"time"

	"github.com/lodestar-watch/lodestar/internal/policy"
	"github.com/lodestar-watch/lodestar/pkg/query"
	"github.com/lodestar-watch/lodestar/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "events", "e").
	Project("id", "ID").
	Project("identity_key", "IdentityKey").
	Project("title", "Title").
	Project("summary", "Summary").
	Project("publisher", "Publisher").
	Project("source_url", "SourceURL").
	Project("source_type", "SourceType").
	Project("evidence_tier", "EvidenceTier").
	Project("published_at", "PublishedAt").
	Project("ingested_at", "IngestedAt").
	Project("provisional", "Provisional").
	Project("needs_review", "NeedsReview").
	Project("retracted", "Retracted").
	Project("ingest_run_id", "IngestRunID")

var defaultSort = query.SortField{
	Field:      "PublishedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for event queries.
// SignpostCode and MinConfidence filter through live links so the event list
// can answer "what evidence touched this signpost" without row duplication.
type Filters struct {
	Since         *time.Time  `json:"since,omitempty"`
	Until         *time.Time  `json:"until,omitempty"`
	Tier          *string     `json:"tier,omitempty"`
	SourceType    *SourceType `json:"source_type,omitempty"`
	Publisher     *string     `json:"publisher,omitempty"`
	NeedsReview   *bool       `json:"needs_review,omitempty"`
	Retracted     *bool       `json:"retracted,omitempty"`
	SignpostCode  *string     `json:"signpost_code,omitempty"`
	MinConfidence *float64    `json:"min_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereGTE("PublishedAt", f.Since).
		WhereLTE("PublishedAt", f.Until).
		WhereEquals("EvidenceTier", f.Tier).
		WhereEquals("SourceType", f.SourceType).
		WhereEquals("Publisher", f.Publisher).
		WhereEquals("NeedsReview", f.NeedsReview).
		WhereEquals("Retracted", f.Retracted)

	if f.SignpostCode != nil {
		b.WhereRaw(`EXISTS (
			SELECT 1 FROM public.event_signpost_links l
			WHERE l.event_id = e.id
			AND l.signpost_code = $%d
			AND l.moderation_status IN ('auto_approved', 'approved'))`, *f.SignpostCode)
	}

	if f.MinConfidence != nil {
		b.WhereRaw(`EXISTS (
			SELECT 1 FROM public.event_signpost_links l
			WHERE l.event_id = e.id
			AND l.confidence >= $%d
			AND l.moderation_status IN ('auto_approved', 'approved'))`, *f.MinConfidence)
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Timestamps accept RFC 3339.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if since := values.Get("since"); since != "" {
		if v, err := time.Parse(time.RFC3339, since); err == nil {
			f.Since = &v
		}
	}

	if until := values.Get("until"); until != "" {
		if v, err := time.Parse(time.RFC3339, until); err == nil {
			f.Until = &v
		}
	}

	if tier := values.Get("tier"); tier != "" {
		if policy.Tier(tier).Valid() {
			f.Tier = &tier
		}
	}

	if st := values.Get("source_type"); st != "" {
		if v := SourceType(st); v.Valid() {
			f.SourceType = &v
		}
	}

	if pub := values.Get("publisher"); pub != "" {
		f.Publisher = &pub
	}

	if nr := values.Get("needs_review"); nr != "" {
		if v, err := strconv.ParseBool(nr); err == nil {
			f.NeedsReview = &v
		}
	}

	if ret := values.Get("retracted"); ret != "" {
		if v, err := strconv.ParseBool(ret); err == nil {
			f.Retracted = &v
		}
	}

	if sc := values.Get("signpost_code"); sc != "" {
		f.SignpostCode = &sc
	}

	if mc := values.Get("min_confidence"); mc != "" {
		if v, err := strconv.ParseFloat(mc, 64); err == nil {
			f.MinConfidence = &v
		}
	}

	return f
}

func scanEvent(s repository.Scanner) (Event, error) {
	var e Event
	err := s.Scan(
		&e.ID,
		&e.IdentityKey,
		&e.Title,
		&e.Summary,
		&e.Publisher,
		&e.SourceURL,
		&e.SourceType,
		&e.EvidenceTier,
		&e.PublishedAt,
		&e.IngestedAt,
		&e.Provisional,
		&e.NeedsReview,
		&e.Retracted,
		&e.IngestRunID,
	)
	return e, err
}
