package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/internal/links"
	"github.com/lodestar-watch/lodestar/internal/policy"
	"github.com/lodestar-watch/lodestar/pkg/handlers"
	"github.com/lodestar-watch/lodestar/pkg/middleware"
	"github.com/lodestar-watch/lodestar/pkg/pagination"
	"github.com/lodestar-watch/lodestar/pkg/routes"
)

// Handler provides HTTP endpoints for event operations.
type Handler struct {
	sys        System
	links      links.System
	logger     *slog.Logger
	pagination pagination.Config
}

// CreateRequest is the JSON body for manual evidence submission. The identity
// key is derived server-side; manually submitted events always enter review.
type CreateRequest struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Publisher   string     `json:"publisher"`
	SourceURL   string     `json:"source_url"`
	SourceType  SourceType `json:"source_type"`
	Tier        string     `json:"evidence_tier"`
	PublishedAt time.Time  `json:"published_at"`
}

// NewHandler creates a Handler with the given systems, logger, and pagination config.
func NewHandler(sys System, links links.System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		links:      links,
		logger:     logger.With("handler", "events"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for event endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/events",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/links", Handler: h.Links},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/{id}/retract", Handler: h.Retract},
		},
	}
}

// List returns a paginated list of events with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single event by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	e, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, e)
}

// Links returns all signpost links for an event, regardless of moderation state.
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	items, err := h.links.ListForEvent(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Create accepts a manually submitted piece of evidence. Unlike connector
// ingest, manual events get no automatic mapping and are flagged for review.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if req.PublishedAt.IsZero() {
		req.PublishedAt = time.Now().UTC()
	}

	tier := policy.Tier(req.Tier)

	cmd := CreateCommand{
		IdentityKey:  NewIdentityKey(req.Title, req.SourceURL, req.PublishedAt),
		Title:        req.Title,
		Summary:      req.Summary,
		Publisher:    req.Publisher,
		SourceURL:    req.SourceURL,
		SourceType:   req.SourceType,
		EvidenceTier: tier,
		PublishedAt:  req.PublishedAt,
		Provisional:  tier == policy.TierB,
		NeedsReview:  true,
	}

	e, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, e)
}

// Retract marks an event retracted and cascades to its live links.
func (h *Handler) Retract(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd RetractCommand
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	if subject, ok := middleware.ActorFromContext(r.Context()); ok {
		cmd.Actor = subject
	}

	results, err := h.sys.Retract(r.Context(), id, cmd)
	if err != nil {
		status := MapHTTPStatus(err)
		if status == http.StatusInternalServerError {
			status = links.MapHTTPStatus(err)
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}
