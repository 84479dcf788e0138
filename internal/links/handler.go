package links

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/handlers"
	"github.com/lodestar-watch/lodestar/pkg/middleware"
	"github.com/lodestar-watch/lodestar/pkg/pagination"
	"github.com/lodestar-watch/lodestar/pkg/routes"
)

// Handler provides HTTP endpoints for event-signpost links and moderation.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// ModerationRequest is the JSON body for approve, reject, and retract actions.
// Actor falls back to the request body when no authenticated subject is present.
type ModerationRequest struct {
	Actor  string `json:"actor,omitempty"`
	Note   string `json:"note,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "links"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for link endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/links",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/changelog", Handler: h.Changelog},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve},
			{Method: "POST", Pattern: "/{id}/reject", Handler: h.Reject},
			{Method: "POST", Pattern: "/{id}/retract", Handler: h.Retract},
		},
	}
}

// List returns a paginated list of links with optional query parameter filters.
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

// Find returns a single link by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	link, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, link)
}

// Changelog returns the full moderation history for a link, oldest first.
func (h *Handler) Changelog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	entries, err := h.sys.ListChangelog(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entries)
}

// Approve transitions a link under review into the approved state.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.sys.Approve)
}

// Reject transitions a link under review into the rejected state.
// The request body must carry a reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.sys.Reject)
}

// Retract transitions a live link into the retracted state.
// The request body must carry a reason.
func (h *Handler) Retract(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.sys.Retract)
}

type moderateFunc func(ctx context.Context, id uuid.UUID, cmd ModerationCommand) (*ModerationResult, error)

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, action moderateFunc) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req ModerationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	// A verified token subject takes precedence over whatever the body claims.
	actor := strings.TrimSpace(req.Actor)
	if subject, ok := middleware.ActorFromContext(r.Context()); ok {
		actor = subject
	}

	cmd := ModerationCommand{
		Actor:  actor,
		Note:   req.Note,
		Reason: req.Reason,
	}

	result, err := action(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
