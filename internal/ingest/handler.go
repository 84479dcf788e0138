package ingest

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/lodestar-watch/lodestar/pkg/handlers"
	"github.com/lodestar-watch/lodestar/pkg/pagination"
	"github.com/lodestar-watch/lodestar/pkg/routes"
)

// Handler provides HTTP endpoints for ingest run records and manual triggers.
type Handler struct {
	runs       RunStore
	pipeline   *Pipeline
	connectors map[string]Connector
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler over the run store and the pipeline.
// Connectors are keyed by name for manual trigger lookup.
func NewHandler(
	runs RunStore,
	pipeline *Pipeline,
	connectors []Connector,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	byName := make(map[string]Connector, len(connectors))
	for _, c := range connectors {
		byName[c.Name()] = c
	}

	return &Handler{
		runs:       runs,
		pipeline:   pipeline,
		connectors: byName,
		logger:     logger.With("handler", "ingest"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for ingest endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/runs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{connector}", Handler: h.Trigger},
		},
	}
}

// List returns a paginated list of ingest runs with optional filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.runs.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single ingest run by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	run, err := h.runs.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, run)
}

// Trigger runs the named connector synchronously and returns the finished
// run record, including its counters.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("connector")

	connector, ok := h.connectors[name]
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrUnknownConnector)
		return
	}

	run, err := h.pipeline.Run(r.Context(), connector)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, run)
}
