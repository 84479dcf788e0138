package signposts

import (
	"log/slog"
	"net/http"

	"github.com/lodestar-watch/lodestar/pkg/handlers"
	"github.com/lodestar-watch/lodestar/pkg/routes"
)

// Handler provides HTTP endpoints for signpost reference data.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "signposts"),
	}
}

// Routes returns the route group definition for signpost endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/signposts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{code}", Handler: h.Find},
		},
	}
}

// List returns all tracked signposts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Find returns a single signpost by its code path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	sp, err := h.sys.Find(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sp)
}
