package surprise

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lodestar-watch/lodestar/pkg/handlers"
	"github.com/lodestar-watch/lodestar/pkg/routes"
)

// Handler provides HTTP endpoints for surprise reporting.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "surprise"),
	}
}

// Routes returns the route group definition for surprise endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/surprises",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{code}", Handler: h.Report},
		},
	}
}

// Report returns the surprise report for a signpost. Query parameters
// window_days and min_score tune the evidence window and score floor.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	report, err := h.sys.Report(r.Context(), r.PathValue("code"), opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

func optionsFromQuery(r *http.Request) (ReportOptions, error) {
	var opts ReportOptions

	if wd := r.URL.Query().Get("window_days"); wd != "" {
		v, err := strconv.Atoi(wd)
		if err != nil || v <= 0 {
			return opts, ErrInvalidWindow
		}
		opts.WindowDays = v
	}

	if ms := r.URL.Query().Get("min_score"); ms != "" {
		v, err := strconv.ParseFloat(ms, 64)
		if err != nil || v < 0 {
			return opts, ErrInvalidMinScore
		}
		opts.MinScore = v
	}

	return opts, nil
}
