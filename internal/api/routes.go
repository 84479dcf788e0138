package api

import (
	"net/http"

	"github.com/lodestar-watch/lodestar/internal/config"
	"github.com/lodestar-watch/lodestar/internal/ingest"
	"github.com/lodestar-watch/lodestar/pkg/middleware"
	"github.com/lodestar-watch/lodestar/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
	verifier *middleware.Verifier,
) {
	guard := middleware.Auth(verifier)

	routes.Register(
		mux,
		domain.Signposts.Handler().Routes(),
		domain.Surprise.Handler().Routes(),
		guarded(domain.Events.Handler().Routes(), guard),
		guarded(domain.Links.Handler().Routes(), guard),
		guarded(ingest.NewHandler(
			domain.Runs,
			domain.Pipeline,
			domain.Connectors,
			runtime.Logger,
			runtime.Pagination,
		).Routes(), guard),
		newArchiveHandler(
			runtime.Storage,
			runtime.Logger,
			cfg.Storage.MaxListSize,
		).routes(),
	)
}

// guarded wraps every mutating route in the group with the auth middleware.
// Reads stay open; moderation, retraction, manual submission, and manual
// triggers require a verified subject when auth is enabled.
func guarded(group routes.Group, guard func(http.Handler) http.Handler) routes.Group {
	for i, route := range group.Routes {
		if route.Method == http.MethodGet {
			continue
		}
		group.Routes[i].Handler = guard(route.Handler).ServeHTTP
	}
	return group
}
