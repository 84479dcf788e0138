// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lodestar-watch/lodestar/internal/config"
	"github.com/lodestar-watch/lodestar/internal/infrastructure"
	"github.com/lodestar-watch/lodestar/pkg/middleware"
	"github.com/lodestar-watch/lodestar/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, nil, err
	}

	verifier, err := middleware.NewVerifier(ctx, &cfg.API.Auth)
	if err != nil {
		return nil, nil, fmt.Errorf("auth verifier: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime, verifier)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
