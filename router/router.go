// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/starwars-api/auth"
	"github.com/danielhkuo/starwars-api/cliparse"
	"github.com/danielhkuo/starwars-api/handlers"
	"github.com/danielhkuo/starwars-api/loader"
	"github.com/danielhkuo/starwars-api/metrics"
	"github.com/danielhkuo/starwars-api/middleware"
	"github.com/danielhkuo/starwars-api/models"
	"github.com/danielhkuo/starwars-api/resolvers"
	"github.com/danielhkuo/starwars-api/store"
)

func NewRouter(st *store.Store, cfg cliparse.Config) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	schema, err := resolvers.NewSchema(st)
	if err != nil {
		return nil, err
	}

	var loaderOpts []loader.Option
	if cfg.LoaderWait > 0 {
		loaderOpts = append(loaderOpts, loader.WithWait(cfg.LoaderWait))
	}

	// Initialize handlers
	issuer := auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenTTL)
	authHandler := handlers.NewAuthHandler(st, issuer)
	graphqlHandler := middleware.Authenticate(issuer, handlers.NewGraphQLHandler(schema, st, loaderOpts...))

	// Health check
	mux.HandleFunc("GET /health", middleware.WithLogging(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := models.HealthResponse{Status: "healthy", Database: "connected", Timestamp: time.Now().UTC()}
		status := http.StatusOK
		if err := st.Ping(ctx); err != nil {
			slog.Error("database health check failed", "error", err)
			resp.Status = "unhealthy"
			resp.Database = "disconnected"
			status = http.StatusServiceUnavailable
		}
		middleware.JSONResponse(w, status, resp)
	}))

	// GraphQL
	mux.HandleFunc("POST /graphql", middleware.WithLogging(graphqlHandler.ServeHTTP))

	// Credentials
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /auth/me", middleware.WithLogging(authHandler.Me))

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.RootResponse{
			Message: "Star Wars GraphQL API",
			GraphQL: "/graphql",
			Metrics: "/metrics",
		})
	})

	return mux, nil
}
