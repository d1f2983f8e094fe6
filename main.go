package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/starwars-api/auth"
	"github.com/danielhkuo/starwars-api/cliparse"
	"github.com/danielhkuo/starwars-api/db"
	"github.com/danielhkuo/starwars-api/middleware"
	"github.com/danielhkuo/starwars-api/router"
	"github.com/danielhkuo/starwars-api/store"
)

func main() {
	var err error

	// .env first so flags and real env vars win
	if err := cliparse.LoadEnv(); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx := context.Background()
	dialect := db.Dialect(cfg.DatabaseType)

	// Connect to the database
	dbConn, err := db.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Apply migrations
	if err := db.Migrate(ctx, dbConn, dialect); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "dialect", dialect)

	st := store.New(dbConn, dialect)

	if cfg.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			slog.Error("admin password hashing failed", "error", err)
			os.Exit(1)
		}
		created, err := st.EnsureAdmin(ctx, "admin@starwars.com", hash)
		if err != nil {
			slog.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("Default admin user created", "username", "admin")
		}
	}

	if cfg.Seed {
		seeded, err := st.Seed(ctx)
		if err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		if seeded {
			slog.Info("Seed data loaded")
		}
	}

	// Create router
	mux, err := router.NewRouter(st, cfg)
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Shutdown(context.Background())
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "graphql", "/graphql")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
