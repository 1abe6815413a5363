/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the commission engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env / environment)
  2. Configure structured logging
  3. Initialize SQLite store
  4. Create ledger and authorization services
  5. Configure HTTP router, start scheduler
  6. Start server with graceful shutdown

CONFIGURATION:
  All config comes from the environment (see config package):
  ADDR, DB_PATH, TIMEZONE, SPLIT_OWNER, SPLIT_PARTNER,
  UNDO_WINDOW_MINUTES, DUPLICATE_WINDOW_MINUTES, EXTREME_MULTIPLIER,
  BOUNDARY_THRESHOLD_MINUTES, ZERO_ACTIVITY_DAYS, PERIOD_LENGTH_DAYS,
  STRICT_PERIOD_PARSE, OWNER_USER_ID, LOG_LEVEL

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  DB_PATH=./data/commission.db OWNER_USER_ID=12345 ./server

  # Run with in-memory database
  DB_PATH=":memory:" OWNER_USER_ID=12345 ./server

SEE ALSO:
  - config/config.go: Environment handling
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/commission-engine/api"
	"github.com/warp/commission-engine/auth"
	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/logging"
	"github.com/warp/commission-engine/store/sqlite"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Services
	svc := ledger.NewService(store, cfg.LedgerConfig())
	authz := auth.NewService(store, cfg.OwnerID)

	// HTTP
	handler := api.NewHandler(svc, store, authz, cfg)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background jobs
	scheduler := api.NewScheduler(svc, store, cfg, api.LogNotifier{})
	scheduler.Start()

	go func() {
		slog.Info("server starting", "addr", cfg.Addr, "timezone", cfg.Timezone.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
