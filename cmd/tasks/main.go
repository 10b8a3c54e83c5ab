package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tareas/internal/logger"
	"tareas/internal/server"
	"tareas/internal/services"
	db "tareas/repository/db"
	inmemory "tareas/repository/inmemory"
)

const (
	driverMemory    = "memory"
	shutdownTimeout = 30 * time.Second
)

type repository interface {
	services.UserRepository
	services.TaskRepository
}

type apiServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	cfg, err := server.ReadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	for _, w := range cfg.Warnings {
		log.Warn("config", "detail", w)
	}

	if cfg.LogMode == "dev" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, closeRepo := openRepository(cfg, log)
	defer func() {
		if err := closeRepo(); err != nil {
			log.Error("closing storage", "error", err)
		}
	}()

	api := server.NewTaskAPI(
		services.NewAuthService(repo, cfg.JWTSecret, log),
		services.NewTaskService(repo, log),
		cfg,
		log,
	)
	if api == nil {
		log.Fatal("failed to initialize API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, api, log, shutdownTimeout); err != nil {
		log.Error("server stopped with error", "error", err)
		return
	}
	log.Info("server stopped")
}

// openRepository returns the configured SQL store, or the in-memory store
// when the driver is "memory" or the database cannot be reached.
func openRepository(cfg *server.Config, log *logger.Logger) (repository, func() error) {
	fallback := func(reason string, err error) (repository, func() error) {
		log.Warn("using in-memory storage", "reason", reason, "error", err, "driver", cfg.DBDriver)
		return inmemory.NewStorage(), func() error { return nil }
	}

	switch cfg.DBDriver {
	case driverMemory:
		log.Info("using in-memory storage")
		return inmemory.NewStorage(), func() error { return nil }
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fallback("unknown driver", nil)
	}

	if err := db.Migration(cfg.DBDriver, cfg.DBStr, cfg.MigratePath); err != nil {
		return fallback("migrations failed", err)
	}
	log.Info("migrations applied", "path", cfg.MigratePath)

	store, err := db.NewStorage(cfg.DBDriver, cfg.DBStr, log)
	if err != nil {
		return fallback("database unavailable", err)
	}
	return store, store.Close
}

// serve runs api until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, api apiServer, log *logger.Logger, timeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("graceful shutdown complete")
		return nil
	case err := <-serverErr:
		return err
	}
}
