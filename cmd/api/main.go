package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/it-inventory/internal/config"
	"github.com/crucial707/it-inventory/internal/db"
	"github.com/crucial707/it-inventory/internal/inventory"
	"github.com/crucial707/it-inventory/internal/models"
	"github.com/crucial707/it-inventory/internal/repo"
	"github.com/crucial707/it-inventory/internal/scheduler"
)

func main() {

	// Load configuration
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database FIRST
	database, err := db.Connect(cfg.DB())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	version, err := db.Migrate(cfg.DB().URL())
	if err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seedAdmin(ctx, repo.NewUserRepo(database), cfg)

	if cfg.ExportSchedule != "" {
		snapshot := &scheduler.Snapshot{
			Source:   inventory.NewService(database, cfg.SystemActor),
			Dir:      cfg.ExportDir,
			LogoPath: cfg.LogoPath,
		}
		c, err := scheduler.Start(cfg.ExportSchedule, snapshot)
		if err != nil {
			slog.Error("snapshot schedule not started", "error", err)
		} else {
			defer c.Stop()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server LAST
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "tls", cfg.TLSEnabled())
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func setupLogger(format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// seedAdmin creates the configured admin account on first start.
func seedAdmin(ctx context.Context, users *repo.UserRepo, cfg config.Config) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return
	}
	created, err := users.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminPassword, models.RoleAdmin)
	if err != nil {
		slog.Error("seed admin user failed", "username", cfg.AdminUsername, "error", err)
		return
	}
	if created {
		slog.Info("seeded admin user", "username", cfg.AdminUsername)
	}
}
