package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lotcarolinas/intake/internal/api"
	"github.com/lotcarolinas/intake/internal/api/health"
	"github.com/lotcarolinas/intake/internal/api/submission"
	"github.com/lotcarolinas/intake/internal/api/ui"
	"github.com/lotcarolinas/intake/internal/api/webhooks"
	"github.com/lotcarolinas/intake/internal/backup"
	"github.com/lotcarolinas/intake/internal/config"
	"github.com/lotcarolinas/intake/internal/crm"
	"github.com/lotcarolinas/intake/internal/database"
	"github.com/lotcarolinas/intake/internal/datastore"
	"github.com/lotcarolinas/intake/internal/submit"
	"github.com/lotcarolinas/intake/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	crmCap := crm.Capability{}
	if cfg.CRMConfigured() {
		crmCap = crm.Capability{
			Enabled: true,
			Client:  crm.NewNeonClient(cfg.NeonOrgID, cfg.NeonAPIKey, cfg.NeonBaseURL, cfg.NeonBaseURLV1),
		}
		slog.Info("Neon CRM integration enabled", "orgID", cfg.NeonOrgID)
	} else {
		slog.Warn("Neon CRM integration disabled: credentials not configured")
	}

	storeCap := datastore.Capability{}
	if cfg.DatastoreConfigured() {
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		storeCap = datastore.Capability{
			Enabled: true,
			Store:   datastore.NewSQLiteStore(db),
		}
		slog.Info("datastore enabled", "path", cfg.DBPath)
	} else {
		slog.Warn("datastore disabled: no database path configured")
	}

	orch := submit.New(backup.NewStore(cfg.BackupDir), crmCap, storeCap)
	coord := syncer.New(storeCap.Store, crmCap)

	mux := http.NewServeMux()

	submission.RegisterRoutes(mux, orch)
	webhooks.RegisterRoutes(mux, coord, webhooks.Secrets{
		Neon:      cfg.NeonWebhookSecret,
		Datastore: cfg.DatastoreWebhookSecret,
	})
	health.RegisterRoutes(mux, health.Integrations{
		CRM:       crmCap.Enabled,
		Datastore: storeCap.Enabled,
	})

	// Intake form
	ui.RegisterRoutes(mux)

	handler := api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		api.CORS(),
		api.Logging(),
	)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("shutting down server")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting intake server", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}
