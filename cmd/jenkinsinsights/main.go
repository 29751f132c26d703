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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	jenkinsadapter "github.com/ericfisherdev/jenkinsinsights/internal/adapter/driven/jenkins"
	sqliteadapter "github.com/ericfisherdev/jenkinsinsights/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/jenkinsinsights/internal/adapter/driving/http"
	"github.com/ericfisherdev/jenkinsinsights/internal/application"
	"github.com/ericfisherdev/jenkinsinsights/internal/config"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/port/driven"
	"github.com/ericfisherdev/jenkinsinsights/internal/scan"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"request_timeout", cfg.RequestTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	connStore := sqliteadapter.NewConnectionRepo(db)

	factory := func(conn model.Connection) (driven.JenkinsClient, error) {
		return jenkinsadapter.NewClient(conn,
			jenkinsadapter.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	}
	provider := application.NewClientProvider(factory)

	// 6. Restore the persisted active connection. Failure here is not fatal;
	// the API reports "no active connection" until one is activated.
	if active, err := connStore.GetActive(ctx); err != nil {
		slog.Error("failed to load active connection", "error", err)
	} else if active != nil {
		if err := provider.Activate(*active); err != nil {
			slog.Error("failed to activate stored connection", "name", active.Name, "error", err)
		} else {
			slog.Info("active connection restored", "name", active.Name, "url", active.URL)
		}
	}

	// 7. Assemble the console pattern catalog, with operator-supplied
	// patterns appended after the built-in rules.
	catalog := scan.Detailed()
	if cfg.PatternsFile != "" {
		extra, err := scan.LoadCatalogFile(cfg.PatternsFile)
		if err != nil {
			return err
		}
		catalog = append(append([]scan.Pattern{}, catalog...), extra...)
		slog.Info("loaded extra console patterns", "file", cfg.PatternsFile, "count", len(extra))
	}

	// 8. Create services, HTTP handler, and routes.
	troubleshootSvc := application.NewTroubleshootService(provider, slog.Default())
	apiHandler := httphandler.NewHandler(connStore, provider, troubleshootSvc, factory, catalog, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
