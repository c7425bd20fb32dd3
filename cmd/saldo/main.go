package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/config"
	apphttp "saldo/internal/http"
	applog "saldo/internal/log"
)

func main() {
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.ErrorContext(context.Background(), "Backend cleanup error", applog.FieldError, err)
		}
	}()

	// Provision the owner up front so a broken store fails at start-up.
	if _, err := res.Ledger.Owners.EnsureOwner(ctx, cfg.OwnerEmail); err != nil {
		logger.ErrorContext(ctx, "Failed to provision owner", applog.FieldError, err, "email", cfg.OwnerEmail)
		_ = res.Cleanup()
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, res.Ledger, logger.WithComponent(applog.ComponentHTTP))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.InfoContext(ctx, "Starting saldo server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", cfg.EventsEnabled(),
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "Server error", applog.FieldError, err, "port", cfg.Port)
		cancel()
	}

	<-stopped
	logger.InfoContext(context.Background(), "Server stopped gracefully")
}
