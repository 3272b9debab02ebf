package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"contas/internal/backend"
	"contas/internal/cache"
	"contas/internal/cli"
	"contas/internal/events"
	apphttp "contas/internal/http"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/store"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting contas server", "port", cfg.Port, "backend", cfg.DataBackend)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateGateway(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create gateway", log.FieldError, err)
		os.Exit(1)
	}

	snapshotRepo := cli.InitSnapshot(logger, cfg.SnapshotDBPath)
	defer snapshotRepo.Close()

	opts := []store.Option{
		store.WithSnapshot(snapshotRepo),
		store.WithLogger(logger),
	}

	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		opts = append(opts, store.WithEvents(eventsClient))
		logger.Info("Bill events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Bill events disabled - no AMQP_URL provided")
	}

	st := store.New(result.Gateway, opts...)
	reports := services.NewReportService(st, cache.NewLRUCache[services.Report](cfg.CacheSize, cfg.CacheTTL))

	srv, err := apphttp.NewServer(":"+cfg.Port, st, reports, logger)
	if err != nil {
		logger.Error("Failed to build server", log.FieldError, err)
		os.Exit(1)
	}

	// Warm the local collection before serving. A failure here is not
	// fatal: the index page falls back to the snapshot or shows the error.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := st.Refresh(warmCtx); err != nil {
		logger.Warn("Initial refresh failed", log.FieldError, err)
	}
	warmCancel()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Gateway cleanup error", log.FieldError, err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
