package main

import (
	"context"
	"errors"
	"os"
	"time"

	"contas/internal/backend"
	"contas/internal/cli"
	"contas/internal/events"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/store"
	"contas/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting contas-reminder", "interval", cfg.ReminderInterval.String())

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

	// Without AMQP the worker still runs the periodic scan, it just
	// does not react to changes made by the server process.
	var consumer worker.EventConsumer
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		consumer = client
		logger.Info("Consuming bill events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Bill events disabled - no AMQP_URL provided")
	}

	st := store.New(result.Gateway, opts...)
	scanner := services.NewOverdueScanner(st, logger)
	w := worker.NewReminderWorker(st, scanner, consumer, cfg.ReminderInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Gateway cleanup error", log.FieldError, err)
		}
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
