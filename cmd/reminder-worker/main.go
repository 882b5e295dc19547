package main

import (
	"context"
	"errors"
	"time"
	_ "time/tzdata"

	"kharcha/internal/backend"
	"kharcha/internal/cli"
	"kharcha/internal/log"
	"kharcha/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentReminder)
	logger.Info("Starting reminder-worker")

	if !cfg.AMQPEnabled() {
		cli.Fatal(logger, "reminder-worker needs a broker", errors.New("AMQP_URL is not set"))
	}

	// Settings live in the database the server writes to.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	backendCfg.Type = backend.SQLite
	backendCfg.SeedFromBackup = false

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}
	defer res.Cleanup()
	if res.Publisher == nil {
		cli.Fatal(logger, "Failed to connect to broker", errors.New("AMQP client unavailable"))
	}

	processor := services.NewReminderProcessor(res.Store, res.Publisher, services.SystemClock(cfg.Location()), cfg.ReminderHour)
	logger.Info("Reminder processor configured",
		"interval", cfg.ReminderInterval,
		"hour", cfg.ReminderHour,
		"timezone", cfg.Timezone)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := processor.Run(ctx, cfg.ReminderInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Reminder processor failed", "error", err)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Reminder worker stopped")
}
