package main

import (
	"context"
	"errors"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/backend"
	"kharcha/internal/cli"
	"kharcha/internal/log"
	"kharcha/internal/services"
	gsheet "kharcha/internal/sheets/google"
	"kharcha/internal/worker"
)

// Interest accrues with the calendar, so the report changes even when no
// ledger event arrives.
const resyncInterval = 24 * time.Hour

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting kharcha-worker")

	if !cfg.AMQPEnabled() {
		cli.Fatal(logger, "kharcha-worker needs a broker", errors.New("AMQP_URL is not set"))
	}

	// The worker reads the database the server writes to.
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

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	reports := services.NewReportService(res.Store, services.SystemClock(cfg.Location()), cfg.ReportCacheSize, cfg.ReportCacheTTL)
	syncWorker := worker.NewReportSyncWorker(reports, sheetsClient)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Performing startup export...")
	if err := syncWorker.StartupSync(ctx); err != nil {
		logger.Error("Startup export failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return res.Publisher.ConsumeLedgerChanged(gctx, syncWorker.HandleLedgerChanged)
	})
	g.Go(func() error {
		ticker := time.NewTicker(resyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.Export(gctx); err != nil {
					logger.Error("Periodic export failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
