package main

import (
	"context"
	"errors"
	"net/http"
	"time"
	_ "time/tzdata"

	"kharcha/internal/backend"
	"kharcha/internal/cache"
	"kharcha/internal/cli"
	"kharcha/internal/core"
	apphttp "kharcha/internal/http"
	"kharcha/internal/log"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	clock := services.SystemClock(cfg.Location())

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	var publisher services.LedgerPublisher
	if res.Publisher != nil {
		publisher = res.Publisher
	}
	ledger := services.NewLedgerService(res.Store, publisher, clock)
	reports := services.NewReportService(res.Store, clock, cfg.ReportCacheSize, cfg.ReportCacheTTL)
	ledger.Watch(reports)

	srv, err := apphttp.NewServer(":"+cfg.Port, ledger, reports, res.Store, clock, apphttp.Options{
		Language:  core.Language(cfg.DefaultLanguage),
		RateLimit: ratelimit.DefaultConfig(),
		Logger:    logger.WithComponent(log.ComponentHTTP),
	})
	if err != nil {
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}

	caches := cache.NewManager()
	caches.Register(reports.Cache())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})
	caches.StartCleanup(ctx, cfg.ReportCacheTTL)

	logger.Info("Starting kharcha server",
		"port", cfg.Port,
		"backend", backendCfg.Type,
		"language", cfg.DefaultLanguage,
		"timezone", cfg.Timezone,
		"amqp_enabled", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
