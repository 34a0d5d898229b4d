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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/V4T54L/schoolsite/internal/adapter/api"
	"github.com/V4T54L/schoolsite/internal/adapter/api/handler"
	"github.com/V4T54L/schoolsite/internal/adapter/console"
	"github.com/V4T54L/schoolsite/internal/adapter/metrics"
	"github.com/V4T54L/schoolsite/internal/adapter/pii"
	"github.com/V4T54L/schoolsite/internal/adapter/remote"
	"github.com/V4T54L/schoolsite/internal/adapter/repository"
	"github.com/V4T54L/schoolsite/internal/adapter/repository/fixture"
	"github.com/V4T54L/schoolsite/internal/pkg/config"
	"github.com/V4T54L/schoolsite/internal/pkg/credentials"
	"github.com/V4T54L/schoolsite/internal/pkg/logger"
	"github.com/V4T54L/schoolsite/internal/tenant"
	"github.com/V4T54L/schoolsite/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	redactor := pii.NewRedactor(cfg.LogRedactFields)
	logger := logger.New(cfg.LogLevel, redactor.ReplaceAttr)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewSiteMetrics(reg)

	// --- Start Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Data Source ---
	creds := credentials.FromEnv()
	if pair, ok := creds.Credentials(); ok {
		logger.Info("backend credentials found", "backend", pair)
	} else {
		logger.Info("no backend credentials, serving fixture data")
	}

	clients := remote.NewManager(creds, remote.Dial(logger), logger, m, remote.WithConnectTimeout(cfg.ConnectTimeout))
	defer clients.Close()

	ds, err := fixture.Load(cfg.FixturePath)
	if err != nil {
		logger.Error("failed to load fixture dataset", "error", err, "path", cfg.FixturePath)
		os.Exit(1)
	}
	repos := repository.New(creds, clients, fixture.NewStore(ds, logger), cfg.QueryTimeout, logger, m)

	// --- Tenant Catalog and Resolver ---
	schools := repos.Schools.ListSchools(ctx)
	if len(schools) == 0 {
		logger.Warn("school catalog is empty, every host will be served in platform mode")
	}
	catalog, err := tenant.NewCatalog(schools)
	if err != nil {
		logger.Error("invalid school catalog", "error", err)
		os.Exit(1)
	}
	resolver := tenant.NewResolver(catalog, logger, m,
		tenant.WithDeveloperMode(cfg.DevMode),
		tenant.WithPlatformDomains(cfg.PlatformDomains),
	)
	logger.Info("school catalog loaded", "schools", catalog.Len(), "source", repos.Source)

	// --- Use Cases ---
	siteUseCase := usecase.NewSiteContentUseCase(resolver, repos.Posts, repos.Staff, logger)
	adminUseCase := usecase.NewAdminContentUseCase(repos.Posts, repos.Staff, logger)
	previewUseCase := usecase.NewPreviewUseCase(resolver, resolver)

	// --- Developer Preview ---
	if previewUseCase.Enabled() {
		if cfg.DevOverrideTenant != "" {
			id, err := console.ParseTarget(cfg.DevOverrideTenant)
			if err != nil {
				logger.Error("invalid DEV_OVERRIDE_TENANT", "error", err)
				os.Exit(1)
			}
			if _, err := previewUseCase.Pin(id); err != nil {
				logger.Error("failed to pin developer override", "error", err)
				os.Exit(1)
			}
		}
		go func() {
			devConsole := console.New(previewUseCase, os.Stdout, logger)
			if err := devConsole.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("developer console stopped", "error", err)
			}
		}()
	} else if cfg.DevOverrideTenant != "" {
		logger.Warn("DEV_OVERRIDE_TENANT ignored, developer mode is off")
	}

	// --- SSE Broker ---
	sseBroker := handler.NewSSEBroker(previewUseCase, logger)

	if cfg.AdminAPIKey == "" {
		logger.Warn("ADMIN_API_KEY is empty, admin routes will reject every request")
	}

	// --- Site Server ---
	router := api.NewRouter(cfg, logger, api.Deps{
		Resolver: resolver,
		Site:     siteUseCase,
		Admin:    adminUseCase,
		Preview:  previewUseCase,
		Events:   sseBroker,
		Source:   repos.Source,
	}, resolver.DeveloperModeEnabled())

	siteServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting site server", "addr", siteServer.Addr)
		if err := siteServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("site server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	sseBroker.Close()
	if err := siteServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("site server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
