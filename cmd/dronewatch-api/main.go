// @title        DroneWatch API
// @version      1.0
// @description  Aggregates, deduplicates, and serves drone-incident reports near European critical infrastructure.
// @BasePath     /
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/dronewatch/dronewatch/internal/collectors"
	"github.com/dronewatch/dronewatch/internal/config"
	"github.com/dronewatch/dronewatch/internal/events"
	"github.com/dronewatch/dronewatch/internal/geocoder"
	"github.com/dronewatch/dronewatch/internal/httpapi"
	"github.com/dronewatch/dronewatch/internal/ingest"
	"github.com/dronewatch/dronewatch/internal/llmclassifier"
	"github.com/dronewatch/dronewatch/internal/metrics"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/orchestrator"
	"github.com/dronewatch/dronewatch/internal/query"
	"github.com/dronewatch/dronewatch/internal/registry"
	"github.com/dronewatch/dronewatch/internal/store"
	"github.com/dronewatch/dronewatch/internal/telemetry"
	"github.com/dronewatch/dronewatch/internal/validator"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ── OpenTelemetry ──────────────────────────────────────────────────────
	var meterCollector *metrics.Collector
	if cfg.OTelEndpoint != "" {
		tp, err := telemetry.InitTracer(context.Background(), "dronewatch-api", cfg.OTelEndpoint)
		if err != nil {
			logger.Error("failed to init OTel tracer", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}

		mp, err := telemetry.InitMeterProvider(context.Background(), "dronewatch-api", cfg.OTelEndpoint)
		if err != nil {
			logger.Error("failed to init OTel meter provider", zap.Error(err))
		} else {
			defer mp.Shutdown(context.Background())
			mc, err := metrics.NewCollector()
			if err != nil {
				logger.Error("failed to build collector metrics", zap.Error(err))
			} else {
				meterCollector = mc
			}
		}
	}

	// ── Database ───────────────────────────────────────────────────────────
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to parse PG_URL", zap.Error(err))
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()
	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("connected to database (OTel-instrumented)")

	incidentStore := store.New(pool)

	// ── NATS JetStream ─────────────────────────────────────────────────────
	eventsClient, err := events.NewClient(cfg.NATSUrl, logger)
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer eventsClient.Close()
	if err := eventsClient.ProvisionStreams(); err != nil {
		logger.Fatal("failed to provision NATS streams", zap.Error(err))
	}

	// ── Domain services ────────────────────────────────────────────────────
	reg := registry.New()
	for _, src := range reg.Sources() {
		if err := incidentStore.EnsureSource(context.Background(), src); err != nil {
			logger.Error("failed to upsert registry source", zap.String("source", src.Key), zap.Error(err))
		}
	}

	geo := geocoder.New(reg)
	classifier := llmclassifier.New(cfg.ClassifierBaseURL, cfg.ClassifierAPIKey, cfg.ClassifierModel)
	val := validator.New(classifier)
	ingestSvc := ingest.New(val, geo, reg, incidentStore, eventsClient, logger)
	querySvc := query.New(incidentStore)

	// ── Orchestrator (background collection cycle) ─────────────────────────
	httpClient := collectors.NewHTTPClient("DroneWatch/1.0 (+https://dronewatch.example)")
	collectorsByType := map[models.SourceType]collectors.Collector{
		models.SourceTypePolice:            collectors.NewRSSCollector(httpClient),
		models.SourceTypeNOTAM:             collectors.NewRSSCollector(httpClient),
		models.SourceTypeAviationAuthority: collectors.NewRSSCollector(httpClient),
		models.SourceTypeOSINT:             collectors.NewRSSCollector(httpClient),
		// Media/social publishers rarely expose a feed; the generic list/
		// title selectors below cover a common article-card markup and are
		// expected to be tuned per-source as the Registry grows (TODO:
		// move selectors onto models.Source once per-publisher markup
		// diverges enough to need it).
		models.SourceTypeMedia:  collectors.NewHTMLCollector(httpClient, "article", "h1, h2, h3"),
		models.SourceTypeSocial: collectors.NewHeadlessCollector("article", "h1, h2, h3"),
	}

	scraperCache := incidentStore
	orch := orchestrator.New(reg, collectorsByType, scraperCache, ingestSvc, logger, meterCollector)
	if err := orch.Start(cfg.OrchestratorCron); err != nil {
		logger.Fatal("failed to start orchestrator", zap.Error(err))
	}

	// ── HTTP Server ────────────────────────────────────────────────────────
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(otelecho.Middleware("dronewatch-api"))

	httpapi.RegisterRoutes(e, ingestSvc, querySvc, httpapi.Config{
		IngestBearerToken: cfg.IngestBearerToken,
		CORSOrigin:        cfg.CORSOrigin,
	}, logger)

	go func() {
		logger.Info("dronewatch-api HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failure", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("initiating graceful shutdown")

	orch.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Echo shutdown error", zap.Error(err))
	}
	logger.Info("dronewatch-api shut down cleanly")
}
