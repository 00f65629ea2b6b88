// Package orchestrator drives the periodic collection cycle: on each cron
// tick, run every active Source's Collector concurrently, skip reports the
// scraper cache has already processed, and feed the rest through the
// Ingest service (spec.md §4.10). Adapted from the teacher's
// notification-service/internal/scheduler.CronScheduler — robfig/cron
// wrapping a periodic action — generalized from a single NATS tick publish
// to a bounded-concurrency fan-out over Collectors.
package orchestrator

import (
	"context"
	"crypto/md5" //nolint:gosec // content-addressing, not a security boundary
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dronewatch/dronewatch/internal/collectors"
	"github.com/dronewatch/dronewatch/internal/ingest"
	"github.com/dronewatch/dronewatch/internal/metrics"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/registry"
)

// maxConcurrentCollectors bounds how many Collectors run at once per
// cycle, so one cycle can't open hundreds of simultaneous headless Chrome
// processes against the host.
const maxConcurrentCollectors = 6

// cycleDeadline bounds the wall-clock time of a single collection cycle;
// any Collector still running past it is abandoned so a hung source never
// blocks the next scheduled tick.
const cycleDeadline = 4 * time.Minute

// ScraperCache is the narrow store surface the Orchestrator needs to
// short-circuit reports it has already ingested.
type ScraperCache interface {
	ScraperCacheSeen(ctx context.Context, fingerprint string) (bool, error)
	ScraperCacheMark(ctx context.Context, entry models.ScraperCacheEntry) error
}

// Orchestrator runs the Registry's active sources through their
// Collectors on a cron schedule and feeds new reports to the Ingest
// service.
type Orchestrator struct {
	cron       *cron.Cron
	registry   *registry.Registry
	collectors map[models.SourceType]collectors.Collector
	cache      ScraperCache
	ingester   *ingest.Service
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// New builds an Orchestrator. collectorsByType maps a source type to the
// Collector implementation used to fetch it — callers typically register
// an RSSCollector for police/notam/aviation_authority sources and an
// HTMLCollector or HeadlessCollector for media/social sources. metricsCollector
// may be nil, in which case per-source counters are skipped (tests don't
// need a live MeterProvider to exercise the collection loop).
func New(
	reg *registry.Registry,
	collectorsByType map[models.SourceType]collectors.Collector,
	cache ScraperCache,
	ingester *ingest.Service,
	logger *zap.Logger,
	metricsCollector *metrics.Collector,
) *Orchestrator {
	return &Orchestrator{
		cron:       cron.New(cron.WithSeconds()),
		registry:   reg,
		collectors: collectorsByType,
		cache:      cache,
		ingester:   ingester,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// Start registers the cron job at the given expression (e.g.
// "0 */15 * * * *" for every 15 minutes) and starts the scheduler.
func (o *Orchestrator) Start(cronExpr string) error {
	if _, err := o.cron.AddFunc(cronExpr, o.runCycle); err != nil {
		return fmt.Errorf("schedule orchestrator cron: %w", err)
	}
	o.cron.Start()
	o.logger.Info("orchestrator started", zap.String("schedule", cronExpr))
	return nil
}

// Stop gracefully stops the cron scheduler, waiting for any in-flight
// cycle invocation to return.
func (o *Orchestrator) Stop() {
	ctx := o.cron.Stop()
	<-ctx.Done()
	o.logger.Info("orchestrator stopped")
}

func (o *Orchestrator) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleDeadline)
	defer cancel()
	o.RunOnce(ctx)
}

// RunOnce executes a single collection cycle synchronously. Start uses
// this as its cron callback; it is exported so tests and a manual
// "collect now" admin trigger can invoke a cycle without waiting for the
// schedule.
func (o *Orchestrator) RunOnce(ctx context.Context) {
	sources := o.registry.Sources()
	o.logger.Info("collection cycle starting", zap.Int("sources", len(sources)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCollectors)

	for _, source := range sources {
		source := source
		collector, ok := o.collectors[source.Type]
		if !ok {
			continue
		}
		g.Go(func() error {
			o.runSource(gctx, collector, source)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("collection cycle error", zap.Error(err))
	}
	o.logger.Info("collection cycle finished")
}

func (o *Orchestrator) runSource(ctx context.Context, collector collectors.Collector, source models.Source) {
	reports, runMetrics := collectors.Run(ctx, collector, source)
	if runMetrics.Err != nil {
		o.logger.Error("collector failed",
			zap.String("source", source.Key),
			zap.Error(runMetrics.Err),
			zap.Duration("duration", runMetrics.Duration))
		if o.metrics != nil {
			o.metrics.RecordSource(ctx, source.Key, 0, 0, 0, 1, runMetrics.Duration.Seconds())
		}
		return
	}

	ingested, skipped, errored := 0, 0, 0
	for _, report := range reports {
		fingerprint := reportFingerprint(report)
		seen, err := o.cache.ScraperCacheSeen(ctx, fingerprint)
		if err != nil {
			o.logger.Error("scraper cache lookup failed", zap.String("source", source.Key), zap.Error(err))
			errored++
			continue
		}
		if seen {
			skipped++
			continue
		}

		_, err = o.ingester.Ingest(ctx, ingest.Report{
			Raw:          report,
			SourceDomain: source.Domain,
			SourceType:   source.Type,
		})
		if err != nil {
			o.logger.Warn("report rejected during ingest",
				zap.String("source", source.Key), zap.String("source_url", report.SourceURL), zap.Error(err))
			errored++
		} else {
			ingested++
		}

		if err := o.cache.ScraperCacheMark(ctx, models.ScraperCacheEntry{
			Fingerprint: fingerprint,
			OccurredAt:  report.PublishedAt,
			SourceName:  source.Name,
		}); err != nil {
			o.logger.Error("scraper cache mark failed", zap.String("source", source.Key), zap.Error(err))
		}
	}

	if o.metrics != nil {
		o.metrics.RecordSource(ctx, source.Key, runMetrics.Found, ingested, skipped, errored, runMetrics.Duration.Seconds())
	}

	o.logger.Info("source collected",
		zap.String("source", source.Key),
		zap.Int("found", runMetrics.Found),
		zap.Int("ingested", ingested),
		zap.Duration("duration", runMetrics.Duration))
}

// reportFingerprint is the scraper cache key: an MD5 of the source URL and
// title, independent of the dedupe package's content/location hashes,
// since the cache exists to skip re-parsing a report the collector has
// already seen, not to decide whether two reports describe the same
// incident.
func reportFingerprint(r models.RawReport) string {
	raw := r.SourceURL + "|" + r.RawTitle
	sum := md5.Sum([]byte(raw)) //nolint:gosec
	return fmt.Sprintf("%x", sum)
}
