// Package collectors implements the per-source fetchers that turn a
// Source Registry entry into a stream of models.RawReport (spec.md §4.2).
// Three collector kinds are supported — RSS, plain HTML, and headless/JS-
// rendered — matching the three fetch strategies needed to cover the
// Registry's publisher mix.
package collectors

import (
	"context"
	"time"

	"github.com/dronewatch/dronewatch/internal/models"
)

// Collector fetches and parses whatever a single Source publishes into a
// uniform slice of RawReport. A Collector must not mutate shared state and
// must respect ctx cancellation — the Orchestrator runs many concurrently
// under a single cycle deadline.
type Collector interface {
	Collect(ctx context.Context, source models.Source) ([]models.RawReport, error)
}

// RunMetrics summarizes one collector invocation for the Orchestrator's
// per-source counters (spec.md §4.10).
type RunMetrics struct {
	SourceKey string
	Found     int
	Err       error
	Duration  time.Duration
}

// Run wraps a Collector call with timing, for the Orchestrator to record
// without every collector implementation doing it itself.
func Run(ctx context.Context, c Collector, source models.Source) ([]models.RawReport, RunMetrics) {
	start := time.Now()
	reports, err := c.Collect(ctx, source)
	m := RunMetrics{SourceKey: source.Key, Found: len(reports), Err: err, Duration: time.Since(start)}
	return reports, m
}
