package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dronewatch/dronewatch/internal/collectors"
	"github.com/dronewatch/dronewatch/internal/dedupe"
	"github.com/dronewatch/dronewatch/internal/events"
	"github.com/dronewatch/dronewatch/internal/geocoder"
	"github.com/dronewatch/dronewatch/internal/ingest"
	"github.com/dronewatch/dronewatch/internal/llmclassifier"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/orchestrator"
	"github.com/dronewatch/dronewatch/internal/registry"
	"github.com/dronewatch/dronewatch/internal/store"
	"github.com/dronewatch/dronewatch/internal/validator"
)

type fakeCollector struct {
	reports []models.RawReport
}

func (f fakeCollector) Collect(context.Context, models.Source) ([]models.RawReport, error) {
	return f.reports, nil
}

type fakeCache struct {
	seen map[string]bool
}

func (f *fakeCache) ScraperCacheSeen(_ context.Context, fingerprint string) (bool, error) {
	return f.seen[fingerprint], nil
}

func (f *fakeCache) ScraperCacheMark(_ context.Context, entry models.ScraperCacheEntry) error {
	f.seen[entry.Fingerprint+entry.SourceName] = true // keyed loosely; real key is computed by the orchestrator
	return nil
}

type fakeStore struct {
	incidents map[uuid.UUID]models.Incident
	byHash    map[string]uuid.UUID
}

func (f *fakeStore) CreateIncident(_ context.Context, inc models.Incident) (uuid.UUID, error) {
	f.incidents[inc.ID] = inc
	f.byHash[inc.ContentHash] = inc.ID
	return inc.ID, nil
}
func (f *fakeStore) AttachSource(_ context.Context, id uuid.UUID, src models.IncidentSource) error {
	inc := f.incidents[id]
	inc.Sources = append(inc.Sources, src)
	f.incidents[id] = inc
	return nil
}
func (f *fakeStore) GetIncident(_ context.Context, id uuid.UUID) (models.Incident, error) {
	return f.incidents[id], nil
}
func (f *fakeStore) ListIncidents(context.Context, store.ListFilter) ([]models.Incident, error) {
	return nil, nil
}
func (f *fakeStore) ScraperCacheSeen(context.Context, string) (bool, error) { return false, nil }
func (f *fakeStore) ScraperCacheMark(context.Context, models.ScraperCacheEntry) error { return nil }
func (f *fakeStore) EnsureSource(context.Context, models.Source) error      { return nil }
func (f *fakeStore) FindByContentHash(_ context.Context, h string) (uuid.UUID, bool, error) {
	id, ok := f.byHash[h]
	return id, ok, nil
}
func (f *fakeStore) FindNearby(context.Context, models.AssetType, time.Time) ([]dedupe.Candidate, error) {
	return nil, nil
}

type fixedAnchor struct{}

func (fixedAnchor) Gazetteer() []models.GazetteerEntry {
	return []models.GazetteerEntry{
		{Name: "Aalborg Airport", Lat: 57.0928, Lon: 9.8492, AssetType: models.AssetAirport, Country: "DK", Specificity: 3},
	}
}

func TestOrchestrator_RunsCollectorsAndIngests(t *testing.T) {
	reg := registry.New()
	source := reg.Sources()[0]

	fakeCol := fakeCollector{reports: []models.RawReport{
		{
			SourceKey:    source.Key,
			SourceURL:    "https://example.dk/1",
			RawTitle:     "Drone spotted near Aalborg Airport",
			RawBody:      "A drone was seen near the runway.",
			Language:     "en",
			LocationHint: "Aalborg Airport",
			PublishedAt:  time.Now(),
		},
	}}

	s := &fakeStore{incidents: map[uuid.UUID]models.Incident{}, byHash: map[string]uuid.UUID{}}
	classifier := &llmclassifier.Fake{Default: llmclassifier.Verdict{Category: llmclassifier.CategoryIncident, IsIncident: true, Confidence: 0.9}}
	v := validator.New(classifier)
	geo := geocoder.New(fixedAnchor{})
	logger := zap.NewNop()
	ingester := ingest.New(v, geo, reg, s, &events.Recorder{}, logger)

	collectorsByType := map[models.SourceType]collectors.Collector{
		source.Type: fakeCol,
	}

	cache := &fakeCache{seen: map[string]bool{}}
	orch := orchestrator.New(reg, collectorsByType, cache, ingester, logger, nil)

	orch.RunOnce(context.Background())

	require.Len(t, s.incidents, 1)
}

func TestOrchestrator_StartStopDoesNotPanic(t *testing.T) {
	reg := registry.New()
	s := &fakeStore{incidents: map[uuid.UUID]models.Incident{}, byHash: map[string]uuid.UUID{}}
	classifier := &llmclassifier.Fake{Default: llmclassifier.Verdict{Category: llmclassifier.CategoryIncident, IsIncident: true, Confidence: 0.9}}
	v := validator.New(classifier)
	geo := geocoder.New(fixedAnchor{})
	logger := zap.NewNop()
	ingester := ingest.New(v, geo, reg, s, &events.Recorder{}, logger)
	cache := &fakeCache{seen: map[string]bool{}}
	orch := orchestrator.New(reg, map[models.SourceType]collectors.Collector{}, cache, ingester, logger, nil)

	require.NotPanics(t, func() {
		require.NoError(t, orch.Start("0 0 0 1 1 *"))
		orch.Stop()
	})
}
