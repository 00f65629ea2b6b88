package ingest_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronewatch/dronewatch/internal/dedupe"
	"github.com/dronewatch/dronewatch/internal/events"
	"github.com/dronewatch/dronewatch/internal/geocoder"
	"github.com/dronewatch/dronewatch/internal/ingest"
	"github.com/dronewatch/dronewatch/internal/llmclassifier"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/registry"
	"github.com/dronewatch/dronewatch/internal/store"
	"github.com/dronewatch/dronewatch/internal/validator"
	"go.uber.org/zap"
)

// fakeStore is an in-memory store.Store for exercising the Ingest service
// without a live Postgres.
type fakeStore struct {
	incidents map[uuid.UUID]models.Incident
	byHash    map[string]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{incidents: map[uuid.UUID]models.Incident{}, byHash: map[string]uuid.UUID{}}
}

func (f *fakeStore) CreateIncident(_ context.Context, inc models.Incident) (uuid.UUID, error) {
	f.incidents[inc.ID] = inc
	f.byHash[inc.ContentHash] = inc.ID
	return inc.ID, nil
}

func (f *fakeStore) AttachSource(_ context.Context, incidentID uuid.UUID, src models.IncidentSource) error {
	inc := f.incidents[incidentID]
	inc.Sources = append(inc.Sources, src)
	f.incidents[incidentID] = inc
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

func (f *fakeStore) FindByContentHash(_ context.Context, contentHash string) (uuid.UUID, bool, error) {
	id, ok := f.byHash[contentHash]
	return id, ok, nil
}

func (f *fakeStore) FindNearby(_ context.Context, assetType models.AssetType, _ time.Time) ([]dedupe.Candidate, error) {
	var out []dedupe.Candidate
	for _, inc := range f.incidents {
		if inc.AssetType != assetType {
			continue
		}
		out = append(out, dedupe.Candidate{IncidentID: inc.ID, Lon: inc.Lon, Lat: inc.Lat, OccurredAt: inc.OccurredAt})
	}
	return out, nil
}

func newTestService(t *testing.T, s *fakeStore) *ingest.Service {
	t.Helper()
	reg := registry.New()
	sources := reg.Sources()
	require.NotEmpty(t, sources)

	anchors := fixedAnchor{}
	geo := geocoder.New(anchors)
	classifier := &llmclassifier.Fake{
		Default: llmclassifier.Verdict{Category: llmclassifier.CategoryIncident, IsIncident: true, Confidence: 0.9},
	}
	v := validator.New(classifier)
	logger := zap.NewNop()

	return ingest.New(v, geo, reg, s, &events.Recorder{}, logger)
}

type fixedAnchor struct{}

func (fixedAnchor) Gazetteer() []models.GazetteerEntry {
	return []models.GazetteerEntry{
		{Name: "Aalborg Airport", Lat: 57.0928, Lon: 9.8492, AssetType: models.AssetAirport, Country: "DK", Specificity: 3},
	}
}

func TestIngest_CreatesNewIncident(t *testing.T) {
	s := newFakeStore()
	svc := newTestService(t, s)

	result, err := svc.Ingest(context.Background(), ingest.Report{
		Raw: models.RawReport{
			SourceURL:    "https://example.dk/news/1",
			RawTitle:     "Drone spotted near Aalborg Airport",
			RawBody:      "A drone was seen flying close to the runway.",
			Language:     "en",
			LocationHint: "Aalborg Airport",
			PublishedAt:  time.Now(),
		},
		SourceDomain: "dr.dk",
		SourceType:   models.SourceTypeMedia,
	})

	require.NoError(t, err)
	assert.Equal(t, models.ActionCreated, result.Action)
	assert.NotEqual(t, uuid.Nil, result.IncidentID)
}

func TestIngest_MergesDuplicate(t *testing.T) {
	s := newFakeStore()
	svc := newTestService(t, s)
	publishedAt := time.Now()

	first, err := svc.Ingest(context.Background(), ingest.Report{
		Raw: models.RawReport{
			SourceURL:    "https://example.dk/news/1",
			RawTitle:     "Drone spotted near Aalborg Airport",
			RawBody:      "A drone was seen flying close to the runway.",
			Language:     "en",
			LocationHint: "Aalborg Airport",
			PublishedAt:  publishedAt,
		},
		SourceDomain: "dr.dk",
		SourceType:   models.SourceTypeMedia,
	})
	require.NoError(t, err)

	second, err := svc.Ingest(context.Background(), ingest.Report{
		Raw: models.RawReport{
			SourceURL:    "https://example.dk/news/2",
			RawTitle:     "Drone spotted near Aalborg Airport",
			RawBody:      "A drone was seen flying close to the runway.",
			Language:     "en",
			LocationHint: "Aalborg Airport",
			PublishedAt:  publishedAt,
		},
		SourceDomain: "dr.dk",
		SourceType:   models.SourceTypeMedia,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ActionMerged, second.Action)
	assert.Equal(t, first.IncidentID, second.IncidentID)
}

func TestIngest_RejectsUnresolvableLocation(t *testing.T) {
	s := newFakeStore()
	svc := newTestService(t, s)

	_, err := svc.Ingest(context.Background(), ingest.Report{
		Raw: models.RawReport{
			SourceURL:    "https://example.dk/news/3",
			RawTitle:     "Drone spotted somewhere",
			RawBody:      "A drone sighting.",
			Language:     "en",
			LocationHint: "nowhere in particular",
			PublishedAt:  time.Now(),
		},
		SourceDomain: "dr.dk",
		SourceType:   models.SourceTypeMedia,
	})

	assert.Error(t, err)
}
