package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dronewatch/dronewatch/internal/dedupe"
	"github.com/dronewatch/dronewatch/internal/events"
	"github.com/dronewatch/dronewatch/internal/geocoder"
	"github.com/dronewatch/dronewatch/internal/ingest"
	"github.com/dronewatch/dronewatch/internal/llmclassifier"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/query"
	"github.com/dronewatch/dronewatch/internal/registry"
	"github.com/dronewatch/dronewatch/internal/store"
	"github.com/dronewatch/dronewatch/internal/validator"
)

// fakeStore is a minimal in-memory store.Store, shared by the ingest and
// query handler tests below.
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
	inc, ok := f.incidents[id]
	if !ok {
		return models.Incident{}, nil
	}
	return inc, nil
}
func (f *fakeStore) ListIncidents(_ context.Context, _ store.ListFilter) ([]models.Incident, error) {
	out := make([]models.Incident, 0, len(f.incidents))
	for _, inc := range f.incidents {
		out = append(out, inc)
	}
	return out, nil
}
func (f *fakeStore) ScraperCacheSeen(context.Context, string) (bool, error)          { return false, nil }
func (f *fakeStore) ScraperCacheMark(context.Context, models.ScraperCacheEntry) error { return nil }
func (f *fakeStore) EnsureSource(context.Context, models.Source) error               { return nil }
func (f *fakeStore) FindByContentHash(_ context.Context, h string) (uuid.UUID, bool, error) {
	id, ok := f.byHash[h]
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

type fixedAnchor struct{}

func (fixedAnchor) Gazetteer() []models.GazetteerEntry {
	return []models.GazetteerEntry{
		{Name: "Aalborg Airport", Lat: 57.0928, Lon: 9.8492, AssetType: models.AssetAirport, Country: "DK", Specificity: 3},
	}
}

func newTestIngestService(s *fakeStore) *ingest.Service {
	reg := registry.New()
	geo := geocoder.New(fixedAnchor{})
	classifier := &llmclassifier.Fake{
		Default: llmclassifier.Verdict{Category: llmclassifier.CategoryIncident, IsIncident: true, Confidence: 0.9},
	}
	v := validator.New(classifier)
	return ingest.New(v, geo, reg, s, &events.Recorder{}, zap.NewNop())
}

const testBearerToken = "operator-secret"

func TestIngestHandler_Success(t *testing.T) {
	s := newFakeStore()
	h := ingestHandler(newTestIngestService(s), zap.NewNop())

	body := `{
		"title": "Drone spotted near Aalborg Airport",
		"narrative": "A drone was seen close to the runway.",
		"location_hint": "Aalborg Airport",
		"source_domain": "dr.dk",
		"source_type": "media",
		"source_url": "https://example.dk/news/1",
		"language": "en"
	}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "created", resp.Action)
	assert.NotEmpty(t, resp.IncidentID)
}

func TestIngestHandler_MissingTitle(t *testing.T) {
	s := newFakeStore()
	h := ingestHandler(newTestIngestService(s), zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"narrative":"no title here"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestHandler_RejectedByValidator(t *testing.T) {
	s := newFakeStore()
	h := ingestHandler(newTestIngestService(s), zap.NewNop())

	body := `{
		"title": "Local bakery wins award",
		"narrative": "Nothing to do with aviation.",
		"location_hint": "Aalborg Airport",
		"source_domain": "dr.dk",
		"source_type": "media",
		"source_url": "https://example.dk/news/2"
	}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBearerAuth_RejectsMissingToken(t *testing.T) {
	mw := BearerAuth(testBearerToken)
	called := false
	next := func(echo.Context) error { called = true; return nil }

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestBearerAuth_AllowsCorrectToken(t *testing.T) {
	mw := BearerAuth(testBearerToken)
	called := false
	next := func(echo.Context) error { called = true; return nil }

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	req.Header.Set("Authorization", "Bearer "+testBearerToken)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, mw(next)(c))
	assert.True(t, called)
}

func TestGetIncidentHandler_NotFound(t *testing.T) {
	reader := fakeReaderStub{byID: map[uuid.UUID]models.Incident{}}
	svc := query.New(reader)
	h := getIncidentHandler(svc, zap.NewNop())

	id := uuid.New()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/incidents/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetIncidentHandler_Found(t *testing.T) {
	id := uuid.New()
	reader := fakeReaderStub{byID: map[uuid.UUID]models.Incident{
		id: {ID: id, Title: "Drone near harbor", AssetType: models.AssetHarbor, EvidenceScore: models.EvidenceVerified},
	}}
	svc := query.New(reader)
	h := getIncidentHandler(svc, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/incidents/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp incidentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Drone near harbor", resp.Title)
	assert.Equal(t, "VERIFIED", resp.EvidenceLabel)
}

func TestListIncidentsHandler_BadLimit(t *testing.T) {
	svc := query.New(fakeReaderStub{})
	h := listIncidentsHandler(svc, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/incidents?limit=not-a-number", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmbedSnippetHandler_ReturnsHTML(t *testing.T) {
	id := uuid.New()
	reader := fakeReaderStub{all: []models.Incident{
		{ID: id, Title: "Drone near airport", Lon: 10, Lat: 57, AssetType: models.AssetAirport, EvidenceScore: models.EvidenceVerified, OccurredAt: time.Now()},
	}}
	svc := query.New(reader)
	h := embedSnippetHandler(svc, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/embed/snippet?height=450", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Drone near airport")
	assert.Contains(t, body, "450px")
}

func TestParseEmbedHeight(t *testing.T) {
	assert.Equal(t, "300px", parseEmbedHeight(""))
	assert.Equal(t, "400px", parseEmbedHeight("400"))
	assert.Equal(t, "50vh", parseEmbedHeight("50vh"))
	assert.Equal(t, "300px", parseEmbedHeight("-5"))
}

func TestParseBBox_RejectsPartial(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/incidents?bbox=1.0,2.0,3.0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var filter store.ListFilter
	err := parseBBox(c, &filter)
	assert.Error(t, err)
}

func TestParseBBox_AcceptsFourValues(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/incidents?bbox=1.0,2.0,3.0,4.0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var filter store.ListFilter
	require.NoError(t, parseBBox(c, &filter))
	require.NotNil(t, filter.BBoxMinLon)
	assert.Equal(t, 1.0, *filter.BBoxMinLon)
	assert.Equal(t, 4.0, *filter.BBoxMaxLat)
}

// fakeReaderStub implements query.Reader for the handler tests above.
type fakeReaderStub struct {
	byID map[uuid.UUID]models.Incident
	all  []models.Incident
}

func (f fakeReaderStub) GetIncident(_ context.Context, id uuid.UUID) (models.Incident, error) {
	return f.byID[id], nil
}

func (f fakeReaderStub) ListIncidents(_ context.Context, _ store.ListFilter) ([]models.Incident, error) {
	return f.all, nil
}
