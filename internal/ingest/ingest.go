// Package ingest implements the write path shared by the HTTP ingest
// handler and the Orchestrator's collector loop: validate, geocode,
// deduplicate, persist, publish. Per spec.md §9's resolved Open Question,
// a successful call always returns 200-equivalent IngestResult — merging
// into an existing incident is success, not a conflict.
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dronewatch/dronewatch/internal/apierr"
	"github.com/dronewatch/dronewatch/internal/dedupe"
	"github.com/dronewatch/dronewatch/internal/events"
	"github.com/dronewatch/dronewatch/internal/geocoder"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/registry"
	"github.com/dronewatch/dronewatch/internal/store"
	"github.com/dronewatch/dronewatch/internal/validator"
)

// Service wires the ingestion pipeline's stages together.
type Service struct {
	validator *validator.Validator
	geocoder  *geocoder.Geocoder
	registry  *registry.Registry
	store     store.Store
	publisher events.Publisher
	logger    *zap.Logger
}

// New constructs the Ingest service from its collaborators.
func New(v *validator.Validator, g *geocoder.Geocoder, r *registry.Registry, s store.Store, p events.Publisher, logger *zap.Logger) *Service {
	return &Service{validator: v, geocoder: g, registry: r, store: s, publisher: p, logger: logger}
}

// Report is one report to ingest, from either the HTTP ingest handler or a
// collector. Raw carries the text the Validator's layers 1-3 run against.
// Lat/Lon are the caller's explicit coordinates (spec.md §4.8); when absent
// the Geocoder resolves them from Raw.LocationHint. Sources lists every
// source descriptor to attach; when empty, a single source is built from
// SourceDomain/SourceType/Raw's source fields, so collector call sites
// (which only ever see one source per report) don't need to change shape.
type Report struct {
	Raw          models.RawReport
	Lat, Lon     *float64
	AssetType    models.AssetType
	Status       models.IncidentStatus
	Country      string
	SourceDomain string
	SourceType   models.SourceType
	Sources      []models.IngestSourceInput
}

// Ingest runs report through validate (layers 1-3) → geocode (only if
// lat/lon absent) → bounds check (layer 4) → dedupe → persist → publish,
// per spec.md §4.8's documented pipeline order. Running the text layers
// before the Geocoder means an obvious non-incident is rejected with the
// right reason (e.g. NOT_AN_INCIDENT) instead of whatever the Geocoder
// happens to fail with on an unparseable location hint.
func (s *Service) Ingest(ctx context.Context, report Report) (models.IngestResult, error) {
	sources := report.sourceInputs()
	for _, src := range sources {
		if err := ValidateSourceURL(src.SourceURL); err != nil {
			return models.IngestResult{}, err
		}
	}

	valResult, err := s.validator.Validate(ctx, report.Raw)
	if err != nil {
		return models.IngestResult{}, err
	}
	if valResult.DegradedMode {
		s.logger.Warn("ingest proceeding in degraded mode (classifier unavailable)",
			zap.String("source_url", report.Raw.SourceURL))
	}

	lon, lat, assetType, err := s.resolveLocation(report)
	if err != nil {
		return models.IngestResult{}, err
	}

	if err := s.validator.CheckBounds(lon, lat); err != nil {
		return models.IngestResult{}, err
	}

	country := report.Country
	if country == "" {
		country = geocoder.CountryForCoordinate(lon, lat)
	}

	status := report.Status
	if status == "" {
		status = models.StatusActive
	}

	normalizedTitle := dedupe.NormalizeTitle(report.Raw.RawTitle)
	contentHash := dedupe.ContentHash(report.Raw.PublishedAt, lon, lat, normalizedTitle, assetType)
	locationHash := dedupe.LocationHash(lon, lat, assetType)

	decision, err := dedupe.Decide(ctx, s.store, contentHash, lon, lat, assetType, report.Raw.PublishedAt)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("dedupe decide: %w", err)
	}

	switch decision.Kind {
	case dedupe.DecisionMerge:
		if err := s.attachSources(ctx, decision.ExistingID, sources, report.Raw.PublishedAt, report.Raw.Language); err != nil {
			return models.IngestResult{}, err
		}

		incident, err := s.store.GetIncident(ctx, decision.ExistingID)
		if err != nil {
			return models.IngestResult{}, err
		}
		if s.publisher != nil {
			_ = s.publisher.PublishIncidentMerged(events.IncidentMerged{
				IncidentID:     decision.ExistingID,
				NewSourceCount: len(incident.Sources),
				EvidenceScore:  int(incident.EvidenceScore),
				PublishedAt:    time.Now().UTC(),
			})
		}
		return models.IngestResult{IncidentID: decision.ExistingID, Action: models.ActionMerged}, nil

	default: // dedupe.DecisionNew
		now := time.Now().UTC()
		incident := models.Incident{
			ID:              uuid.New(),
			Title:           report.Raw.RawTitle,
			Narrative:       report.Raw.RawBody,
			OccurredAt:      report.Raw.PublishedAt,
			FirstSeenAt:     now,
			LastSeenAt:      now,
			Lon:             lon,
			Lat:             lat,
			AssetType:       assetType,
			Status:          status,
			Country:         country,
			EvidenceScore:   models.EvidenceUnconfirmed,
			NormalizedTitle: normalizedTitle,
			LocationHash:    locationHash,
			ContentHash:     contentHash,
		}

		incidentID, err := s.store.CreateIncident(ctx, incident)
		if err != nil {
			return models.IngestResult{}, err
		}

		if err := s.attachSources(ctx, incidentID, sources, report.Raw.PublishedAt, report.Raw.Language); err != nil {
			return models.IngestResult{}, err
		}

		if s.publisher != nil {
			_ = s.publisher.PublishIncidentCreated(events.IncidentCreated{
				IncidentID:    incidentID,
				AssetType:     string(assetType),
				Country:       country,
				EvidenceScore: int(models.EvidenceUnconfirmed),
				OccurredAt:    report.Raw.PublishedAt,
				PublishedAt:   now,
			})
		}

		return models.IngestResult{IncidentID: incidentID, Action: models.ActionCreated}, nil
	}
}

// sourceInputs returns the source descriptors to attach. A caller-supplied
// Sources list takes precedence; otherwise a single source is built from
// the report's top-level fields, preserving the single-source shape
// collectors have always produced.
func (r Report) sourceInputs() []models.IngestSourceInput {
	if len(r.Sources) > 0 {
		return r.Sources
	}
	return []models.IngestSourceInput{{
		SourceURL:   r.Raw.SourceURL,
		SourceType:  r.SourceType,
		SourceQuote: r.Raw.SourceQuote,
		SourceName:  r.Raw.SourceTitle,
	}}
}

// resolveLocation returns the coordinates and asset type to store. When the
// caller supplies explicit Lat/Lon (spec.md §4.8), geocoding is skipped
// entirely and AssetType must be supplied too. Otherwise the Geocoder
// resolves both from Raw.LocationHint.
func (s *Service) resolveLocation(report Report) (lon, lat float64, assetType models.AssetType, err error) {
	if report.Lat != nil && report.Lon != nil {
		if report.AssetType == "" {
			return 0, 0, "", fmt.Errorf("%w: asset_type is required when lat/lon are supplied", apierr.ErrValidationFailed)
		}
		return *report.Lon, *report.Lat, report.AssetType, nil
	}

	country := ""
	for _, src := range s.registry.Sources() {
		if strings.EqualFold(src.Domain, report.SourceDomain) {
			country = src.Country
			break
		}
	}
	geo, err := s.geocoder.Resolve(report.Raw.LocationHint, country)
	if err != nil {
		return 0, 0, "", err
	}
	return geo.Lon, geo.Lat, geo.AssetType, nil
}

// attachSources resolves each source descriptor to a sources row (ensuring
// ad-hoc/unregistered domains are created, not just assumed) and attaches
// it to incidentID.
func (s *Service) attachSources(ctx context.Context, incidentID uuid.UUID, sources []models.IngestSourceInput, publishedAt time.Time, lang string) error {
	for _, src := range sources {
		sourceID, err := s.resolveSourceID(ctx, src)
		if err != nil {
			return err
		}
		if err := s.store.AttachSource(ctx, incidentID, models.IncidentSource{
			IncidentID:  incidentID,
			SourceID:    sourceID,
			SourceURL:   src.SourceURL,
			SourceQuote: src.SourceQuote,
			SourceTitle: src.SourceName,
			PublishedAt: publishedAt,
			Lang:        lang,
		}); err != nil {
			return fmt.Errorf("attach source: %w", err)
		}
	}
	return nil
}

// resolveSourceID maps a source descriptor's URL to a sources row,
// registering an ad-hoc entry via store.EnsureSource when the domain isn't
// already in the Registry — otherwise AttachSource's foreign key to
// sources(id) would fail for any publisher the operator hasn't pre-seeded.
func (s *Service) resolveSourceID(ctx context.Context, src models.IngestSourceInput) (uuid.UUID, error) {
	domain := sourceDomain(src.SourceURL)
	for _, reg := range s.registry.Sources() {
		if reg.Domain == domain {
			return reg.ID, nil
		}
	}

	trustWeight := src.TrustWeight
	if trustWeight <= 0 {
		trustWeight = s.registry.TrustWeight(domain, src.SourceType)
	}
	sourceType := src.SourceType
	if sourceType == "" {
		sourceType = models.SourceTypeOther
	}

	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(domain))
	adhoc := models.Source{
		ID:          id,
		Key:         domain,
		Name:        displayName(src, domain),
		Domain:      domain,
		Type:        sourceType,
		TrustWeight: trustWeight,
		Country:     "XX",
		IsActive:    true,
		HomepageURL: "https://" + domain,
		Language:    "en",
	}
	if err := s.store.EnsureSource(ctx, adhoc); err != nil {
		return uuid.Nil, fmt.Errorf("ensure ad-hoc source %s: %w", domain, err)
	}
	return id, nil
}

func displayName(src models.IngestSourceInput, domain string) string {
	if src.SourceName != "" {
		return src.SourceName
	}
	return domain
}

func sourceDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
