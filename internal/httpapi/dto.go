package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/dronewatch/dronewatch/internal/ingest"
	"github.com/dronewatch/dronewatch/internal/models"
)

// ingestRequest is the JSON body accepted by POST /api/ingest (spec.md
// §4.8): title, narrative, occurred_at, lat/lon (optional — geocoded from
// location_hint when absent), asset_type (required when lat/lon are
// given), status (default active), country (optional, derived if absent),
// and a list of source descriptors. The legacy single-source fields
// (source_url/source_type/...) stay supported for a caller that only ever
// has one source; sources, when present, takes precedence.
type ingestRequest struct {
	Title        string             `json:"title"`
	Narrative    string             `json:"narrative"`
	OccurredAt   time.Time          `json:"occurred_at"`
	Lat          *float64           `json:"lat"`
	Lon          *float64           `json:"lon"`
	AssetType    string             `json:"asset_type"`
	Status       string             `json:"status"`
	Country      string             `json:"country"`
	LocationHint string             `json:"location_hint"`
	SourceDomain string             `json:"source_domain"`
	SourceType   string             `json:"source_type"`
	SourceURL    string             `json:"source_url"`
	SourceQuote  string             `json:"source_quote"`
	SourceTitle  string             `json:"source_title"`
	Language     string             `json:"language"`
	Sources      []sourceDescriptor `json:"sources"`
}

// sourceDescriptor is one entry in ingestRequest.Sources (spec.md §4.8):
// source_url, source_type, optional source_quote, optional source_name,
// and a trust_weight hint used only when the source isn't already
// registered.
type sourceDescriptor struct {
	SourceURL   string  `json:"source_url"`
	SourceType  string  `json:"source_type"`
	SourceQuote string  `json:"source_quote"`
	SourceName  string  `json:"source_name"`
	TrustWeight float64 `json:"trust_weight"`
}

type ingestResponse struct {
	IncidentID string `json:"incident_id"`
	Action     string `json:"action"`
}

// toIngestReport builds the ingest.Report the Ingest service expects from
// the wire request. A non-empty Sources list takes precedence over the
// legacy single-source fields.
func toIngestReport(req ingestRequest) ingest.Report {
	report := ingest.Report{
		Raw: models.RawReport{
			SourceURL:    req.SourceURL,
			PublishedAt:  req.OccurredAt,
			RawTitle:     req.Title,
			RawBody:      req.Narrative,
			Language:     req.Language,
			LocationHint: req.LocationHint,
			SourceQuote:  req.SourceQuote,
			SourceTitle:  req.SourceTitle,
		},
		Lat:          req.Lat,
		Lon:          req.Lon,
		AssetType:    models.AssetType(req.AssetType),
		Status:       models.IncidentStatus(req.Status),
		Country:      req.Country,
		SourceDomain: req.SourceDomain,
		SourceType:   models.SourceType(req.SourceType),
	}
	for _, src := range req.Sources {
		report.Sources = append(report.Sources, models.IngestSourceInput{
			SourceURL:   src.SourceURL,
			SourceType:  models.SourceType(src.SourceType),
			SourceQuote: src.SourceQuote,
			SourceName:  src.SourceName,
			TrustWeight: src.TrustWeight,
		})
	}
	return report
}

func toIngestResponse(r models.IngestResult) ingestResponse {
	return ingestResponse{IncidentID: r.IncidentID.String(), Action: string(r.Action)}
}

// incidentSourceResponse is the per-source projection nested in
// incidentResponse — the public shape of models.IncidentSource.
type incidentSourceResponse struct {
	SourceURL   string    `json:"source_url"`
	SourceName  string    `json:"source_name"`
	SourceType  string    `json:"source_type"`
	SourceQuote string    `json:"source_quote,omitempty"`
	TrustWeight float64   `json:"trust_weight"`
	PublishedAt time.Time `json:"published_at"`
}

type incidentResponse struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Narrative       string                   `json:"narrative,omitempty"`
	OccurredAt      time.Time                `json:"occurred_at"`
	FirstSeenAt     time.Time                `json:"first_seen_at"`
	LastSeenAt      time.Time                `json:"last_seen_at"`
	Lon             float64                  `json:"lon"`
	Lat             float64                  `json:"lat"`
	AssetType       string                   `json:"asset_type"`
	Status          string                   `json:"status"`
	Country         string                   `json:"country"`
	EvidenceScore   int                      `json:"evidence_score"`
	EvidenceLabel   string                   `json:"evidence_label"`
	Sources         []incidentSourceResponse `json:"sources,omitempty"`
}

func toIncidentResponse(inc models.Incident) incidentResponse {
	resp := incidentResponse{
		ID:            inc.ID.String(),
		Title:         inc.Title,
		Narrative:     inc.Narrative,
		OccurredAt:    inc.OccurredAt,
		FirstSeenAt:   inc.FirstSeenAt,
		LastSeenAt:    inc.LastSeenAt,
		Lon:           inc.Lon,
		Lat:           inc.Lat,
		AssetType:     string(inc.AssetType),
		Status:        string(inc.Status),
		Country:       inc.Country,
		EvidenceScore: int(inc.EvidenceScore),
		EvidenceLabel: inc.EvidenceScore.Label(),
	}
	for _, src := range inc.Sources {
		resp.Sources = append(resp.Sources, incidentSourceResponse{
			SourceURL:   src.SourceURL,
			SourceName:  sourceDisplayName(src),
			SourceType:  string(src.SourceType),
			SourceQuote: src.SourceQuote,
			TrustWeight: src.TrustWeight,
			PublishedAt: src.PublishedAt,
		})
	}
	return resp
}

// sourceDisplayName falls back from the denormalized registry name to the
// raw source title when a report came from an unregistered domain
// (spec.md §4.9's "source-name fallback chain"). The chain stops there:
// there is no domain-based name lookup and no placeholder, so a source with
// neither field set yields an empty string.
func sourceDisplayName(src models.IncidentSource) string {
	if src.SourceName != "" {
		return src.SourceName
	}
	return src.SourceTitle
}

func parseUUIDParam(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}
