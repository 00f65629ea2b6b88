// Package query implements the read path: listing, detail lookup, and the
// embeddable widget projection described in spec.md §4.9. It depends only
// on a narrow Reader view of the Incident Store so it can be tested
// against an in-memory fixture.
package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/dronewatch/dronewatch/internal/apierr"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/store"
)

// Reader is the subset of store.Store the Query service needs.
type Reader interface {
	GetIncident(ctx context.Context, id uuid.UUID) (models.Incident, error)
	ListIncidents(ctx context.Context, filter store.ListFilter) ([]models.Incident, error)
}

// Service serves read-only incident views.
type Service struct {
	reader Reader
}

func New(reader Reader) *Service {
	return &Service{reader: reader}
}

// List returns incidents matching filter, most recent first.
func (s *Service) List(ctx context.Context, filter store.ListFilter) ([]models.Incident, error) {
	return s.reader.ListIncidents(ctx, filter)
}

// Detail returns one incident with its full source list.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (models.Incident, error) {
	inc, err := s.reader.GetIncident(ctx, id)
	if err != nil {
		return models.Incident{}, err
	}
	if inc.ID == uuid.Nil {
		return models.Incident{}, apierr.ErrNotFound
	}
	return inc, nil
}

// EmbedSnippet is the compact projection returned to embedded widgets
// (spec.md §4.9's "embed" endpoint) — only what's needed to render a map
// pin and a one-line summary, never the full narrative or source list.
type EmbedSnippet struct {
	IncidentID    uuid.UUID
	Title         string
	Lon, Lat      float64
	AssetType     models.AssetType
	EvidenceScore models.EvidenceScore
	OccurredAt    string
}

// Embed returns the widget-safe projection for incidents matching filter.
func (s *Service) Embed(ctx context.Context, filter store.ListFilter) ([]EmbedSnippet, error) {
	incidents, err := s.reader.ListIncidents(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]EmbedSnippet, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, EmbedSnippet{
			IncidentID:    inc.ID,
			Title:         inc.Title,
			Lon:           inc.Lon,
			Lat:           inc.Lat,
			AssetType:     inc.AssetType,
			EvidenceScore: inc.EvidenceScore,
			OccurredAt:    inc.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}
