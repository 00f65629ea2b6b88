package dedupe

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dronewatch/dronewatch/internal/geo"
	"github.com/dronewatch/dronewatch/internal/models"
)

// RadiusForAsset returns the asset-aware matching radius in meters, per
// spec.md §4.5. Asset types not explicitly listed (bridge) fall back to the
// "other" radius.
func RadiusForAsset(t models.AssetType) float64 {
	switch t {
	case models.AssetAirport, models.AssetMilitary:
		return 3000
	case models.AssetHarbor:
		return 1500
	case models.AssetPowerplant:
		return 1000
	default:
		return 500
	}
}

// MaxTemporalWindow is the ±7 day window within which two reports of the
// same asset type and within radius are considered the same event
// (spec.md §4.5).
const MaxTemporalWindow = 7 * 24 * time.Hour

// Candidate is what NearestIncidentFinder needs to return for each
// spatially/temporally plausible existing incident.
type Candidate struct {
	IncidentID uuid.UUID
	Lon, Lat   float64
	OccurredAt time.Time
}

// NearestIncidentFinder is the read the Deduper needs from the Incident
// Store — narrow so it can be faked in tests without a live Postgres.
type NearestIncidentFinder interface {
	// FindByContentHash returns the incident ID already holding this
	// content hash, if any.
	FindByContentHash(ctx context.Context, contentHash string) (uuid.UUID, bool, error)

	// FindNearby returns candidate incidents of the given asset type
	// whose occurred_at falls within MaxTemporalWindow of occurredAt,
	// for the Deduper to rank by distance. The store implementation
	// narrows only by asset type and time window, with no spatial
	// pre-filter; the Deduper applies the radius/tie-break rule itself so
	// the decision logic is testable independent of the store.
	FindNearby(ctx context.Context, assetType models.AssetType, occurredAt time.Time) ([]Candidate, error)
}

// DecisionKind tags the Deduper's outcome.
type DecisionKind int

const (
	DecisionNew DecisionKind = iota
	DecisionMerge
)

// Decision is the tagged sum "New | MergeInto(existing_id)" called for by
// spec.md §9, replacing exception-as-control-flow duplicate handling.
type Decision struct {
	Kind       DecisionKind
	ExistingID uuid.UUID // valid only when Kind == DecisionMerge
}

// Decide implements spec.md §4.5: (1) content-hash lookup, (2) spatial-
// temporal nearest match within the asset-aware radius and the 7-day
// window, tie-broken by minimum distance then minimum time delta,
// (3) otherwise a new incident.
func Decide(
	ctx context.Context,
	finder NearestIncidentFinder,
	contentHash string,
	lon, lat float64,
	assetType models.AssetType,
	occurredAt time.Time,
) (Decision, error) {
	if id, found, err := finder.FindByContentHash(ctx, contentHash); err != nil {
		return Decision{}, err
	} else if found {
		return Decision{Kind: DecisionMerge, ExistingID: id}, nil
	}

	candidates, err := finder.FindNearby(ctx, assetType, occurredAt)
	if err != nil {
		return Decision{}, err
	}

	radius := RadiusForAsset(assetType)

	var best *Candidate
	var bestDist float64
	var bestDelta time.Duration

	for i := range candidates {
		c := candidates[i]
		delta := occurredAt.Sub(c.OccurredAt)
		if delta < 0 {
			delta = -delta
		}
		if delta > MaxTemporalWindow {
			continue
		}
		dist := geo.HaversineMeters(lon, lat, c.Lon, c.Lat)
		if dist > radius {
			continue
		}
		if best == nil || dist < bestDist || (dist == bestDist && delta < bestDelta) {
			best = &candidates[i]
			bestDist = dist
			bestDelta = delta
		}
	}

	if best != nil {
		return Decision{Kind: DecisionMerge, ExistingID: best.IncidentID}, nil
	}
	return Decision{Kind: DecisionNew}, nil
}
