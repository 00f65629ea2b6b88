package dedupe_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronewatch/dronewatch/internal/dedupe"
	"github.com/dronewatch/dronewatch/internal/models"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "drone spotted near aalborg airport",
		dedupe.NormalizeTitle("Drone spotted near Aalborg Airport!!"))
}

func TestLocationHash_Stable(t *testing.T) {
	a := dedupe.LocationHash(9.8492, 57.0928, models.AssetAirport)
	b := dedupe.LocationHash(9.8492, 57.0928, models.AssetAirport)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestContentHash_DiffersOnTitle(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := dedupe.ContentHash(now, 9.8492, 57.0928, "drone spotted", models.AssetAirport)
	b := dedupe.ContentHash(now, 9.8492, 57.0928, "drone seen elsewhere", models.AssetAirport)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
}

type fakeFinder struct {
	byContentHash map[string]uuid.UUID
	nearby        []dedupe.Candidate
}

func (f fakeFinder) FindByContentHash(_ context.Context, contentHash string) (uuid.UUID, bool, error) {
	id, ok := f.byContentHash[contentHash]
	return id, ok, nil
}

func (f fakeFinder) FindNearby(_ context.Context, _ models.AssetType, _ time.Time) ([]dedupe.Candidate, error) {
	return f.nearby, nil
}

func TestDecide_ContentHashMatchMerges(t *testing.T) {
	existing := uuid.New()
	finder := fakeFinder{byContentHash: map[string]uuid.UUID{"abc": existing}}

	decision, err := dedupe.Decide(context.Background(), finder, "abc", 9.8, 57.1, models.AssetAirport, time.Now())

	require.NoError(t, err)
	assert.Equal(t, dedupe.DecisionMerge, decision.Kind)
	assert.Equal(t, existing, decision.ExistingID)
}

func TestDecide_NearbyWithinRadiusMerges(t *testing.T) {
	existing := uuid.New()
	now := time.Now()
	finder := fakeFinder{
		byContentHash: map[string]uuid.UUID{},
		nearby: []dedupe.Candidate{
			{IncidentID: existing, Lon: 9.8492, Lat: 57.0928, OccurredAt: now},
		},
	}

	decision, err := dedupe.Decide(context.Background(), finder, "xyz", 9.8493, 57.0929, models.AssetAirport, now)

	require.NoError(t, err)
	assert.Equal(t, dedupe.DecisionMerge, decision.Kind)
	assert.Equal(t, existing, decision.ExistingID)
}

func TestDecide_OutsideRadiusIsNew(t *testing.T) {
	now := time.Now()
	finder := fakeFinder{
		nearby: []dedupe.Candidate{
			{IncidentID: uuid.New(), Lon: 10.5, Lat: 58.0, OccurredAt: now},
		},
	}

	decision, err := dedupe.Decide(context.Background(), finder, "xyz", 9.8493, 57.0929, models.AssetAirport, now)

	require.NoError(t, err)
	assert.Equal(t, dedupe.DecisionNew, decision.Kind)
}

func TestDecide_OutsideTemporalWindowIsNew(t *testing.T) {
	now := time.Now()
	old := now.Add(-10 * 24 * time.Hour)
	finder := fakeFinder{
		nearby: []dedupe.Candidate{
			{IncidentID: uuid.New(), Lon: 9.8492, Lat: 57.0928, OccurredAt: old},
		},
	}

	decision, err := dedupe.Decide(context.Background(), finder, "xyz", 9.8492, 57.0928, models.AssetAirport, now)

	require.NoError(t, err)
	assert.Equal(t, dedupe.DecisionNew, decision.Kind)
}

func TestDecide_NearestCandidateWinsAmongMultiple(t *testing.T) {
	closer := uuid.New()
	farther := uuid.New()
	now := time.Now()
	finder := fakeFinder{
		nearby: []dedupe.Candidate{
			{IncidentID: farther, Lon: 9.86, Lat: 57.10, OccurredAt: now},
			{IncidentID: closer, Lon: 9.8493, Lat: 57.0929, OccurredAt: now},
		},
	}

	decision, err := dedupe.Decide(context.Background(), finder, "xyz", 9.8492, 57.0928, models.AssetAirport, now)

	require.NoError(t, err)
	assert.Equal(t, dedupe.DecisionMerge, decision.Kind)
	assert.Equal(t, closer, decision.ExistingID)
}

func TestRadiusForAsset(t *testing.T) {
	assert.Equal(t, 3000.0, dedupe.RadiusForAsset(models.AssetAirport))
	assert.Equal(t, 3000.0, dedupe.RadiusForAsset(models.AssetMilitary))
	assert.Equal(t, 1500.0, dedupe.RadiusForAsset(models.AssetHarbor))
	assert.Equal(t, 1000.0, dedupe.RadiusForAsset(models.AssetPowerplant))
	assert.Equal(t, 500.0, dedupe.RadiusForAsset(models.AssetBridge))
	assert.Equal(t, 500.0, dedupe.RadiusForAsset(models.AssetOther))
}
