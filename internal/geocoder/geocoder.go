// Package geocoder resolves textual location hints to coordinates using
// the Source Registry's gazetteer, per spec.md §4.4.
package geocoder

import (
	"strings"

	"github.com/dronewatch/dronewatch/internal/apierr"
	"github.com/dronewatch/dronewatch/internal/models"
)

// Anchors is the read-only interface the Geocoder needs from the Source
// Registry — narrow on purpose so tests can supply a fixed fixture instead
// of the full registry.
type Anchors interface {
	Gazetteer() []models.GazetteerEntry
}

// Geocoder resolves location hints to (lat, lon, asset_type, country).
type Geocoder struct {
	anchors Anchors
}

// New builds a Geocoder over the given anchor source (typically
// *registry.Registry).
func New(anchors Anchors) *Geocoder {
	return &Geocoder{anchors: anchors}
}

// Result is the resolved geography for a report.
type Result struct {
	Lat, Lon  float64
	AssetType models.AssetType
	Country   string
}

// Resolve implements spec.md §4.4's algorithm: (a) gazetteer lookup,
// longest-match/highest-specificity wins; (b) tie-break by source country;
// (c) otherwise ErrAmbiguousLocation.
func (g *Geocoder) Resolve(locationHint, sourceCountry string) (Result, error) {
	hint := strings.ToLower(strings.TrimSpace(locationHint))
	if hint == "" {
		return Result{}, apierr.ErrAmbiguousLocation
	}

	var candidates []models.GazetteerEntry
	bestSpecificity := -1
	bestNameLen := -1

	// The registry's Gazetteer() is pre-sorted longest-name-first, so the
	// first match encountered at a given specificity is already the most
	// specific textual match; we still track explicitly for clarity and to
	// tolerate an unsorted Anchors implementation in tests.
	for _, entry := range g.anchors.Gazetteer() {
		if !matchesHint(hint, entry) {
			continue
		}
		switch {
		case entry.Specificity > bestSpecificity:
			bestSpecificity = entry.Specificity
			bestNameLen = len(entry.Name)
			candidates = []models.GazetteerEntry{entry}
		case entry.Specificity == bestSpecificity:
			if len(entry.Name) > bestNameLen {
				bestNameLen = len(entry.Name)
				candidates = []models.GazetteerEntry{entry}
			} else if len(entry.Name) == bestNameLen {
				candidates = append(candidates, entry)
			}
		}
	}

	switch len(candidates) {
	case 0:
		return Result{}, apierr.ErrAmbiguousLocation
	case 1:
		return fromEntry(candidates[0]), nil
	}

	// Tie-break by source country.
	if sourceCountry != "" {
		var byCountry []models.GazetteerEntry
		for _, c := range candidates {
			if strings.EqualFold(c.Country, sourceCountry) {
				byCountry = append(byCountry, c)
			}
		}
		if len(byCountry) == 1 {
			return fromEntry(byCountry[0]), nil
		}
	}

	return Result{}, apierr.ErrAmbiguousLocation
}

func matchesHint(hint string, entry models.GazetteerEntry) bool {
	if strings.Contains(hint, strings.ToLower(entry.Name)) {
		return true
	}
	for _, alias := range entry.Aliases {
		if strings.Contains(hint, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

func fromEntry(e models.GazetteerEntry) Result {
	return Result{Lat: e.Lat, Lon: e.Lon, AssetType: e.AssetType, Country: e.Country}
}
