// Package registry is DroneWatch's Source Registry: a static, read-only
// catalog of publishers plus an embedded gazetteer of geographic anchors.
// It is populated once at process start and never mutated afterward —
// the only runtime writer is an operator updating the seed data and
// redeploying, per spec.md §4.1.
package registry

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dronewatch/dronewatch/internal/models"
)

// Registry is the read-only, process-wide source catalog.
type Registry struct {
	sources    []models.Source
	byKey      map[string]models.Source
	gazetteer  []models.GazetteerEntry
}

// New builds the Registry from the seed catalog in seed.go. It is cheap and
// deterministic, so callers typically invoke it once at startup and share
// the result.
func New() *Registry {
	r := &Registry{
		byKey: make(map[string]models.Source, len(seedSources)),
	}
	for _, s := range seedSources {
		src := s
		if src.ID == uuid.Nil {
			src.ID = uuid.NewSHA1(namespaceSources, []byte(src.Key))
		}
		r.sources = append(r.sources, src)
		r.byKey[src.Key] = src
	}
	r.gazetteer = append(r.gazetteer, seedGazetteer...)
	// Longest-name-first makes the Geocoder's linear scan naturally prefer
	// the more specific anchor without extra bookkeeping.
	sort.SliceStable(r.gazetteer, func(i, j int) bool {
		return len(r.gazetteer[i].Name) > len(r.gazetteer[j].Name)
	})
	return r
}

// namespaceSources is a fixed UUID namespace so registry source IDs are
// stable across process restarts (deterministic, not random).
var namespaceSources = uuid.MustParse("6f3e9f2a-7a0a-4c39-9c52-6a6e2d9f6d31")

// Sources returns all active sources.
func (r *Registry) Sources() []models.Source {
	out := make([]models.Source, 0, len(r.sources))
	for _, s := range r.sources {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

// Lookup returns a source by its registry key, and whether it was found.
func (r *Registry) Lookup(key string) (models.Source, bool) {
	s, ok := r.byKey[key]
	return s, ok
}

// TrustWeight returns the configured trust weight for (domain, sourceType),
// or the unknown/social default (1.0) when the pair is not registered.
// Used by the Ingest service when attaching a source supplied in the
// ingest request.
func (r *Registry) TrustWeight(domain string, sourceType models.SourceType) float64 {
	domain = strings.ToLower(domain)
	for _, s := range r.sources {
		if strings.ToLower(s.Domain) == domain && s.Type == sourceType {
			return s.TrustWeight
		}
	}
	return models.TrustSocialUnknown
}

// Gazetteer returns the anchors sorted by descending name length, the
// order the Geocoder expects for longest-match-wins scanning.
func (r *Registry) Gazetteer() []models.GazetteerEntry {
	return r.gazetteer
}

// IsKnownDomain reports whether domain is registered for any source type.
// The ingest path does not call it, so reports from unregistered domains
// are not rejected.
func (r *Registry) IsKnownDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, s := range r.sources {
		if strings.ToLower(s.Domain) == domain {
			return true
		}
	}
	return false
}
