// Package evidence provides a pure-Go mirror of the
// recompute_evidence_score() Postgres trigger function defined in
// internal/store/migrations/0002_evidence_trigger.sql. The trigger is
// authoritative at runtime (spec.md §4.7: "the only place that mutates
// evidence_score"); this mirror exists solely so unit tests can assert the
// scoring rule without a live Postgres instance, per spec.md §9's explicit
// design note.
package evidence

import "github.com/dronewatch/dronewatch/internal/models"

// SourceRef is the minimal per-source shape the scoring rule needs.
type SourceRef struct {
	TrustWeight float64
	HasOfficialQuote bool
}

// Recompute implements the table in spec.md §3, evaluated top-down:
//
//	4 OFFICIAL   — ≥1 source with trust_weight ≥ 4
//	3 VERIFIED   — ≥2 sources with max trust_weight ≥ 3, OR a single
//	               trust≥3 source with an official quote present
//	2 REPORTED   — max trust_weight ≥ 2
//	1 UNCONFIRMED — otherwise
func Recompute(sources []SourceRef) models.EvidenceScore {
	if len(sources) == 0 {
		return models.EvidenceUnconfirmed
	}

	maxTrust := 0.0
	countAtLeast3 := 0
	anyTrust3WithQuote := false

	for _, s := range sources {
		if s.TrustWeight > maxTrust {
			maxTrust = s.TrustWeight
		}
		if s.TrustWeight >= 3 {
			countAtLeast3++
			if s.HasOfficialQuote {
				anyTrust3WithQuote = true
			}
		}
	}

	switch {
	case maxTrust >= 4:
		return models.EvidenceOfficial
	case countAtLeast3 >= 2 || anyTrust3WithQuote:
		return models.EvidenceVerified
	case maxTrust >= 2:
		return models.EvidenceReported
	default:
		return models.EvidenceUnconfirmed
	}
}
