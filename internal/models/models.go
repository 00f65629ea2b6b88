// Package models holds the domain types shared across the ingestion
// pipeline and the query API. These are plain Go structs — the
// Postgres-specific (pgtype) representations live only at the
// internal/store boundary.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceType classifies a publisher by how much its reports should be
// trusted before corroboration.
type SourceType string

const (
	SourceTypePolice            SourceType = "police"
	SourceTypeNOTAM             SourceType = "notam"
	SourceTypeMedia             SourceType = "media"
	SourceTypeSocial            SourceType = "social"
	SourceTypeOSINT             SourceType = "osint"
	SourceTypeAviationAuthority SourceType = "aviation_authority"
	SourceTypeOther             SourceType = "other"
)

// AssetType is the category of protected infrastructure an incident concerns.
type AssetType string

const (
	AssetAirport    AssetType = "airport"
	AssetHarbor     AssetType = "harbor"
	AssetMilitary   AssetType = "military"
	AssetPowerplant AssetType = "powerplant"
	AssetBridge     AssetType = "bridge"
	AssetOther      AssetType = "other"
)

// IncidentStatus is the lifecycle state of an Incident.
type IncidentStatus string

const (
	StatusActive        IncidentStatus = "active"
	StatusResolved       IncidentStatus = "resolved"
	StatusUnconfirmed    IncidentStatus = "unconfirmed"
	StatusFalsePositive  IncidentStatus = "false_positive"
)

// Trust weight tiers. Semantic values per spec.md §3.
const (
	TrustOfficial       = 4.0
	TrustVerifiedMedia  = 3.0
	TrustMedia          = 2.0
	TrustSocialUnknown  = 1.0
)

// EvidenceScore is the 1..4 derived tier described in spec.md §3.
type EvidenceScore int

const (
	EvidenceUnconfirmed EvidenceScore = 1
	EvidenceReported    EvidenceScore = 2
	EvidenceVerified    EvidenceScore = 3
	EvidenceOfficial    EvidenceScore = 4
)

// Label returns the human-readable tier name.
func (s EvidenceScore) Label() string {
	switch s {
	case EvidenceOfficial:
		return "OFFICIAL"
	case EvidenceVerified:
		return "VERIFIED"
	case EvidenceReported:
		return "REPORTED"
	default:
		return "UNCONFIRMED"
	}
}

// Source is a publisher in the Source Registry.
type Source struct {
	ID          uuid.UUID
	Key         string // stable registry key, e.g. "dk-politi-nordjylland"
	Name        string
	Domain      string
	Type        SourceType
	TrustWeight float64
	Country     string // ISO-3166-1 alpha-2
	IsActive    bool
	HomepageURL string
	FeedURL     string
	Language    string
	KeywordHints []string
}

// GazetteerEntry is a named geographic anchor used by the Geocoder.
type GazetteerEntry struct {
	Name        string
	Aliases     []string
	Lat, Lon    float64
	AssetType   AssetType
	Country     string
	Specificity int // higher wins ties: airport(3) > city(2) > region(1)
}

// RawReport is the uniform output contract every Collector must produce.
type RawReport struct {
	SourceKey       string
	SourceURL       string
	PublishedAt     time.Time
	RawTitle        string
	RawBody         string
	Language        string
	LocationHint    string
	SourceQuote     string
	SourceTitle     string
}

// IncidentSource is the join row between an Incident and a Source.
type IncidentSource struct {
	ID          uuid.UUID
	IncidentID  uuid.UUID
	SourceID    uuid.UUID
	SourceURL   string
	SourceQuote string
	SourceTitle string
	PublishedAt time.Time
	Lang        string
	FetchedAt   time.Time

	// Denormalized fields populated by GetIncident's join with sources.
	SourceType  SourceType
	SourceName  string
	TrustWeight float64
}

// Incident is one real-world event.
type Incident struct {
	ID             uuid.UUID
	Title          string
	Narrative      string
	OccurredAt     time.Time
	FirstSeenAt    time.Time
	LastSeenAt     time.Time
	Lon, Lat       float64
	AssetType      AssetType
	Status         IncidentStatus
	Country        string
	EvidenceScore  EvidenceScore
	NormalizedTitle string
	LocationHash    string
	ContentHash     string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Sources []IncidentSource
}

// ScraperCacheEntry short-circuits re-processing of an already-seen raw
// report. Keyed by an MD5 fingerprint of the report. Entries are never
// aged out: a fingerprint already in the cache is skipped however old it is.
type ScraperCacheEntry struct {
	Fingerprint string
	OccurredAt  time.Time
	SourceName  string
	ProcessedAt time.Time
}

// IngestSourceInput is the per-source descriptor carried in an ingest
// request body (spec.md §4.8).
type IngestSourceInput struct {
	SourceURL   string
	SourceType  SourceType
	SourceQuote string
	SourceName  string
	TrustWeight float64
}

// IngestInput mirrors the fields of an ingest request. The POST /api/ingest
// handler decodes its body into httpapi's own ingestRequest type instead;
// nothing constructs an IngestInput.
type IngestInput struct {
	Title      string
	Narrative  string
	OccurredAt time.Time
	Lat, Lon   *float64 // absent ⇒ Geocoder resolves from LocationHint
	LocationHint string
	AssetType  AssetType
	Status     IncidentStatus
	Country    string
	Sources    []IngestSourceInput
}

// IngestAction is the outcome of an ingest: a brand-new incident, or an
// attach onto an existing one.
type IngestAction string

const (
	ActionCreated IngestAction = "created"
	ActionMerged  IngestAction = "merged"
)

// IngestResult is returned by a successful ingest call.
type IngestResult struct {
	IncidentID uuid.UUID
	Action     IngestAction
}
