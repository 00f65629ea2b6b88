// Package store is the Incident Store: the pgx/pgxpool-backed persistence
// layer for incidents, their attached sources, and the scraper dedup
// cache. Grounded on the teacher's db.Queries-over-pgxpool services
// (cookie-scanner, discovery-service): no sqlc codegen exists anywhere in
// the example pack, so queries are hand-written here rather than invented
// codegen output, but the call shape (pool, context-scoped queries,
// pgtype-free float/string returns) follows the teacher's usage exactly.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dronewatch/dronewatch/internal/apierr"
	"github.com/dronewatch/dronewatch/internal/dedupe"
	"github.com/dronewatch/dronewatch/internal/models"
)

// Store is the full persistence surface the Ingest and Query services need.
// It embeds dedupe.NearestIncidentFinder so any Store also satisfies that
// narrower interface without a wrapper type.
type Store interface {
	dedupe.NearestIncidentFinder

	CreateIncident(ctx context.Context, incident models.Incident) (uuid.UUID, error)
	AttachSource(ctx context.Context, incidentID uuid.UUID, source models.IncidentSource) error
	GetIncident(ctx context.Context, id uuid.UUID) (models.Incident, error)
	ListIncidents(ctx context.Context, filter ListFilter) ([]models.Incident, error)

	ScraperCacheSeen(ctx context.Context, fingerprint string) (bool, error)
	ScraperCacheMark(ctx context.Context, entry models.ScraperCacheEntry) error

	EnsureSource(ctx context.Context, src models.Source) error
}

// ListFilter captures the Query API's filter parameters (spec.md §4.9).
type ListFilter struct {
	Since       *time.Time
	Until       *time.Time
	AssetType   models.AssetType     // empty = no filter
	Country     string               // empty = no filter
	Status      models.IncidentStatus // empty = no filter
	Search      string               // empty = no filter; matches title/narrative case-insensitively
	MinEvidence models.EvidenceScore
	BBoxMinLon  *float64
	BBoxMinLat  *float64
	BBoxMaxLon  *float64
	BBoxMaxLat  *float64
	Limit       int
	Offset      int
}

// pgxStore is the production Store implementation.
type pgxStore struct {
	pool *pgxpool.Pool
}

// New wraps an existing pgxpool.Pool (already configured with
// otelpgx.NewTracer() by the caller, per the teacher's main.go pattern).
func New(pool *pgxpool.Pool) Store {
	return &pgxStore{pool: pool}
}

func (s *pgxStore) EnsureSource(ctx context.Context, src models.Source) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sources (id, key, name, domain, type, trust_weight, country, is_active, homepage_url, feed_url, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			domain = EXCLUDED.domain,
			type = EXCLUDED.type,
			trust_weight = EXCLUDED.trust_weight,
			country = EXCLUDED.country,
			is_active = EXCLUDED.is_active,
			homepage_url = EXCLUDED.homepage_url,
			feed_url = EXCLUDED.feed_url,
			language = EXCLUDED.language
	`, src.ID, src.Key, src.Name, src.Domain, string(src.Type), src.TrustWeight, src.Country, src.IsActive, src.HomepageURL, src.FeedURL, src.Language)
	if err != nil {
		return fmt.Errorf("ensure source %s: %w", src.Key, err)
	}
	return nil
}

func (s *pgxStore) CreateIncident(ctx context.Context, inc models.Incident) (uuid.UUID, error) {
	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO incidents (
			id, title, narrative, occurred_at, first_seen_at, last_seen_at,
			geom, asset_type, status, country, evidence_score,
			normalized_title, location_hash, content_hash
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography, $9, $10, $11, $12,
			$13, $14, $15
		)
		RETURNING id
	`,
		inc.ID, inc.Title, inc.Narrative, inc.OccurredAt, inc.FirstSeenAt, inc.LastSeenAt,
		inc.Lon, inc.Lat, string(inc.AssetType), string(inc.Status), inc.Country, int(inc.EvidenceScore),
		inc.NormalizedTitle, inc.LocationHash, inc.ContentHash,
	)

	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, apierr.ErrDuplicate
		}
		// A RAISE EXCEPTION in a trigger (SQLSTATE P0001) is a validation
		// rejection, not an internal failure.
		var pgErr interface{ SQLState() string }
		if errors.As(err, &pgErr) && pgErr.SQLState() == "P0001" {
			return uuid.Nil, fmt.Errorf("%w: %v", apierr.ErrValidationFailed, err)
		}
		return uuid.Nil, fmt.Errorf("create incident: %w", err)
	}
	return id, nil
}

func (s *pgxStore) AttachSource(ctx context.Context, incidentID uuid.UUID, src models.IncidentSource) error {
	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO incident_sources (id, incident_id, source_id, source_url, source_quote, source_title, published_at, lang, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (incident_id, source_url) DO NOTHING
	`, src.ID, incidentID, src.SourceID, src.SourceURL, src.SourceQuote, src.SourceTitle, src.PublishedAt, src.Lang)
	if err != nil {
		return fmt.Errorf("attach source: %w", err)
	}

	_, err = s.pool.Exec(ctx, `UPDATE incidents SET last_seen_at = GREATEST(last_seen_at, $2) WHERE id = $1`, incidentID, src.PublishedAt)
	if err != nil {
		return fmt.Errorf("update last_seen_at: %w", err)
	}
	return nil
}

func (s *pgxStore) GetIncident(ctx context.Context, id uuid.UUID) (models.Incident, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, narrative, occurred_at, first_seen_at, last_seen_at,
		       ST_X(geom::geometry), ST_Y(geom::geometry), asset_type, status, country,
		       evidence_score, normalized_title, location_hash, content_hash, created_at, updated_at
		FROM incidents WHERE id = $1
	`, id)

	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Incident{}, apierr.ErrNotFound
		}
		return models.Incident{}, fmt.Errorf("get incident: %w", err)
	}

	sources, err := s.sourcesForIncident(ctx, id)
	if err != nil {
		return models.Incident{}, err
	}
	inc.Sources = sources
	return inc, nil
}

func (s *pgxStore) sourcesForIncident(ctx context.Context, incidentID uuid.UUID) ([]models.IncidentSource, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT isrc.id, isrc.incident_id, isrc.source_id, isrc.source_url, isrc.source_quote,
		       isrc.source_title, isrc.published_at, isrc.lang, isrc.fetched_at,
		       s.type, s.name, s.trust_weight
		FROM incident_sources isrc
		JOIN sources s ON s.id = isrc.source_id
		WHERE isrc.incident_id = $1
		ORDER BY isrc.published_at ASC
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list incident sources: %w", err)
	}
	defer rows.Close()

	var out []models.IncidentSource
	for rows.Next() {
		var is models.IncidentSource
		var sourceType string
		if err := rows.Scan(&is.ID, &is.IncidentID, &is.SourceID, &is.SourceURL, &is.SourceQuote,
			&is.SourceTitle, &is.PublishedAt, &is.Lang, &is.FetchedAt,
			&sourceType, &is.SourceName, &is.TrustWeight); err != nil {
			return nil, fmt.Errorf("scan incident source: %w", err)
		}
		is.SourceType = models.SourceType(sourceType)
		out = append(out, is)
	}
	return out, rows.Err()
}

func (s *pgxStore) ListIncidents(ctx context.Context, filter ListFilter) ([]models.Incident, error) {
	query := `
		SELECT id, title, narrative, occurred_at, first_seen_at, last_seen_at,
		       ST_X(geom::geometry), ST_Y(geom::geometry), asset_type, status, country,
		       evidence_score, normalized_title, location_hash, content_hash, created_at, updated_at
		FROM incidents
		WHERE evidence_score >= $1
	`
	args := []any{int(filter.MinEvidence)}
	argN := 2

	addFilter := func(clause string, arg any) {
		query += fmt.Sprintf(" AND %s $%d", clause, argN)
		args = append(args, arg)
		argN++
	}

	if filter.Since != nil {
		addFilter("occurred_at >=", *filter.Since)
	}
	if filter.Until != nil {
		addFilter("occurred_at <=", *filter.Until)
	}
	if filter.AssetType != "" {
		addFilter("asset_type =", string(filter.AssetType))
	}
	if filter.Country != "" {
		addFilter("country =", filter.Country)
	}
	if filter.Status != "" {
		addFilter("status =", string(filter.Status))
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR narrative ILIKE $%d)", argN, argN)
		args = append(args, "%"+filter.Search+"%")
		argN++
	}
	if filter.BBoxMinLon != nil && filter.BBoxMinLat != nil && filter.BBoxMaxLon != nil && filter.BBoxMaxLat != nil {
		query += fmt.Sprintf(" AND ST_Intersects(geom::geometry, ST_MakeEnvelope($%d, $%d, $%d, $%d, 4326))", argN, argN+1, argN+2, argN+3)
		args = append(args, *filter.BBoxMinLon, *filter.BBoxMinLat, *filter.BBoxMaxLon, *filter.BBoxMaxLat)
		argN += 4
	}

	query += " ORDER BY occurred_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var out []models.Incident
	for rows.Next() {
		inc, err := scanIncidentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both pgx.Row (QueryRow) and pgx.Rows (Query).
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (models.Incident, error) {
	return scanIncidentRow(row)
}

func scanIncidentRow(row rowScanner) (models.Incident, error) {
	var inc models.Incident
	var assetType, status string
	err := row.Scan(
		&inc.ID, &inc.Title, &inc.Narrative, &inc.OccurredAt, &inc.FirstSeenAt, &inc.LastSeenAt,
		&inc.Lon, &inc.Lat, &assetType, &status, &inc.Country,
		&inc.EvidenceScore, &inc.NormalizedTitle, &inc.LocationHash, &inc.ContentHash, &inc.CreatedAt, &inc.UpdatedAt,
	)
	if err != nil {
		return models.Incident{}, err
	}
	inc.AssetType = models.AssetType(assetType)
	inc.Status = models.IncidentStatus(status)
	return inc, nil
}

func (s *pgxStore) FindByContentHash(ctx context.Context, contentHash string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT id FROM incidents WHERE content_hash = $1`, contentHash).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("find by content hash: %w", err)
	}
	return id, true, nil
}

func (s *pgxStore) FindNearby(ctx context.Context, assetType models.AssetType, occurredAt time.Time) ([]dedupe.Candidate, error) {
	windowStart := occurredAt.Add(-dedupe.MaxTemporalWindow)
	windowEnd := occurredAt.Add(dedupe.MaxTemporalWindow)

	rows, err := s.pool.Query(ctx, `
		SELECT id, ST_X(geom::geometry), ST_Y(geom::geometry), occurred_at
		FROM incidents
		WHERE asset_type = $1 AND occurred_at BETWEEN $2 AND $3
	`, string(assetType), windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("find nearby: %w", err)
	}
	defer rows.Close()

	var out []dedupe.Candidate
	for rows.Next() {
		var c dedupe.Candidate
		if err := rows.Scan(&c.IncidentID, &c.Lon, &c.Lat, &c.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *pgxStore) ScraperCacheSeen(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM scraper_cache WHERE fingerprint = $1)`, fingerprint).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("scraper cache lookup: %w", err)
	}
	return exists, nil
}

func (s *pgxStore) ScraperCacheMark(ctx context.Context, entry models.ScraperCacheEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scraper_cache (fingerprint, occurred_at, source_name, processed_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (fingerprint) DO NOTHING
	`, entry.Fingerprint, entry.OccurredAt, entry.SourceName)
	if err != nil {
		return fmt.Errorf("mark scraper cache: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
