package httpapi

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dronewatch/dronewatch/internal/ingest"
	"github.com/dronewatch/dronewatch/internal/models"
	"github.com/dronewatch/dronewatch/internal/query"
	"github.com/dronewatch/dronewatch/internal/store"
)

// Config is the subset of internal/config.Config the router needs, kept
// narrow so this package doesn't import the config package directly.
type Config struct {
	IngestBearerToken string
	CORSOrigin        string
}

// RegisterRoutes mounts every DroneWatch HTTP endpoint onto the Echo
// instance. Kept separate from main.go, following the teacher's
// discovery-service/internal/handler.RegisterRoutes convention.
func RegisterRoutes(e *echo.Echo, ingestSvc *ingest.Service, querySvc *query.Service, cfg Config, logger *zap.Logger) {
	e.GET("/api/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// ── Ingest API — operator/collector-only, bearer-protected ───────────
	ig := e.Group("/api/ingest")
	ig.Use(BearerAuth(cfg.IngestBearerToken))
	ig.POST("", ingestHandler(ingestSvc, logger))

	// ── Query API — public read surface ──────────────────────────────────
	qg := e.Group("/api")
	qg.Use(cacheControl)
	// The dashboard's own origin gets exact-match CORS on the read API,
	// distinct from the embed widget's wildcard. Middleware is attached
	// before the routes so Echo applies it to them.
	if cfg.CORSOrigin != "" {
		qg.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.CORSOrigin},
			AllowMethods: []string{http.MethodGet},
		}))
	}
	qg.GET("/incidents", listIncidentsHandler(querySvc, logger))
	qg.GET("/incidents/:id", getIncidentHandler(querySvc, logger))

	// ── Embed widget — deliberately permissive CORS (spec.md §4.9: third
	// party sites embed the widget cross-origin), mirroring public-api-
	// service's wide-open SDK CORS posture rather than dashboard-only.
	eg := e.Group("/api/embed")
	eg.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}))
	eg.Use(cacheControl)
	eg.GET("/snippet", embedSnippetHandler(querySvc, logger))
}

// cacheControl stamps the short public cache header on read responses.
func cacheControl(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "public, max-age=15")
		return next(c)
	}
}

func ingestHandler(svc *ingest.Service, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req ingestRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		if req.Title == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
		}
		if req.OccurredAt.IsZero() {
			req.OccurredAt = time.Now().UTC()
		}

		result, err := svc.Ingest(c.Request().Context(), toIngestReport(req))
		if err != nil {
			logger.Warn("ingest rejected", zap.Error(err), zap.String("source_url", req.SourceURL))
			return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, toIngestResponse(result))
	}
}

func listIncidentsHandler(svc *query.Service, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, err := parseListFilter(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		incidents, err := svc.List(c.Request().Context(), filter)
		if err != nil {
			logger.Error("ListIncidents failed", zap.Error(err))
			return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
		}

		resp := make([]incidentResponse, 0, len(incidents))
		for _, inc := range incidents {
			resp = append(resp, toIncidentResponse(inc))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func getIncidentHandler(svc *query.Service, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseUUIDParam(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid incident id"})
		}

		inc, err := svc.Detail(c.Request().Context(), id)
		if err != nil {
			return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, toIncidentResponse(inc))
	}
}

// embedTemplate renders the widget stub spec.md §4.9 calls "a small HTML
// stub": a scrollable list of incident pins sized by the caller's height
// param. html/template escapes every field, so an incident title scraped
// from an untrusted source can never inject markup into the embedding page.
var embedTemplate = template.Must(template.New("embed").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body{margin:0;font:13px/1.4 sans-serif;color:#222}
ul{list-style:none;margin:0;padding:0;overflow-y:auto;height:{{.Height}}}
li{padding:6px 10px;border-bottom:1px solid #eee}
.meta{color:#777;font-size:11px}
</style></head>
<body><ul>
{{range .Snippets}}<li><strong>{{.Title}}</strong><div class="meta">{{.AssetType}} &middot; {{.OccurredAt}} &middot; evidence {{.EvidenceScore}}</div></li>{{else}}<li>No incidents.</li>{{end}}
</ul></body></html>`))

// embedSnippetHandler serves GET /api/embed/snippet?min_evidence=&country=&height=
// (spec.md §4.9/§6): the same list filters as /api/incidents, rendered as
// an embeddable HTML fragment rather than JSON.
func embedSnippetHandler(svc *query.Service, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, err := parseListFilter(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		snippets, err := svc.Embed(c.Request().Context(), filter)
		if err != nil {
			logger.Error("Embed failed", zap.Error(err))
			return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/html; charset=utf-8")
		c.Response().WriteHeader(http.StatusOK)
		return embedTemplate.Execute(c.Response(), embedSnippetPage{
			Height:   parseEmbedHeight(c.QueryParam("height")),
			Snippets: snippets,
		})
	}
}

// embedSnippetPage is the template data for embedTemplate.
type embedSnippetPage struct {
	Height   string
	Snippets []query.EmbedSnippet
}

// parseEmbedHeight normalizes the height query param into a CSS length: a
// bare number is treated as pixels, anything already carrying a CSS unit
// (px, %, vh, ...) passes through unchanged, and an empty or invalid value
// falls back to a sane default so the widget never renders collapsed.
func parseEmbedHeight(raw string) string {
	const fallback = "300px"
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return fallback
		}
		return fmt.Sprintf("%dpx", n)
	}
	if strings.ContainsAny(raw, ";<>\"'") {
		return fallback
	}
	return raw
}

// parseListFilter builds a store.ListFilter from query parameters shared by
// /api/incidents and /api/embed/snippet (spec.md §4.9): min_evidence,
// country, status, bbox (minLon,minLat,maxLon,maxLat), asset_type,
// since/until (RFC 3339 timestamps; no date_range keyword such as day or
// week is accepted), search (free-text, case-insensitive over
// title/narrative), limit, offset.
func parseListFilter(c echo.Context) (store.ListFilter, error) {
	var filter store.ListFilter

	if v := c.QueryParam("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.Since = &t
	}
	if v := c.QueryParam("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.Until = &t
	}
	if v := c.QueryParam("asset_type"); v != "" {
		filter.AssetType = models.AssetType(v)
	}
	if v := c.QueryParam("country"); v != "" {
		filter.Country = v
	}
	if v := c.QueryParam("status"); v != "" {
		filter.Status = models.IncidentStatus(v)
	}
	if v := c.QueryParam("search"); v != "" {
		filter.Search = v
	}
	if v := c.QueryParam("min_evidence"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.MinEvidence = models.EvidenceScore(n)
	}
	if err := parseBBox(c, &filter); err != nil {
		return filter, err
	}

	filter.Limit = 100
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Offset = n
	}

	return filter, nil
}

// parseBBox parses the single bbox=minLon,minLat,maxLon,maxLat query
// param (spec.md §4.9). Anything other than exactly four valid floats is a
// malformed bbox and returns an error, which parseListFilter's callers turn
// into a 400 — a partial bbox is rejected, never silently ignored.
func parseBBox(c echo.Context, filter *store.ListFilter) error {
	raw := c.QueryParam("bbox")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return fmt.Errorf("bbox must have exactly 4 comma-separated values, got %d", len(parts))
	}

	coords := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("bbox value %q is not a valid number: %w", p, err)
		}
		coords[i] = f
	}

	filter.BBoxMinLon = &coords[0]
	filter.BBoxMinLat = &coords[1]
	filter.BBoxMaxLon = &coords[2]
	filter.BBoxMaxLat = &coords[3]
	return nil
}
