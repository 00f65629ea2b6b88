// Package dedupe computes the fingerprints defined in spec.md §3 and
// decides, for a validated+geocoded report, whether it describes a new
// incident or should be merged into an existing one (spec.md §4.5). The
// outcome is a tagged sum (New | MergeInto) rather than an exception, per
// spec.md §9's "exception-as-control-flow" redesign note.
package dedupe

import (
	"crypto/md5" //nolint:gosec // content-addressing, not a security boundary
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dronewatch/dronewatch/internal/models"
)

var nonAlphanumericSpace = regexp.MustCompile(`[^a-z0-9 ]+`)

// NormalizeTitle lowercases and strips everything but alphanumerics and
// spaces, per spec.md §3's normalized_title definition.
func NormalizeTitle(title string) string {
	lower := strings.ToLower(title)
	stripped := nonAlphanumericSpace.ReplaceAllString(lower, "")
	return strings.Join(strings.Fields(stripped), " ")
}

// roundedCoord rounds to 3 decimal places (~110m), the precision both
// location_hash and content_hash key on.
func roundedCoord(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// LocationHash is the MD5 of rounded(lon)+rounded(lat)+asset_type,
// truncated to 16 hex characters — a fast spatial-equivalence key.
func LocationHash(lon, lat float64, assetType models.AssetType) string {
	raw := roundedCoord(lon) + roundedCoord(lat) + string(assetType)
	sum := md5.Sum([]byte(raw)) //nolint:gosec
	return fmt.Sprintf("%x", sum)[:16]
}

// ContentHash is the MD5 of date(occurred_at)+rounded(lon)+rounded(lat)+
// normalized_title+asset_type — the primary duplicate barrier.
func ContentHash(occurredAt time.Time, lon, lat float64, normalizedTitle string, assetType models.AssetType) string {
	raw := occurredAt.UTC().Format("2006-01-02") + roundedCoord(lon) + roundedCoord(lat) + normalizedTitle + string(assetType)
	sum := md5.Sum([]byte(raw)) //nolint:gosec
	return fmt.Sprintf("%x", sum)
}
