package ingest

import (
	"net/url"
	"strings"

	"github.com/dronewatch/dronewatch/internal/apierr"
)

// placeholderHosts are hostnames that satisfy "looks like a URL" but never
// identify a real publisher (spec.md §3's "not a placeholder" rule for
// both source_url and homepage_url).
var placeholderHosts = map[string]bool{
	"example.com": true,
	"example.org": true,
	"example.net": true,
	"test.com":    true,
	"localhost":   true,
	"127.0.0.1":   true,
}

// ValidateSourceURL enforces spec.md §3's source_url/homepage_url rule: the
// URL must be non-empty, parse cleanly, use http or https, carry a host,
// and not point at a known placeholder domain. It is exported so the
// Source Registry's seed-data tests can hold homepage_url to the same bar.
func ValidateSourceURL(raw string) error {
	if raw == "" {
		return apierr.ErrBadSourceURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return apierr.ErrBadSourceURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apierr.ErrBadSourceURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return apierr.ErrBadSourceURL
	}
	if placeholderHosts[host] {
		return apierr.ErrBadSourceURL
	}
	return nil
}
