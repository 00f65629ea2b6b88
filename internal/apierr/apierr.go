// Package apierr defines the sentinel errors the ingestion pipeline
// returns, so the HTTP layer can map them to status codes with errors.Is
// instead of string matching.
package apierr

import "errors"

var (
	// ErrDuplicate marks a report that matched an existing incident via
	// content hash or spatial-temporal proximity. Handled as a merge, not
	// a failure.
	ErrDuplicate = errors.New("duplicate")

	// ErrValidationFailed marks a rejection by the unified DB trigger
	// (out-of-bounds coordinates, excluded-region keyword, malformed row).
	ErrValidationFailed = errors.New("validation failed")

	// ErrUnauthorized marks a missing or incorrect bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadSourceURL marks a source_url that fails homepage/URL validity
	// rules (empty, non-http(s), placeholder host).
	ErrBadSourceURL = errors.New("bad source url")

	// ErrNotAnIncident marks a Validator rejection at the keyword or LLM
	// classifier layer.
	ErrNotAnIncident = errors.New("not an incident")

	// ErrForeignRegion marks a Validator rejection because the text (or,
	// post-geocode, the coordinates) falls outside the covered region.
	ErrForeignRegion = errors.New("foreign region")

	// ErrAmbiguousLocation marks a Geocoder rejection when multiple
	// gazetteer candidates tie and cannot be resolved.
	ErrAmbiguousLocation = errors.New("ambiguous location")

	// ErrBadCoords marks coordinates outside the European bounding box.
	ErrBadCoords = errors.New("coordinates out of bounds")

	// ErrClassifierUnavailable marks an LLM classifier call that could not
	// complete (timeout, transport error, malformed JSON). The Validator
	// catches this to fall back to degraded-mode acceptance; it is never
	// surfaced to an API caller directly.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrNotFound marks a query for an incident id that does not exist.
	ErrNotFound = errors.New("not found")
)
