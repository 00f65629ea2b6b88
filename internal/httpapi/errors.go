package httpapi

import (
	"errors"
	"net/http"

	"github.com/dronewatch/dronewatch/internal/apierr"
)

// statusFor maps the ingest/query sentinel errors to HTTP status codes.
// Per spec.md §9's resolved Open Question, a successful merge is never an
// error at this layer — only genuine rejections reach statusFor.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apierr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apierr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apierr.ErrBadSourceURL):
		return http.StatusBadRequest
	case errors.Is(err, apierr.ErrNotAnIncident),
		errors.Is(err, apierr.ErrForeignRegion),
		errors.Is(err, apierr.ErrAmbiguousLocation),
		errors.Is(err, apierr.ErrBadCoords),
		errors.Is(err, apierr.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
