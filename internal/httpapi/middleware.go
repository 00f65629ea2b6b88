// Package httpapi wires the Ingest and Query services onto Echo routes,
// grounded on the teacher's handler.RegisterRoutes pattern (discovery-
// service, public-api-service): middleware stack first, route groups
// second, each handler a small closure over its service.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// BearerAuth rejects requests whose Authorization header doesn't carry
// the configured token — the Ingest API's only access control (spec.md
// §4.8: "operator-only token"). The Query API is left open to this
// middleware; callers only mount it on the ingest route group.
func BearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			if strings.TrimPrefix(authHeader, "Bearer ") != token {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			return next(c)
		}
	}
}
