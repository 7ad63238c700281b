package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

// RequireCapability admits requests whose role resolves to every listed
// capability. It must run after Auth.
func RequireCapability(required ...domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			caps := domain.Resolve(claims.Role)
			for _, want := range required {
				if !caps.Has(want) {
					return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
				}
			}
			return next(c)
		}
	}
}
