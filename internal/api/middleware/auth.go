package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/elobenin/rental-portal/internal/core/ports"
)

const (
	claimsKey = "claims"
	tokenKey  = "token"
)

// TokenParser validates a bearer token.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (ports.Claims, error)
}

// Auth validates the bearer token and injects its claims into context.
func Auth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := parser.ParseToken(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(claimsKey, claims)
			c.Set(tokenKey, parts[1])
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims Auth stored on the context.
func ClaimsFrom(c echo.Context) (ports.Claims, bool) {
	claims, ok := c.Get(claimsKey).(ports.Claims)
	return claims, ok
}

// TokenFrom returns the raw bearer token Auth accepted.
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
