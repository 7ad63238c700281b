package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elobenin/rental-portal/internal/api/middleware"
	"github.com/elobenin/rental-portal/internal/core/ports"
)

// ctxClaims extracts the claims injected by the Auth middleware. Missing
// claims mean the route was wired without it.
func ctxClaims(c echo.Context) (ports.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.AccountID == "" {
		return ports.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// bearer returns the raw token the request was authenticated with.
func bearer(c echo.Context) string {
	return middleware.TokenFrom(c)
}
