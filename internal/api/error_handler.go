package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// statusMap is checked in order; the first errors.Is match wins. An empty
// message means the error's own text is safe to return.
var statusMap = []struct {
	target error
	code   int
	msg    string
}{
	{domain.ErrValidation, http.StatusBadRequest, ""},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrSessionRejected, http.StatusUnauthorized, "session rejected"},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	{domain.ErrAccountNotFound, http.StatusNotFound, "account not found"},
	{domain.ErrAccountExists, http.StatusConflict, "account already exists"},
}

// NewHTTPErrorHandler renders errors as {"error": "..."}. Domain errors get
// their mapped status; anything else is logged and hidden behind a 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range statusMap {
		if errors.Is(err, m.target) {
			if m.msg == "" {
				return m.code, err.Error()
			}
			return m.code, m.msg
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
	return http.StatusInternalServerError, "internal server error"
}
