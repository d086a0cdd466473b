package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vietour/admin-gateway/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes the booking API's own messages through for login failures.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
//
// Nothing at this layer is fatal: the worst outcome for a caller is "stay on
// the login screen" or a 403.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// The backend rejected the input; relay its message and field errors.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: ve.Message, Fields: ve.Fields}
	}

	// The backend rejected the credentials; relay its message and status.
	var de *domain.DeniedError
	if errors.As(err, &de) {
		return de.Status, errorResponse{Error: de.Message}
	}

	switch {
	case errors.Is(err, domain.ErrNoAccess):
		return http.StatusForbidden, errorResponse{Error: "no access"}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, errorResponse{Error: "unauthenticated"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "forbidden"}
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("path", c.Path()).Msg("booking api unavailable")
		return http.StatusBadGateway, errorResponse{Error: "booking api unavailable"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
