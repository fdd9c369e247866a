package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/api/handler"
	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps Gin API error kinds and domain errors to HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error", "kind", "detail"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{
			Error: fmt.Sprintf("%v", he.Message),
			Kind:  string(domain.ClassifyStatus(he.Code)),
		}
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		code := statusForAPIError(apiErr)
		if code >= http.StatusInternalServerError {
			log.Warn().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("gin api call failed")
		}
		return code, handler.ErrorResponse{
			Error:  apiErr.UserMessage(),
			Kind:   string(apiErr.Kind),
			Detail: apiErr.Message,
		}
	}

	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusServiceUnavailable, handler.ErrorResponse{
			Error: "service account is not configured",
			Kind:  string(domain.KindAuthentication),
		}
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, handler.ErrorResponse{
			Error: "authentication failed",
			Kind:  string(domain.KindAuthentication),
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{
		Error: "internal server error",
		Kind:  string(domain.KindUnknown),
	}
}

// statusForAPIError picks the status the gateway answers with. Upstream 5xx
// and transport failures become 502, timeouts 504.
func statusForAPIError(e *domain.APIError) int {
	switch e.Kind {
	case domain.KindNetwork:
		var ne net.Error
		if errors.Is(e.Err, context.DeadlineExceeded) || (errors.As(e.Err, &ne) && ne.Timeout()) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindClient:
		if e.StatusCode >= 400 && e.StatusCode < 500 {
			return e.StatusCode
		}
	}
	return http.StatusBadGateway
}
