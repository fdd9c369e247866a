package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

// RequireAuthenticated rejects requests whose client session is missing or
// not authenticated. It must run after ClientSession.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := SessionFrom(c)
			if !ok {
				return unauthorized(c, "missing session")
			}
			authed, err := sess.IsAuthenticated(c.Request().Context())
			if err != nil || !authed {
				return unauthorized(c, "session expired")
			}
			return next(c)
		}
	}
}

// VerifyClient checks the caller's bearer against the Gin API. It must run
// after RequireAuthenticated. Upstream outages surface as errors for the
// HTTP error handler; only a rejected token is a 401.
func VerifyClient(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := verifier.Verify(c.Request().Context(), BearerFrom(c))
			switch {
			case errors.Is(err, domain.ErrClientTokenRejected):
				return unauthorized(c, "invalid client token")
			case err != nil:
				return err
			}
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg, "kind": string(domain.KindAuthentication)})
}
