package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/api/middleware"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

// bindAndValidate binds the request into dst and runs the echo validator.
// Bind failures are 400, validation failures 422.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// ctxSession returns the request-scoped session injected by the
// ClientSession middleware. Without it the route was mounted incorrectly,
// which is reported as 401 rather than a panic.
func ctxSession(c echo.Context) (ports.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing client session")
	}
	return sess, nil
}
