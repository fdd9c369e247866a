package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/core/service"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/memory"
)

const (
	// SessionKey is the echo context key holding the caller's ports.Session.
	SessionKey = "client_session"
	// BearerKey holds the caller's raw access token.
	BearerKey = "client_bearer"
)

// ClientSession builds a request-scoped session from the caller's bearer token
// and injects it into the context. A missing header yields an unauthenticated
// session; a malformed one is rejected.
func ClientSession(policy domain.ExpiryPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var pair domain.TokenPair

			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
				}
				pair.AccessToken = strings.TrimSpace(parts[1])
			}

			sess := service.NewSession(memory.NewTokenStoreWith(pair), nil, "", policy)
			c.Set(SessionKey, ports.Session(sess))
			c.Set(BearerKey, pair.AccessToken)
			return next(c)
		}
	}
}

// SessionFrom returns the session injected by ClientSession, if any.
func SessionFrom(c echo.Context) (ports.Session, bool) {
	s, ok := c.Get(SessionKey).(ports.Session)
	return s, ok
}

// BearerFrom returns the caller's access token, or "" when none was sent.
func BearerFrom(c echo.Context) string {
	token, _ := c.Get(BearerKey).(string)
	return token
}
