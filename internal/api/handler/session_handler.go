package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/core/service"
)

// GuardFactory builds a RouteGuard over a request-scoped session.
type GuardFactory func(ports.Session) ports.RouteGuard

// SessionHandler exposes the gateway's own service session and the route guard.
type SessionHandler struct {
	session  ports.SessionLifecycle
	auth     ports.Authenticator
	newGuard GuardFactory
}

func NewSessionHandler(session ports.SessionLifecycle, auth ports.Authenticator, newGuard GuardFactory) *SessionHandler {
	return &SessionHandler{session: session, auth: auth, newGuard: newGuard}
}

type routeRequest struct {
	Path     string `query:"path"      validate:"required"`
	Name     string `query:"name"`
	From     string `query:"from"`
	FromName string `query:"from_name"`
}

type routeResponse struct {
	domain.RouteDecision
	Class string `json:"class"`
}

// State returns the service session.
//
// @Summary      Service session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.SessionState
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/session [get]
func (h *SessionHandler) State(c echo.Context) error {
	ctx := c.Request().Context()

	state, err := h.session.State(ctx)
	if err != nil {
		return err
	}
	if state.IsAuthenticated && state.User == nil {
		// tokens may have been issued by another replica
		if err := h.session.Initialize(ctx); err != nil {
			return err
		}
		if state, err = h.session.State(ctx); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, state)
}

// Login makes sure the service account holds a token, registering it on the
// Gin API when needed.
//
// @Summary      Authenticate the service session
// @Tags         session
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.SessionState
// @Failure      401  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /v1/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.auth.EnsureToken(ctx); err != nil {
		return err
	}
	if err := h.session.Initialize(ctx); err != nil {
		return err
	}

	state, err := h.session.State(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Logout drops the service session.
//
// @Summary      Clear the service session
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.session.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Route evaluates a navigation for the caller's bearer token.
//
// @Summary      Route guard decision
// @Tags         session
// @Produce      json
// @Param        path       query     string  true   "Target path, with query"
// @Param        name       query     string  false  "Target route name"
// @Param        from       query     string  false  "Current path, with query"
// @Param        from_name  query     string  false  "Current route name"
// @Security     BearerAuth
// @Success      200  {object}  routeResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /v1/session/route [get]
func (h *SessionHandler) Route(c echo.Context) error {
	var req routeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	to, err := parseRoute(req.Name, req.Path)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "path must be a valid URL path")
	}
	from, err := parseRoute(req.FromName, req.From)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "from must be a valid URL path")
	}

	decision := h.newGuard(sess).IsRouteAllowed(c.Request().Context(), to, from)
	return c.JSON(http.StatusOK, routeResponse{
		RouteDecision: decision,
		Class:         service.ClassifyRoute(to.Name, to.Path).String(),
	})
}

func parseRoute(name, raw string) (domain.Route, error) {
	if raw == "" {
		return domain.Route{Name: name}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return domain.Route{}, err
	}
	return domain.Route{Name: name, Path: u.Path, FullPath: raw, Query: u.Query()}, nil
}
