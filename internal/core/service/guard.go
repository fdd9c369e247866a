package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

const (
	loginPath     = "/login"
	homePath      = "/"
	redirectParam = "redirect"
)

// SessionChecker is the part of a Session the guard depends on.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) (bool, error)
}

// SessionGuard decides whether a navigation may proceed. It consults only
// local session state and never contacts the Gin API.
type SessionGuard struct {
	session SessionChecker
	log     zerolog.Logger
}

func NewSessionGuard(session SessionChecker, log zerolog.Logger) *SessionGuard {
	return &SessionGuard{session: session, log: log.With().Str("component", "session_guard").Logger()}
}

// ClassifyRoute puts login pages in RoutePublicOnly and everything else in
// RouteProtected.
func ClassifyRoute(name, path string) domain.RouteClass {
	if strings.Contains(strings.ToLower(name), "login") || strings.EqualFold(path, loginPath) {
		return domain.RoutePublicOnly
	}
	return domain.RouteProtected
}

func (g *SessionGuard) IsRouteAllowed(ctx context.Context, to, from domain.Route) domain.RouteDecision {
	authenticated, err := g.session.IsAuthenticated(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("session lookup failed, treating as unauthenticated")
		authenticated = false
	}

	switch ClassifyRoute(to.Name, to.Path) {
	case domain.RoutePublicOnly:
		if !authenticated {
			return domain.RouteDecision{Allow: true}
		}
		return domain.RouteDecision{RedirectTo: intendedTarget(to, from)}
	default:
		if authenticated {
			return domain.RouteDecision{Allow: true}
		}
		return domain.RouteDecision{RedirectTo: LoginRedirect(to.Target())}
	}
}

// LoginRedirect builds the login URL preserving target. The home page needs
// no redirect parameter.
func LoginRedirect(target string) string {
	if target == "" || target == homePath {
		return loginPath
	}
	// keep slashes readable, as the browser router does
	escaped := strings.ReplaceAll(url.QueryEscape(target), "%2F", "/")
	return loginPath + "?" + redirectParam + "=" + escaped
}

func intendedTarget(to, from domain.Route) string {
	if r := to.Query.Get(redirectParam); isLocalPath(r) {
		return r
	}
	if r := from.Query.Get(redirectParam); isLocalPath(r) {
		return r
	}
	return homePath
}

// isLocalPath rejects empty, absolute and protocol-relative targets.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}
