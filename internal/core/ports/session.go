package ports

import (
	"context"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// Session is the read side of a client or service session.
type Session interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	State(ctx context.Context) (domain.SessionState, error)
}

// RouteGuard decides whether a navigation may proceed.
type RouteGuard interface {
	IsRouteAllowed(ctx context.Context, to, from domain.Route) domain.RouteDecision
}

// SessionLifecycle is a Session with an explicit initialize/teardown cycle.
type SessionLifecycle interface {
	Session
	Initialize(ctx context.Context) error
	Teardown()
	Clear(ctx context.Context) error
}
