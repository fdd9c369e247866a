package ports

import (
	"context"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// ProfileRepository caches the user profile returned by the Gin API, keyed by
// the login identifier.
type ProfileRepository interface {
	// Find returns domain.ErrProfileNotFound when nothing is cached.
	Find(ctx context.Context, identifier string) (*domain.UserProfile, error)
	Save(ctx context.Context, identifier string, profile *domain.UserProfile) error
	Delete(ctx context.Context, identifier string) error
}
