package ports

import (
	"context"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// TokenStore holds the current token pair. Implementations must replace the
// pair atomically: a Get never observes fields from two different Sets.
type TokenStore interface {
	// Get returns the stored pair, or the zero pair when nothing is stored.
	Get(ctx context.Context) (domain.TokenPair, error)
	Set(ctx context.Context, pair domain.TokenPair) error
	Clear(ctx context.Context) error
}
