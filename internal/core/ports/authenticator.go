package ports

import "context"

// Authenticator acquires and recovers access tokens for the service account.
type Authenticator interface {
	// EnsureToken returns the stored access token, logging in when none is stored.
	EnsureToken(ctx context.Context) (string, error)
	// Reauthenticate recovers from a 401 observed with stale. When another
	// caller already replaced stale, the current token is returned without
	// contacting the backend.
	Reauthenticate(ctx context.Context, stale string) (string, error)
	// Logout drops tokens and the cached profile.
	Logout(ctx context.Context) error
}
