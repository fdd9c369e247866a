package domain

// AuthState names a step of one authentication cycle.
type AuthState string

const (
	StateNoToken       AuthState = "no_token"
	StateRegistering   AuthState = "registering"
	StateAuthenticated AuthState = "authenticated"
	StateRefreshing    AuthState = "refreshing"
	StateFailed        AuthState = "failed"
)

// ExpiryPolicy selects how a Session decides whether its token is usable.
type ExpiryPolicy string

const (
	// PolicyPresence trusts any stored access token.
	PolicyPresence ExpiryPolicy = "presence"
	// PolicyJWTExp additionally requires an unexpired exp claim.
	PolicyJWTExp ExpiryPolicy = "jwt_exp"
)

// ParseExpiryPolicy returns the policy for s, defaulting to PolicyPresence.
func ParseExpiryPolicy(s string) ExpiryPolicy {
	if ExpiryPolicy(s) == PolicyJWTExp {
		return PolicyJWTExp
	}
	return PolicyPresence
}

// SessionState is the derived view of a session.
type SessionState struct {
	User            *UserProfile `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
}
