package domain

import "time"

// TokenPair is the credential set issued by the Gin API on login or refresh.
// A pair is always replaced as a whole, never field by field.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsZero reports whether the pair carries no access token.
func (p TokenPair) IsZero() bool {
	return p.AccessToken == ""
}

// Validate rejects pairs that must never reach a TokenStore.
func (p TokenPair) Validate() error {
	if p.AccessToken == "" {
		return ErrInvalidTokenPair
	}
	return nil
}

// Expired reports whether ExpiresAt is set and not after now.
func (p TokenPair) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !p.ExpiresAt.After(now)
}
