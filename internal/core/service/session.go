package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

// Session is the explicit, context-owned view of one authenticated client.
// It derives IsAuthenticated from the TokenStore and keeps the user profile
// loaded by Initialize. A Session is safe for concurrent use.
type Session struct {
	store      ports.TokenStore
	profiles   ports.ProfileRepository
	identifier string
	policy     domain.ExpiryPolicy
	now        func() time.Time

	mu   sync.RWMutex
	user *domain.UserProfile
}

// NewSession builds a Session for identifier. profiles may be nil.
func NewSession(store ports.TokenStore, profiles ports.ProfileRepository, identifier string, policy domain.ExpiryPolicy) *Session {
	return &Session{
		store:      store,
		profiles:   profiles,
		identifier: identifier,
		policy:     policy,
		now:        time.Now,
	}
}

// Initialize loads the cached user profile. A missing profile is not an error.
func (s *Session) Initialize(ctx context.Context) error {
	if s.profiles == nil {
		return nil
	}
	user, err := s.profiles.Find(ctx, s.identifier)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.SetUser(user)
	return nil
}

// Teardown forgets in-memory state. Stored tokens are left alone.
func (s *Session) Teardown() {
	s.SetUser(nil)
}

func (s *Session) SetUser(user *domain.UserProfile) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Session) User() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether the store holds a usable access token under
// the configured expiry policy.
func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	pair, err := s.store.Get(ctx)
	if err != nil {
		return false, err
	}
	if pair.IsZero() {
		return false, nil
	}
	if s.policy != domain.PolicyJWTExp {
		return true, nil
	}
	return !tokenExpired(pair.AccessToken, s.now()), nil
}

func (s *Session) State(ctx context.Context) (domain.SessionState, error) {
	ok, err := s.IsAuthenticated(ctx)
	if err != nil {
		return domain.SessionState{}, err
	}
	return domain.SessionState{User: s.User(), IsAuthenticated: ok}, nil
}

// Clear drops tokens, the cached profile and in-memory state.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	if s.profiles != nil {
		if err := s.profiles.Delete(ctx, s.identifier); err != nil {
			return err
		}
	}
	s.Teardown()
	return nil
}

// tokenExpired decodes the exp claim without verifying the signature; the
// gateway does not hold the Gin API's signing key. Tokens that do not parse
// count as expired, tokens without exp do not expire.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return !exp.After(now)
}
