package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/pkg/metrics"
	"github.com/sijagur/dashboard-gateway/pkg/logger"
)

const (
	defaultAuthTimeout = 15 * time.Second
	// flightKey is shared by login and refresh: any in-flight attempt that
	// yields a fresh token satisfies every waiter.
	flightKey = "auth"
)

// Authenticator runs the login / register / refresh cycle against the Gin API
// for the configured service account and keeps the TokenStore current.
type Authenticator struct {
	api      ports.GinAPI
	store    ports.TokenStore
	profiles ports.ProfileRepository
	creds    domain.Credentials
	timeout  time.Duration
	group    singleflight.Group
	log      zerolog.Logger
}

// NewAuthenticator wires an Authenticator. profiles may be nil, in which case
// user profiles are not cached. A non-positive timeout falls back to
// defaultAuthTimeout.
func NewAuthenticator(
	api ports.GinAPI,
	store ports.TokenStore,
	profiles ports.ProfileRepository,
	creds domain.Credentials,
	timeout time.Duration,
	log zerolog.Logger,
) *Authenticator {
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}
	return &Authenticator{
		api:      api,
		store:    store,
		profiles: profiles,
		creds:    creds,
		timeout:  timeout,
		log:      logger.Component(log, "authenticator"),
	}
}

// Login authenticates with the configured credentials, registering the
// account first when the backend does not know it.
func (a *Authenticator) Login(ctx context.Context) (domain.TokenPair, error) {
	return a.shared(ctx, a.login)
}

// Refresh exchanges the stored refresh token for a new pair, falling back to a
// full login when there is no refresh token or the backend rejects it.
func (a *Authenticator) Refresh(ctx context.Context) (domain.TokenPair, error) {
	return a.shared(ctx, a.refresh)
}

// Register creates the service account. It never yields a token.
func (a *Authenticator) Register(ctx context.Context) (*domain.UserProfile, error) {
	if err := a.checkCredentials(); err != nil {
		return nil, err
	}
	user, err := a.register(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
	}
	return user, nil
}

func (a *Authenticator) EnsureToken(ctx context.Context) (string, error) {
	pair, err := a.store.Get(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("token store read failed, logging in")
	} else if !pair.IsZero() {
		return pair.AccessToken, nil
	}

	pair, err = a.Login(ctx)
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

func (a *Authenticator) Reauthenticate(ctx context.Context, stale string) (string, error) {
	current, err := a.store.Get(ctx)
	if err == nil && !current.IsZero() && current.AccessToken != stale {
		return current.AccessToken, nil
	}

	// re-checked inside the flight: a flight that finished between the read
	// above and this call has already replaced the stale token
	pair, err := a.shared(ctx, func(ctx context.Context) (domain.TokenPair, error) {
		if current, err := a.store.Get(ctx); err == nil && !current.IsZero() && current.AccessToken != stale {
			return current, nil
		}
		return a.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: clear tokens: %w", err)
	}
	if a.profiles != nil {
		if err := a.profiles.Delete(ctx, a.creds.Identifier); err != nil {
			return fmt.Errorf("logout: delete profile: %w", err)
		}
	}
	a.log.Info().Msg("service session cleared")
	return nil
}

// shared runs fn at most once across concurrent callers. The call itself runs
// on a context detached from the first caller and bounded by a.timeout, so one
// caller giving up does not fail the others; each caller still stops waiting
// when its own ctx is done.
func (a *Authenticator) shared(ctx context.Context, fn func(context.Context) (domain.TokenPair, error)) (domain.TokenPair, error) {
	ch := a.group.DoChan(flightKey, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		return fn(callCtx)
	})

	select {
	case <-ctx.Done():
		return domain.TokenPair{}, domain.NewNetworkError(ctx.Err())
	case res := <-ch:
		if res.Shared {
			metrics.AuthSharedWaitsTotal.Inc()
		}
		if res.Err != nil {
			return domain.TokenPair{}, res.Err
		}
		return res.Val.(domain.TokenPair), nil
	}
}

func (a *Authenticator) login(ctx context.Context) (domain.TokenPair, error) {
	if err := a.checkCredentials(); err != nil {
		return domain.TokenPair{}, err
	}

	res, err := a.api.Login(ctx, a.creds)
	observe("login", err)
	if err != nil {
		if !needsRegistration(err) {
			return domain.TokenPair{}, a.fail(err)
		}

		a.log.Info().Str("state", string(domain.StateRegistering)).Msg("account unknown to backend, registering")
		if _, err := a.register(ctx); err != nil {
			return domain.TokenPair{}, a.fail(err)
		}

		res, err = a.api.Login(ctx, a.creds)
		observe("login", err)
		if err != nil {
			return domain.TokenPair{}, a.fail(err)
		}
	}

	if err := a.store.Set(ctx, res.Tokens); err != nil {
		return domain.TokenPair{}, fmt.Errorf("login: store tokens: %w", err)
	}
	a.saveProfile(ctx, res.User)

	a.log.Info().Str("state", string(domain.StateAuthenticated)).Msg("logged in")
	return res.Tokens, nil
}

func (a *Authenticator) register(ctx context.Context) (*domain.UserProfile, error) {
	user, err := a.api.Register(ctx, a.creds)
	observe("register", err)
	if err != nil {
		return nil, err
	}
	a.saveProfile(ctx, user)
	return user, nil
}

func (a *Authenticator) refresh(ctx context.Context) (domain.TokenPair, error) {
	current, err := a.store.Get(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("token store read failed, re-authenticating")
		return a.relogin(ctx)
	}
	if current.RefreshToken == "" {
		return a.relogin(ctx)
	}

	a.log.Debug().Str("state", string(domain.StateRefreshing)).Msg("refreshing access token")
	pair, err := a.api.Refresh(ctx, current.RefreshToken)
	observe("refresh", err)
	if err != nil {
		a.log.Warn().Err(err).Msg("refresh rejected, re-authenticating")
		return a.relogin(ctx)
	}

	if err := a.store.Set(ctx, pair); err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh: store tokens: %w", err)
	}
	a.log.Info().Str("state", string(domain.StateAuthenticated)).Msg("access token refreshed")
	return pair, nil
}

// relogin drops the known-bad pair before a full login so a failure leaves the
// store empty rather than holding rejected tokens.
func (a *Authenticator) relogin(ctx context.Context) (domain.TokenPair, error) {
	if err := a.store.Clear(ctx); err != nil {
		a.log.Warn().Err(err).Msg("failed to clear rejected tokens")
	}
	return a.login(ctx)
}

func (a *Authenticator) saveProfile(ctx context.Context, user *domain.UserProfile) {
	if a.profiles == nil || user == nil {
		return
	}
	if err := a.profiles.Save(ctx, a.creds.Identifier, user); err != nil {
		a.log.Warn().Err(err).Msg("failed to cache user profile")
	}
}

func (a *Authenticator) checkCredentials() error {
	if a.creds.Identifier == "" || a.creds.Password == "" {
		return domain.ErrMissingCredentials
	}
	return nil
}

func (a *Authenticator) fail(err error) error {
	a.log.Error().Err(err).Str("state", string(domain.StateFailed)).Msg("authentication failed")
	return fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
}

// needsRegistration reports whether a login failure means "user not found".
func needsRegistration(err error) bool {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusNotAcceptable
}

func observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}
