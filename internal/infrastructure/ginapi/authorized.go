package ginapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/pkg/metrics"
	"github.com/sijagur/dashboard-gateway/pkg/logger"
)

// AuthorizedClient implements ports.APICaller. It attaches the stored access
// token, and on a 401 reauthenticates once and resends the same request once.
type AuthorizedClient struct {
	client   *Client
	store    ports.TokenStore
	auth     ports.Authenticator
	autoAuth bool
	log      zerolog.Logger

	// OnUnauthorized, when set, is called after an unrecoverable 401 has
	// purged the session.
	OnUnauthorized func(ctx context.Context)
}

func NewAuthorizedClient(client *Client, store ports.TokenStore, auth ports.Authenticator, autoAuth bool, log zerolog.Logger) *AuthorizedClient {
	return &AuthorizedClient{
		client:   client,
		store:    store,
		auth:     auth,
		autoAuth: autoAuth,
		log:      logger.Component(log, "authorized_client"),
	}
}

func (c *AuthorizedClient) Call(ctx context.Context, method, path string, body any) (*ports.Response, error) {
	// encode once so the retry resends identical bytes
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Send(ctx, method, path, payload, token)
	if domain.StatusOf(err) != http.StatusUnauthorized {
		return res, err
	}

	c.log.Info().Str("method", method).Str("path", path).Msg("upstream returned 401, reauthenticating")
	fresh, authErr := c.auth.Reauthenticate(ctx, token)
	if authErr != nil {
		metrics.UpstreamRetriesTotal.WithLabelValues("failed").Inc()
		if ctx.Err() != nil {
			return nil, domain.NewNetworkError(ctx.Err())
		}
		return nil, c.unauthorized(ctx, authErr)
	}

	res, err = c.client.Send(ctx, method, path, payload, fresh)
	if domain.StatusOf(err) == http.StatusUnauthorized {
		metrics.UpstreamRetriesTotal.WithLabelValues("failed").Inc()
		return nil, c.unauthorized(ctx, err)
	}
	metrics.UpstreamRetriesTotal.WithLabelValues("recovered").Inc()
	return res, err
}

func (c *AuthorizedClient) token(ctx context.Context) (string, error) {
	pair, err := c.store.Get(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("token store read failed")
	}
	if !pair.IsZero() || !c.autoAuth {
		return pair.AccessToken, nil
	}
	return c.auth.EnsureToken(ctx)
}

// unauthorized purges the session, signals the redirect and returns an
// authentication error wrapping cause.
func (c *AuthorizedClient) unauthorized(ctx context.Context, cause error) error {
	metrics.SessionPurgesTotal.Inc()
	purgeCtx := context.WithoutCancel(ctx)
	if err := c.auth.Logout(purgeCtx); err != nil {
		c.log.Error().Err(err).Msg("failed to purge session after 401")
	}
	c.log.Warn().Err(cause).Msg("unrecoverable 401, session purged")
	if c.OnUnauthorized != nil {
		c.OnUnauthorized(purgeCtx)
	}

	var apiErr *domain.APIError
	if errors.As(cause, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return apiErr
	}
	return &domain.APIError{
		Kind:       domain.KindAuthentication,
		StatusCode: http.StatusUnauthorized,
		Err:        cause,
	}
}
