package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/pkg/metrics"
	"github.com/sijagur/dashboard-gateway/pkg/logger"
)

const defaultVerifyTTL = time.Minute

// ProfileFetcher resolves an access token to its user.
type ProfileFetcher interface {
	Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error)
}

// TokenVerifier implements ports.TokenVerifier. A token accepted by the Gin
// API is remembered for ttl; concurrent checks of one token share a call.
type TokenVerifier struct {
	api   ProfileFetcher
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
	group singleflight.Group

	mu       sync.Mutex
	verified map[string]time.Time // token digest -> expiry
}

func NewTokenVerifier(api ProfileFetcher, ttl time.Duration, log zerolog.Logger) *TokenVerifier {
	if ttl <= 0 {
		ttl = defaultVerifyTTL
	}
	return &TokenVerifier{
		api:      api,
		ttl:      ttl,
		now:      time.Now,
		log:      logger.Component(log, "token_verifier"),
		verified: make(map[string]time.Time),
	}
}

func (v *TokenVerifier) Verify(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return domain.ErrClientTokenRejected
	}
	key := digest(accessToken)
	if v.cached(key) {
		metrics.ClientVerificationsTotal.WithLabelValues("cached").Inc()
		return nil
	}

	_, err, _ := v.group.Do(key, func() (any, error) {
		_, err := v.api.Profile(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		v.remember(key)
		return nil, nil
	})

	switch status := domain.StatusOf(err); {
	case err == nil:
		metrics.ClientVerificationsTotal.WithLabelValues("verified").Inc()
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		metrics.ClientVerificationsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: %w", domain.ErrClientTokenRejected, err)
	default:
		metrics.ClientVerificationsTotal.WithLabelValues("error").Inc()
		v.log.Warn().Err(err).Msg("caller token check failed")
		return err
	}
}

func (v *TokenVerifier) cached(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	exp, ok := v.verified[key]
	if ok && v.now().After(exp) {
		delete(v.verified, key)
		return false
	}
	return ok
}

func (v *TokenVerifier) remember(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	for k, exp := range v.verified {
		if now.After(exp) {
			delete(v.verified, k)
		}
	}
	v.verified[key] = now.Add(v.ttl)
}

// digest keeps raw bearer tokens out of the cache keys.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
