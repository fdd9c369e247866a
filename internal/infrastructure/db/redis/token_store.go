package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

const (
	DefaultTokenKey = "gin_access_token"
	DefaultTokenTTL = time.Hour

	fieldAccess    = "access_token"
	fieldRefresh   = "refresh_token"
	fieldExpiresAt = "expires_at"
)

// TokenStore keeps the token pair in a single Redis hash.
// Key format: <key> -> {access_token, refresh_token, expires_at}
type TokenStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore. Empty key and non-positive ttl fall back
// to DefaultTokenKey and DefaultTokenTTL.
func NewTokenStore(client *redis.Client, key string, ttl time.Duration) *TokenStore {
	if key == "" {
		key = DefaultTokenKey
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenStore{client: client, key: key, ttl: ttl}
}

func (s *TokenStore) Get(ctx context.Context) (domain.TokenPair, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("token store get: %w", err)
	}
	if fields[fieldAccess] == "" {
		return domain.TokenPair{}, nil
	}

	pair := domain.TokenPair{
		AccessToken:  fields[fieldAccess],
		RefreshToken: fields[fieldRefresh],
	}
	if raw := fields[fieldExpiresAt]; raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil && unix > 0 {
			pair.ExpiresAt = time.Unix(unix, 0).UTC()
		}
	}
	return pair, nil
}

// Set replaces the hash inside MULTI/EXEC so readers never see fields from
// two different pairs.
func (s *TokenStore) Set(ctx context.Context, pair domain.TokenPair) error {
	if err := pair.Validate(); err != nil {
		return err
	}

	var expires int64
	if !pair.ExpiresAt.IsZero() {
		expires = pair.ExpiresAt.Unix()
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	pipe.HSet(ctx, s.key,
		fieldAccess, pair.AccessToken,
		fieldRefresh, pair.RefreshToken,
		fieldExpiresAt, expires,
	)
	pipe.Expire(ctx, s.key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("token store set: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("token store clear: %w", err)
	}
	return nil
}
