// Package memory holds in-process implementations of the storage ports. They
// keep no TTL and are lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// TokenStore keeps one token pair behind a mutex; Set swaps the whole value.
type TokenStore struct {
	mu   sync.RWMutex
	pair domain.TokenPair
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// NewTokenStoreWith returns a store preloaded with pair.
func NewTokenStoreWith(pair domain.TokenPair) *TokenStore {
	return &TokenStore{pair: pair}
}

func (s *TokenStore) Get(_ context.Context) (domain.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, nil
}

func (s *TokenStore) Set(_ context.Context, pair domain.TokenPair) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.pair = domain.TokenPair{}
	s.mu.Unlock()
	return nil
}
