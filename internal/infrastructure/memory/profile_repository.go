package memory

import (
	"context"
	"sync"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// ProfileRepository is a map-backed ports.ProfileRepository. Profiles are
// copied on the way in and out.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]domain.UserProfile)}
}

func (r *ProfileRepository) Find(_ context.Context, identifier string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[identifier]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) Save(_ context.Context, identifier string, profile *domain.UserProfile) error {
	if profile == nil {
		return nil
	}
	r.mu.Lock()
	r.profiles[identifier] = *profile
	r.mu.Unlock()
	return nil
}

func (r *ProfileRepository) Delete(_ context.Context, identifier string) error {
	r.mu.Lock()
	delete(r.profiles, identifier)
	r.mu.Unlock()
	return nil
}
