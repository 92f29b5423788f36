package ephemeral

import (
	"context"
	"sync"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/server/models"
)

type entry struct {
	value     models.EphemeralToken
	expiresAt time.Time
}

// InMemoryRepository is a map-backed Repository used in tests and local runs.
// The mutex stands in for the atomic get-and-delete the SQL store provides.
type InMemoryRepository struct {
	mu      sync.Mutex
	entries map[string]entry

	// Now is the clock used for expiry checks; overridable in tests.
	Now func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		entries: make(map[string]entry),
		Now:     time.Now,
	}
}

func (r *InMemoryRepository) Put(ctx context.Context, key string, value *models.EphemeralToken, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = entry{value: *value, expiresAt: r.Now().Add(ttl)}
	return nil
}

func (r *InMemoryRepository) Take(ctx context.Context, key string) (*models.EphemeralToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, common.ErrInvalidOrExpiredToken
	}
	delete(r.entries, key)
	if !e.expiresAt.After(r.Now()) {
		return nil, common.ErrInvalidOrExpiredToken
	}
	value := e.value
	return &value, nil
}

func (r *InMemoryRepository) Purge(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()
	for key, e := range r.entries {
		if !e.expiresAt.After(now) {
			delete(r.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored entries, live or expired.
func (r *InMemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
