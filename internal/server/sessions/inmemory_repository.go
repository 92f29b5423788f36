package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests and local runs.
// The mutex here stands in for the per-row atomicity the SQL store provides;
// it is not a pattern for production multi-instance deployments.
type InMemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*models.Session

	// Now is the clock used for expiry checks; overridable in tests.
	Now func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]*models.Session),
		Now:      time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := *session
	r.sessions[s.ID] = &s
	return nil
}

func (r *InMemoryRepository) Find(ctx context.Context, sessionID string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	copy := *s
	return &copy, nil
}

func (r *InMemoryRepository) Rotate(ctx context.Context, sessionID string, oldTokenHash, newTokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.TokenHash != oldTokenHash || !s.ExpiresAt.After(r.Now()) {
		return common.ErrInvalidSession
	}
	s.TokenHash = newTokenHash
	s.ExpiresAt = expiresAt
	return nil
}

func (r *InMemoryRepository) Revoke(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func (r *InMemoryRepository) RevokeAll(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}
