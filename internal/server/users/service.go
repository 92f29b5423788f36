package users

import (
	"context"
	"fmt"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/server/hashing"
	"github.com/dkotlyar/passfort/internal/server/models"
)

// Service implements identity operations on top of Repository.
type Service struct {
	repo   Repository
	hasher hashing.Hasher
}

func NewService(repo Repository, hasher hashing.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register creates a new, unverified user. The raw password is hashed by the
// hashing collaborator and never stored.
func (s *Service) Register(ctx context.Context, email, userName, password string) (*models.User, error) {

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Email:        email,
		UserName:     userName,
		PasswordHash: hash,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if err == common.ErrDuplicateIdentity {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
