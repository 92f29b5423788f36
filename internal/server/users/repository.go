// Package users manages identity records: creation, lookup, the verified
// flag, and password-hash updates.
package users

import (
	"context"

	"github.com/dkotlyar/passfort/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create stores a new user. Implementations must map unique-constraint
	// violations on email or username to common.ErrDuplicateIdentity.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail returns the user with the given email, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByLogin returns the user with the given username, or common.ErrorNotFound.
	GetByLogin(ctx context.Context, userName string) (*models.User, error)

	// SetVerified flips the user's verification flag.
	SetVerified(ctx context.Context, id string, verified bool) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
