// Package ephemeral implements the single-use token store backing email
// verification and password reset. Entries are write-once, read-once, and
// expire on their own.
package ephemeral

import (
	"context"
	"time"

	"github.com/dkotlyar/passfort/internal/server/models"
)

// Repository is a keyed store with per-entry expiry.
//
// Take must be atomic with respect to concurrent redemption of the same key:
// at most one caller ever observes success. That atomicity has to come from
// the backing store so it holds across multiple server instances. Expired
// entries behave identically to absent ones. There is no update operation.
type Repository interface {
	// Put stores value under key with an expiry of now+ttl.
	Put(ctx context.Context, key string, value *models.EphemeralToken, ttl time.Duration) error

	// Take atomically removes and returns the live entry under key.
	// Absent, expired, and already-taken keys all yield
	// common.ErrInvalidOrExpiredToken.
	Take(ctx context.Context, key string) (*models.EphemeralToken, error)

	// Purge removes expired entries. Correctness never depends on it; it
	// only keeps the store from accumulating dead rows.
	Purge(ctx context.Context) error
}
