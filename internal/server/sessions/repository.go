// Package sessions manages durable refresh credentials: one row per
// authenticated device, rotated on every refresh and revocable one-by-one
// or all at once.
package sessions

import (
	"context"
	"time"

	"github.com/dkotlyar/passfort/internal/server/models"
)

// Repository defines persistence operations for sessions.
//
// Rotate is the linearization point for concurrent refreshes: it must be a
// conditional update (compare-and-swap on the stored secret hash) so that at
// most one of two racing rotations succeeds. The guarantee has to come from
// the backing store, not from an in-process lock, so it holds across
// multiple server instances.
type Repository interface {
	// Create inserts a new session row.
	Create(ctx context.Context, session *models.Session) error

	// Find returns the session with the given id, or common.ErrSessionNotFound.
	// Expired rows are still returned; the service reports expiry distinctly.
	Find(ctx context.Context, sessionID string) (*models.Session, error)

	// Rotate atomically replaces the stored secret hash, but only if the row
	// still holds oldTokenHash and is not expired. If no row matches, it
	// returns common.ErrInvalidSession: the presented secret lost a race or
	// was already rotated.
	Rotate(ctx context.Context, sessionID string, oldTokenHash, newTokenHash string, expiresAt time.Time) error

	// Revoke deletes the session row. Revoking an absent session is not an
	// error: the desired end state is already reached.
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAll deletes every session belonging to userID.
	RevokeAll(ctx context.Context, userID string) error
}
