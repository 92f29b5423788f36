package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/dkotlyar/passfort/internal/dbx"
	"github.com/dkotlyar/passfort/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new session row.
func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.TokenHash, session.UserAgent, session.ExpiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Find returns the session row for the given id, or common.ErrSessionNotFound.
// Expiry is judged by the caller so it can report ErrSessionExpired distinctly.
func (r *PostgresRepository) Find(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, token_hash, user_agent, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`
	session := &models.Session{}
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.UserAgent, &session.CreatedAt, &session.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrSessionNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

// Rotate performs the compare-and-swap on the stored secret hash. A stale
// oldTokenHash (already rotated, revoked, or expired) matches no row and
// yields common.ErrInvalidSession.
func (r *PostgresRepository) Rotate(ctx context.Context, sessionID string, oldTokenHash, newTokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE sessions
		SET token_hash = $3, expires_at = $4
		WHERE id = $1 AND token_hash = $2 AND expires_at > now()
	`
	res, err := r.db.ExecContext(ctx, query, sessionID, oldTokenHash, newTokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrInvalidSession
	}
	return nil
}

// Revoke removes a session by id.
func (r *PostgresRepository) Revoke(ctx context.Context, sessionID string) error {
	query := `
		DELETE FROM sessions
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RevokeAll removes every session belonging to userID.
func (r *PostgresRepository) RevokeAll(ctx context.Context, userID string) error {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
