package ephemeral

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

// Put stores a token entry with an expiry of now+ttl.
func (r *PostgresRepository) Put(ctx context.Context, key string, value *models.EphemeralToken, ttl time.Duration) error {
	query := `
		INSERT INTO ephemeral_tokens (token, purpose, user_id, email, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		key, string(value.Purpose), value.UserID, value.Email, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Take redeems the entry under key. The single DELETE..RETURNING statement is
// the atomicity guarantee: of two concurrent redemptions, exactly one sees
// the row. Expired rows match the same predicate as absent ones.
func (r *PostgresRepository) Take(ctx context.Context, key string) (*models.EphemeralToken, error) {
	query := `
		DELETE FROM ephemeral_tokens
		WHERE token = $1 AND expires_at > now()
		RETURNING purpose, user_id, email
	`
	value := &models.EphemeralToken{}
	var purpose string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&purpose, &value.UserID, &value.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	value.Purpose = models.TokenPurpose(purpose)
	return value, nil
}

// Purge removes expired rows. Correctness never depends on it; it only keeps
// the table from accumulating dead entries.
func (r *PostgresRepository) Purge(ctx context.Context) error {
	query := `
		DELETE FROM ephemeral_tokens
		WHERE expires_at <= now()
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
