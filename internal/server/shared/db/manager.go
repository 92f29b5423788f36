// Package db wires the backing stores together: it opens the database,
// runs migrations, and hands out repositories.
package db

import (
	"context"
	"database/sql"

	"github.com/dkotlyar/passfort/internal/server/ephemeral"
	"github.com/dkotlyar/passfort/internal/server/sessions"
	"github.com/dkotlyar/passfort/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Sessions() sessions.Repository
	EphemeralTokens() ephemeral.Repository
}
