package db

import (
	"context"
	"database/sql"

	"github.com/dkotlyar/passfort/internal/server/ephemeral"
	"github.com/dkotlyar/passfort/internal/server/sessions"
	"github.com/dkotlyar/passfort/internal/server/users"
)

// InMemoryRepositoryManager backs the repositories with in-process maps.
// Used in tests and for running the server without a database.
type InMemoryRepositoryManager struct {
	users           users.Repository
	sessions        sessions.Repository
	ephemeralTokens ephemeral.Repository
}

func (m InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m InMemoryRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m InMemoryRepositoryManager) EphemeralTokens() ephemeral.Repository {
	return m.ephemeralTokens
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return InMemoryRepositoryManager{
		users:           users.NewInMemoryRepository(),
		sessions:        sessions.NewInMemoryRepository(),
		ephemeralTokens: ephemeral.NewInMemoryRepository(),
	}
}
