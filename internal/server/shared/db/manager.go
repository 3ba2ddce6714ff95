// Package db wires the PostgreSQL connection, migrations, and repositories
// together behind a single manager.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/devlink/internal/server/posts"
	"github.com/dmitrijs2005/devlink/internal/server/users"
)

type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Posts() posts.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
