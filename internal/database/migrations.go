package database

import (
	"context"
	"embed"

	"talescapes-server/pkg/migration"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrator over the embedded migration files.
func NewMigrator(pool *pgxpool.Pool) *migration.Migrator {
	return migration.NewMigrator(migration.Config{
		MigrationsPath: "migrations",
		MigrationsFS:   migrationsFS,
	}, pool)
}

// ApplyMigrations applies all pending schema migrations from the embedded
// migration files.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	return NewMigrator(pool).Up(ctx)
}
