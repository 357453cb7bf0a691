package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration is one idempotent schema step. Statements must be safe to re-run
// (CREATE ... IF NOT EXISTS, ADD COLUMN IF NOT EXISTS).
type Migration struct {
	Name string
	SQL  string
}

// RunMigrations executes the given migrations in order inside one transaction.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, migrations ...Migration) error {
	slog.Info("Starting database migrations", "count", len(migrations))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migrations: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range migrations {
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	slog.Info("All migrations completed successfully")
	return nil
}
