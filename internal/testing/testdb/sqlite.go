package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"student-auth/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// NewSQLite opens a file-backed SQLite database under t.TempDir, creates
// the tables for models, and closes it when the test finishes.
func NewSQLite(t *testing.T, models ...interface{}) *bun.DB {
	t.Helper()

	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	database.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.PingContext(context.Background()))
	require.NoError(t, db.RunMigrations(context.Background(), database, models...))

	return database
}

func CleanupTables(t *testing.T, database *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := database.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clean table: %s", table)
	}
}
