// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/db"
)

// Open creates a migrated sqlite database in t.TempDir() that is closed when the test ends
func Open(t *testing.T) (*db.DB, *db.Repositories) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(sqlDB))

	t.Cleanup(func() {
		_ = database.Close()
	})

	return database, db.NewRepositories(database)
}
