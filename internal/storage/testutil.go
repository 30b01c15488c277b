package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory outline database with the schema applied.
// Cleanup is registered with t.Cleanup().
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// NewTestDBFile creates a file-based outline database in t.TempDir() and
// returns its path. Use it when a test needs to reopen the database.
func NewTestDBFile(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "outline.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return path
}
