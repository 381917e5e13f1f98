package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The schema depends on the fts5 module; a driver build without it would fail
// right here, before any store operation runs.
func TestOpenDatabaseProvidesFTS5(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDatabase(ctx, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer db.Close()

	var module string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM pragma_module_list WHERE name = 'fts5'`).Scan(&module)
	require.NoError(t, err)
	assert.Equal(t, "fts5", module)
}

func TestOpenDatabaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	db, err := OpenDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an existing database must not trip over the schema
	db, err = OpenDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db))
}
