package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_FreshSchemaIsCurrent(t *testing.T) {
	b, err := OpenSQLite(DefaultDriver, ":memory:")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(b.db))
	assert.True(t, columnExists(b.db, "kv_blobs", "updated_at"))
}

func TestRunMigrations_UpgradesLegacyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open(DefaultDriver, path)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE kv_blobs (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO kv_blobs (key, value) VALUES (?, ?)`, UsersKey, `[{"id":"admin-0","username":"admin","password":"123","role":"admin"}]`)
	require.NoError(t, err)
	assert.Equal(t, 1, GetSchemaVersion(legacy))
	require.NoError(t, legacy.Close())

	b, err := OpenSQLite(DefaultDriver, path)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(b.db))
	v, found, err := b.Get(context.Background(), UsersKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, v, "admin-0")

	// Running again is a no-op.
	require.NoError(t, RunMigrations(b.db))
	var records int
	require.NoError(t, b.db.QueryRow("SELECT COUNT(*) FROM schema_versions").Scan(&records))
	assert.Equal(t, 1, records)
}
