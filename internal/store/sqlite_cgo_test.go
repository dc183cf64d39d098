//go:build cgo

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kukacrm/internal/types"
)

func TestSQLiteBackend_CgoDriver(t *testing.T) {
	b, err := OpenSQLite(CgoDriver, ":memory:")
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()

	assert.Equal(t, CgoDriver, b.Driver())
	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(b.db))

	_, found, err := b.Get(ctx, ClientsKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Put(ctx, ClientsKey, "[]"))
	require.NoError(t, b.Put(ctx, ClientsKey, `[{"id":"1000"}]`))
	v, found, err := b.Get(ctx, ClientsKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1000"}]`, v)

	s := New(b)
	created, err := s.CreateClient(ctx, sampleInput("Bar Luz"))
	require.NoError(t, err)
	assert.Equal(t, "1001", created.ID)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.User{types.BootstrapAdmin()}, users)
}
