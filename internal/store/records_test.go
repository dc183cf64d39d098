package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"kukacrm/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 12, 30, 45, 123_000_000, time.UTC)

func newTestStore(t *testing.T) (*RecordStore, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	s := New(backend, WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(func() { s.Close() })
	return s, backend
}

func sampleInput(name string) types.ClientInput {
	in := types.NewClientInput("admin")
	in.Name = name
	in.ResponsibleName = "Maria"
	in.Phone = "(82) 99999-0000"
	in.Address = "Rua A, 10"
	in.DocumentValue = "12.345.678/0001-90"
	return in
}

func TestSequentialClientIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var got []string
	for i := 0; i < 5; i++ {
		c, err := s.CreateClient(ctx, sampleInput(fmt.Sprintf("Cliente %d", i)))
		require.NoError(t, err)
		got = append(got, c.ID)
	}

	want := []string{"1000", "1001", "1002", "1003", "1004"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	clients, err := s.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 5)
	for i, c := range clients {
		assert.Equal(t, want[i], c.ID, "insertion order")
	}
}

func TestCreateClient_StampsAndPersists(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, sampleInput("Café Sol"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T12:30:45.123Z", c.CreatedAt)
	assert.Equal(t, "admin", c.RegisteredBy)
	assert.Equal(t, 1, backend.Puts())
	assert.Contains(t, backend.Raw(ClientsKey), `"razaoSocial":""`)
	assert.Contains(t, backend.Raw(ClientsKey), `"latitude":null`)
}

func TestCreateClient_ValidationMutatesNothing(t *testing.T) {
	s, backend := newTestStore(t)

	in := sampleInput("")
	_, err := s.CreateClient(context.Background(), in)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Equal(t, 0, backend.Puts())
}

func TestNextClientID(t *testing.T) {
	tests := []struct {
		name    string
		clients []types.Client
		want    int
	}{
		{"empty", nil, 1000},
		{"gap", []types.Client{{ID: "1000"}, {ID: "1007"}, {ID: "1003"}}, 1008},
		{"non-numeric ignored", []types.Client{{ID: "abc"}, {ID: "1001"}}, 1002},
		{"only non-numeric", []types.Client{{ID: "x"}}, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextClientID(tt.clients))
		})
	}
}

func TestConcurrentCreateClientUniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := s.CreateClient(ctx, sampleInput(strconv.Itoa(i)))
			if err == nil {
				ids <- c.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestBootstrapAdminIdempotence(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	first, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "admin", first[0].Username)
	assert.Equal(t, types.RoleAdmin, first[0].Role)
	assert.Equal(t, "admin-0", first[0].ID)

	second, err := s.ListUsers(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second listing differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, 1, backend.Puts(), "bootstrap persisted exactly once")
}

func TestBootstrapAdminRecreatedAfterFullDeletion(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.NoError(t, s.DeleteUser(ctx, types.BootstrapAdminID))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, types.BootstrapAdmin(), users[0])
}

func TestCreateAndDeleteUser(t *testing.T) {
	backend := NewMemoryBackend()
	n := 0
	s := New(backend,
		WithClock(func() time.Time { return fixedNow }),
		WithUserIDFunc(func(time.Time) string { n++; return fmt.Sprintf("user-%d", n) }),
	)
	ctx := context.Background()

	_, err := s.ListUsers(ctx)
	require.NoError(t, err)

	u, err := s.CreateUser(ctx, types.UserInput{Username: "joao", Password: "x", Role: types.RoleVendedor})
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)

	dup, err := s.CreateUser(ctx, types.UserInput{Username: "joao", Password: "y", Role: types.RoleVendedor})
	require.NoError(t, err, "duplicate usernames are accepted")

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	require.NoError(t, s.DeleteUser(ctx, "missing"))

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	var ids []string
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"admin-0", dup.ID}, ids)
}

func TestDefaultUserID(t *testing.T) {
	assert.Equal(t, "user-1741955445123", defaultUserID(fixedNow))
}

func TestCreateUser_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateUser(context.Background(), types.UserInput{Username: "x", Role: types.RoleVendedor})
	assert.True(t, types.IsValidation(err))
}

func TestPersistenceFaults(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	s := New(NewMemoryBackend().WithError(boom))
	_, err := s.ListClients(ctx)
	require.Error(t, err)
	assert.True(t, types.IsPersistence(err))
	assert.ErrorIs(t, err, boom)

	_, err = s.CreateClient(ctx, sampleInput("x"))
	assert.ErrorIs(t, err, boom)

	_, err = s.ListUsers(ctx)
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, s.DeleteUser(ctx, "admin-0"), boom)
}

func TestCorruptBlobIsPersistenceFault(t *testing.T) {
	backend := NewMemoryBackend().Seed(ClientsKey, "{not json")
	s := New(backend)

	_, err := s.ListClients(context.Background())
	require.Error(t, err)
	var pf *types.PersistenceFault
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, "decode", pf.Op)
	assert.Equal(t, ClientsKey, pf.Key)
}

func TestMissingKeysDecodeToZeroValues(t *testing.T) {
	backend := NewMemoryBackend().Seed(ClientsKey, `[{"id":"1000","name":"Antigo"}]`)
	s := New(backend)

	clients, err := s.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Antigo", clients[0].Name)
	assert.Nil(t, clients[0].Latitude)
	assert.Equal(t, "", clients[0].Observations)
}
