package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// RecordStore owns the Client and User collections.
type RecordStore struct {
	backend Backend
	mu      sync.Mutex
	now     func() time.Time
	userID  func(time.Time) string
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithClock replaces time.Now for createdAt stamps and user ids.
func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) { s.now = now }
}

// WithUserIDFunc replaces the user id generator.
func WithUserIDFunc(fn func(time.Time) string) Option {
	return func(s *RecordStore) { s.userID = fn }
}

// New wraps backend. The store does not take ownership; Close closes the backend.
func New(backend Backend, opts ...Option) *RecordStore {
	s := &RecordStore{
		backend: backend,
		now:     time.Now,
		userID:  defaultUserID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultUserID(t time.Time) string {
	return "user-" + strconv.FormatInt(t.UnixMilli(), 10)
}

// Close closes the underlying backend.
func (s *RecordStore) Close() error {
	return s.backend.Close()
}

// ListClients returns every client in insertion order. An absent blob is empty.
func (s *RecordStore) ListClients(ctx context.Context) ([]types.Client, error) {
	var clients []types.Client
	if err := s.load(ctx, ClientsKey, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateClient validates in, assigns the next sequential id, stamps createdAt
// and persists the whole collection.
func (s *RecordStore) CreateClient(ctx context.Context, in types.ClientInput) (types.Client, error) {
	if err := in.Validate(); err != nil {
		return types.Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var clients []types.Client
	if err := s.load(ctx, ClientsKey, &clients); err != nil {
		return types.Client{}, err
	}

	id := strconv.Itoa(NextClientID(clients))
	client := in.ToClient(id, s.now().UTC().Format(isoMillis))
	clients = append(clients, client)

	if err := s.save(ctx, ClientsKey, clients); err != nil {
		return types.Client{}, err
	}
	logging.Store("Created client %s (%s), collection size %d", id, client.Name, len(clients))
	return client, nil
}

// isoMillis matches the ISO-8601 layout with millisecond precision and a Z suffix.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// NextClientID returns max(numeric id)+1, or InitialClientCode when no
// client carries a numeric id.
func NextClientID(clients []types.Client) int {
	max, seen := 0, false
	for _, c := range clients {
		n, err := strconv.Atoi(c.ID)
		if err != nil {
			continue
		}
		if !seen || n > max {
			max, seen = n, true
		}
	}
	if !seen {
		return types.InitialClientCode
	}
	return max + 1
}

// ListUsers returns every user. When the collection is empty the bootstrap
// admin is persisted first and returned alone.
func (s *RecordStore) ListUsers(ctx context.Context) ([]types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []types.User
	if err := s.load(ctx, UsersKey, &users); err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return users, nil
	}

	users = []types.User{types.BootstrapAdmin()}
	if err := s.save(ctx, UsersKey, users); err != nil {
		return nil, err
	}
	logging.Store("Bootstrapped admin user %s", types.BootstrapAdminUsername)
	return users, nil
}

// CreateUser appends a user with a time-derived id. Usernames are not checked
// for uniqueness.
func (s *RecordStore) CreateUser(ctx context.Context, in types.UserInput) (types.User, error) {
	if err := in.Validate(); err != nil {
		return types.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var users []types.User
	if err := s.load(ctx, UsersKey, &users); err != nil {
		return types.User{}, err
	}

	user := types.User{
		ID:       s.userID(s.now()),
		Username: in.Username,
		Password: in.Password,
		Role:     in.Role,
	}
	users = append(users, user)

	if err := s.save(ctx, UsersKey, users); err != nil {
		return types.User{}, err
	}
	logging.Store("Created user %s (%s)", user.ID, user.Role)
	return user, nil
}

// DeleteUser removes the user with id and persists the rest. Unknown ids are a
// no-op. The admin guard is the caller's job.
func (s *RecordStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []types.User
	if err := s.load(ctx, UsersKey, &users); err != nil {
		return err
	}

	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		logging.StoreDebug("DeleteUser: %s not found, nothing to do", id)
		return nil
	}

	if err := s.save(ctx, UsersKey, kept); err != nil {
		return err
	}
	logging.Store("Deleted user %s", id)
	return nil
}

func (s *RecordStore) load(ctx context.Context, key string, into interface{}) error {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		logging.StoreError("Read %s failed: %v", key, err)
		return &types.PersistenceFault{Op: "read", Key: key, Err: err}
	}
	if !found || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		logging.StoreError("Corrupt blob %s: %v", key, err)
		return &types.PersistenceFault{Op: "decode", Key: key, Err: fmt.Errorf("corrupt blob: %w", err)}
	}
	return nil
}

func (s *RecordStore) save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &types.PersistenceFault{Op: "encode", Key: key, Err: err}
	}
	if err := s.backend.Put(ctx, key, string(data)); err != nil {
		logging.StoreError("Write %s failed: %v", key, err)
		return &types.PersistenceFault{Op: "write", Key: key, Err: err}
	}
	return nil
}
