package store

import (
	"context"
	"sync"
)

// MemoryBackend is a map-backed Backend used for unit testing store logic
// without a database file.
type MemoryBackend struct {
	mu    sync.Mutex
	blobs map[string]string
	puts  int
	err   error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string]string)}
}

// WithError configures the backend to return err for subsequent calls.
func (m *MemoryBackend) WithError(err error) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Seed writes a raw blob without counting it as a Put.
func (m *MemoryBackend) Seed(key, value string) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = value
	return m
}

// Puts returns how many Put calls succeeded.
func (m *MemoryBackend) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Raw returns the stored blob for key.
func (m *MemoryBackend) Raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blobs[key]
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.blobs[key]
	return v, ok, nil
}

func (m *MemoryBackend) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.blobs[key] = value
	m.puts++
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
