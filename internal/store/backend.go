// Package store persists the kukacrm Client and User collections.
//
// Each collection is a single JSON array held under its own key in a Backend.
// The whole array is rewritten on every mutation; there is no append log.
// RecordStore serializes mutations so identifier assignment stays atomic
// inside one process.
package store

import (
	"context"
)

// Blob keys. Versioned so a future layout can live beside the current one.
const (
	ClientsKey = "lele_da_kuka_clients_v1"
	UsersKey   = "lele_da_kuka_users_v1"
)

// Backend is a key-value medium holding text blobs.
type Backend interface {
	// Get returns the blob for key. found is false when the key was never written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Put replaces the blob for key.
	Put(ctx context.Context, key, value string) error
	Close() error
}
