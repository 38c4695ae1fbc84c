// Package storage defines the persistence boundary of the ledger: a local
// key-value byte store holding one blob for records and one for settings.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("blob not found")

// Blobs is the port for outbound persistence adapters.
type Blobs interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put atomically replaces the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the blob under key; absent keys are a no-op.
	Delete(ctx context.Context, key string) error
}
