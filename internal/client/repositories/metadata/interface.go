// Package metadata is the raw key-value layer under the typed credential
// store. Backends: SQLite (default), PostgreSQL and Redis, optionally wrapped
// by a sealing decorator that encrypts values at rest.
package metadata

import (
	"context"
)

// Repository is a flat byte-valued key-value store.
//
// Get returns (nil, nil) for a missing key. Update applies all writes and
// deletes together; SQL backends run it in one transaction, Redis in
// MULTI/EXEC.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, set map[string][]byte, del []string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Close() error
}
