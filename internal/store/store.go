// internal/store/store.go
//
// Opaque string persistence for save codes.
// The game core only ever writes a save code under a session's key; nothing
// here knows about the code's contents.

package store

import (
	"context"
)

// Store defines the persistence interface for save codes.
// Implementations: memory (this package), SQLite, Postgres.
type Store interface {
	// Get returns the value under key; ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any underlying connection.
	Close() error
}

// Open picks a backend: Postgres when databaseURL is set, SQLite when
// sqlitePath is set, memory otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	switch {
	case databaseURL != "":
		return OpenPostgres(ctx, databaseURL)
	case sqlitePath != "":
		return OpenSQLite(ctx, sqlitePath)
	default:
		return NewMemoryStore(), nil
	}
}
