// Package contract provides clients for the key/value contract that persists
// recipe requests. The contract is opaque: it stores bytes under string keys.
package contract

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable is returned when the backing contract cannot be reached.
	ErrUnavailable = errors.New("contract unavailable")
	// ErrTransactionFailed is returned when a write was submitted but not applied.
	ErrTransactionFailed = errors.New("contract transaction failed")
)

// Store is the contract surface the service depends on.
//
// GetData returns an empty slice and no error for keys that were never set.
type Store interface {
	IsAvailable(ctx context.Context) (bool, error)
	Address() string
	GetData(ctx context.Context, key string) ([]byte, error)
	SetData(ctx context.Context, key string, value []byte) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Closer is implemented by stores holding connections.
type Closer interface {
	Close() error
}

// Close releases store resources when the store holds any.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
