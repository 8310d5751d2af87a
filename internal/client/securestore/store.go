// Package securestore is the encrypted credential store of the client: the
// session token and per-user biometric credential blobs live here, nowhere
// else. It stands in for the OS keystore behind a small interface so the rest
// of the client never touches the encryption or the file format.
package securestore

import "context"

// Store is a durable, encrypted key-value store for secrets.
//
// Get returns (nil, nil) when the key is absent; absence is a normal result.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
