package settings

import "context"

// Repository is a durable key-value store for non-sensitive client state:
// saved email, biometric flags, session mirror fields, activity timestamps.
// A missing key is a normal result (nil value, nil error), not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
