// Package metadata is a small key-value store used for state that must
// survive restarts but is not a story: the session token, the signed-in user,
// the push subscription.
package metadata

import "context"

type Repository interface {
	// Get returns the stored value, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
