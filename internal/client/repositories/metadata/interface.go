// Package metadata is the local key/value table that backs durable client
// state such as the stored bearer token and the cached user profile.
package metadata

import (
	"context"
)

// Repository stores opaque byte values under string keys.
//
// Get returns (nil, nil) for a missing key. Delete of a missing key is not
// an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
