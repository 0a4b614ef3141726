// Package metadata is the client's local key/value store. It holds the small
// amount of state that must survive process restarts, most importantly the
// session token under KeyToken.
package metadata

import "context"

// Well-known keys.
const (
	// KeyToken is the key the bearer token is persisted under.
	KeyToken = "token"

	// KeyTokenSavedAt records when the token was persisted, RFC 3339.
	KeyTokenSavedAt = "token_saved_at"
)

// Repository stores opaque values by key.
//
// Contract: Get returns (nil, nil) when the key is absent, so callers can
// distinguish "not set" from a storage failure.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// SetMany writes all given pairs in a single transaction; either every
	// key is updated or none is.
	SetMany(ctx context.Context, values map[string][]byte) error

	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
