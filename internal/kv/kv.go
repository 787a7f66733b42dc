package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key is absent or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the capability the session manager, rate limiter and
// credential handlers depend on. Implementations must provide atomic
// increment and TTL-on-create semantics; everything else is plain
// string key-value access.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// SetWithTTL writes key=value and arms expiry. The TTL is not
	// refreshed by reads.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Increment atomically adds 1 to the counter at key and returns
	// the post-increment count. The increment that creates the key
	// also sets its TTL, so the window is anchored to first use.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
}
