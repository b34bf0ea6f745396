package cache

import (
	"context"
	"time"
)

// Store is the networked key-value capability the cache sits on.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetMany returns the values found for keys. Missing keys are absent from the map.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)

	// SetMany stores every entry. A zero ttl means no expiry.
	SetMany(ctx context.Context, entries map[string]string, ttl time.Duration) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close() error
}
