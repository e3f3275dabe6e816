// Package cache stores rendered visualization artifacts keyed by graph
// content, so repeated plots of the same graph skip the Graphviz pass.
//
// Three backends are provided: [FileCache] for normal CLI use,
// [RedisCache] for shared setups, and [NullCache] to disable caching.
// Keys are derived from a SHA-256 hash of the canonical graph text plus
// the render options, so any change to the graph or the options misses.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the artifact expiry used when callers pass no TTL policy.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// expired or corrupt entries are treated as misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL stores the value
	// without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}

// ArtifactKey builds the cache key for a rendered artifact from the
// graph content hash, the output format, and the DOT description hash
// (which folds in every render option that affects output).
func ArtifactKey(graphHash, format, dotHash string) string {
	return hashKey("artifact", graphHash, format, dotHash)
}
