// Package cache stores computed layouts keyed by a hash of their inputs.
//
// A layout is a pure function of the topology and the parameters, so a
// cached result never needs invalidation beyond its TTL. Three backends
// are provided:
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared storage for several layout servers
//
// Keys are produced by a [Keyer] so that servers can scope them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend resources.
	Close() error
}

// Default entry lifetimes. Debug views are cheap to redraw and expire
// sooner than layouts.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// NullCache misses on every lookup and drops every write.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
