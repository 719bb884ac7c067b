// Package cachemanager is a small generic cache layer over go-cache.
//
// It keeps compiled snippet sets keyed by a hash of their source, so that
// reloading an unchanged snippets file reuses the compiled regexes and Lua
// functions instead of building them again.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values under string-like keys with a time to live.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	Len() int
}
