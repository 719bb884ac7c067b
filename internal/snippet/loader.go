package snippet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/superle3/snippet-leaf/internal/cachemanager"
	"github.com/superle3/snippet-leaf/internal/log"
)

// CacheTTL is how long an unused compiled set stays cached.
const CacheTTL = 30 * time.Minute

// Source is everything a compiled set depends on.
type Source struct {
	Data      []byte
	Format    Format
	Variables Variables
	// Version applies to snippets without an explicit version.
	Version int
}

// Key hashes the source.
func (s Source) Key() string {
	h := sha256.New()
	h.Write([]byte(s.Format))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(s.Version)))
	h.Write([]byte{0})
	for _, k := range slices.Sorted(maps.Keys(s.Variables)) {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(s.Variables[k]))
		h.Write([]byte{0})
	}
	h.Write(s.Data)
	return hex.EncodeToString(h.Sum(nil))
}

// Loaded is a compiled set together with the definition errors found while
// compiling it.
type Loaded struct {
	Set *Set
	Err error
}

// Loader compiles snippet sources, reusing earlier results for identical
// sources.
type Loader struct {
	cache *cachemanager.ReadThroughCache[string, *Loaded, Source]
}

// NewLoader creates a loader backed by cache.
func NewLoader(cache cachemanager.CacheManager[string, *Loaded]) *Loader {
	return &Loader{
		cache: cachemanager.NewReadThroughCache(cache, compileSource, false),
	}
}

// NewMemoryLoader creates a loader with an in-memory cache. Sets dropped
// from the cache are released once their callers have closed them.
func NewMemoryLoader() *Loader {
	cache := cachemanager.NewInMemoryCacheManager[string, *Loaded](
		"snippet-sets", CacheTTL, cachemanager.DefaultCleanupInterval)
	cache.OnEvicted(releaseLoaded)
	return NewLoader(cache)
}

// releaseLoaded drops the reference the cache holds on an evicted set.
func releaseLoaded(key string, l *Loaded) {
	log.Debug(log.CatCache, "releasing evicted snippet set", "key", key)
	l.Set.Close()
}

func compileSource(_ context.Context, src Source) (*Loaded, error) {
	raws, err := ParseSource(src.Data, src.Format)
	if err != nil {
		return nil, err
	}
	set, defErr := ParseAll(raws, src.Variables, src.Version)
	log.Info(log.CatSnippet, "compiled snippets", "count", set.Len(), "format", src.Format)
	return &Loaded{Set: set, Err: defErr}, nil
}

// Load returns the compiled set for src. A source that fails to decode is
// returned as an error; per-snippet problems are in Loaded.Err.
//
// The returned set carries a reference for the caller, who must Close it
// when done. The cache holds a reference of its own.
func (l *Loader) Load(ctx context.Context, src Source) (*Loaded, error) {
	loaded, err := l.cache.GetWithRefresh(ctx, src.Key(), src, CacheTTL)
	if err != nil {
		return nil, err
	}
	if loaded.Set.Retain() {
		return loaded, nil
	}

	// Evicted and released between the lookup and Retain.
	return compileSource(ctx, src)
}

// Stats returns the cache hits and misses of the loader.
func (l *Loader) Stats() (hits, misses int64) {
	return l.cache.Stats()
}
