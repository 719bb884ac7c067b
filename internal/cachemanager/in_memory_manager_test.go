package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type compiledSet struct {
	Hash  string
	Count int
}

func newSetCache() *InMemoryCacheManager[string, compiledSet] {
	return NewInMemoryCacheManager[string, compiledSet]("snippet-sets", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := newSetCache()
	want := compiledSet{Hash: "abc", Count: 3}
	cache.Set(context.Background(), "abc", want, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "abc")
	require.True(t, ok)
	require.Equal(t, want, got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := newSetCache()

	got, ok := cache.Get(context.Background(), "abc")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWrongType(t *testing.T) {
	cache := newSetCache()
	cache.cache.Set("abc", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "abc")
	require.False(t, ok)
	require.Empty(t, got)
}

type hashKey string

func TestInMemoryCacheManager_NamedKeyType(t *testing.T) {
	cache := NewInMemoryCacheManager[hashKey, string]("named", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), hashKey("k"), "v", DefaultExpiration)

	got, ok := cache.Get(context.Background(), "k")
	require.True(t, ok)
	require.Equal(t, "v", got)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := newSetCache()

	_, ok := cache.GetWithRefresh(context.Background(), "abc", time.Hour)
	require.False(t, ok)

	cache.Set(context.Background(), "abc", compiledSet{Hash: "abc"}, 50*time.Millisecond)
	got, ok := cache.GetWithRefresh(context.Background(), "abc", time.Hour)
	require.True(t, ok)
	require.Equal(t, "abc", got.Hash)

	time.Sleep(100 * time.Millisecond)
	_, ok = cache.Get(context.Background(), "abc")
	require.True(t, ok, "refresh extends the ttl")
}

func TestInMemoryCacheManager_Expires(t *testing.T) {
	cache := newSetCache()
	cache.Set(context.Background(), "abc", compiledSet{}, time.Millisecond)

	time.Sleep(5 * time.Millisecond)
	_, ok := cache.Get(context.Background(), "abc")
	require.False(t, ok)
}

func TestInMemoryCacheManager_Delete(t *testing.T) {
	cache := newSetCache()
	require.NoError(t, cache.Delete(context.Background()))

	cache.Set(context.Background(), "a", compiledSet{}, DefaultExpiration)
	cache.Set(context.Background(), "b", compiledSet{}, DefaultExpiration)
	require.NoError(t, cache.Delete(context.Background(), "a"))

	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	_, ok = cache.Get(context.Background(), "b")
	require.True(t, ok)
}

func TestInMemoryCacheManager_OnEvicted(t *testing.T) {
	cache := newSetCache()
	var evicted []string
	cache.OnEvicted(func(key string, value compiledSet) {
		evicted = append(evicted, key+":"+value.Hash)
	})

	cache.Set(context.Background(), "a", compiledSet{Hash: "h1"}, DefaultExpiration)
	cache.Set(context.Background(), "a", compiledSet{Hash: "h2"}, DefaultExpiration)
	require.Empty(t, evicted, "replacing a value is not an eviction")

	require.NoError(t, cache.Delete(context.Background(), "a"))
	require.Equal(t, []string{"a:h2"}, evicted)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := newSetCache()
	cache.Set(context.Background(), "a", compiledSet{}, DefaultExpiration)

	require.NoError(t, cache.Flush(context.Background()))

	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	require.Zero(t, cache.Len())
}
