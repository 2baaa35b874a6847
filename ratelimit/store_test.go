package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	store := NewStore(10, time.Minute)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Put("key", []int64{1, 2, 3})
	got, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(10, time.Minute)
	store.Put("key", []int64{1, 2})

	first, ok := store.Get("key")
	require.True(t, ok)
	first[0] = 99

	second, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, int64(1), second[0], "mutating a returned slice must not touch the stored entry")
}

func TestStore_LRUEviction(t *testing.T) {
	store := NewStore(2, time.Minute)

	store.Put("a", []int64{1})
	store.Put("b", []int64{2})

	// Touch a so b becomes the least recently used.
	_, ok := store.Get("a")
	require.True(t, ok)

	store.Put("c", []int64{3})

	_, ok = store.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = store.Get("a")
	assert.True(t, ok)
	_, ok = store.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestStore_TTLExpiry(t *testing.T) {
	store := NewStore(10, 50*time.Millisecond)

	store.Put("key", []int64{1})
	time.Sleep(80 * time.Millisecond)

	_, ok := store.Get("key")
	assert.False(t, ok, "idle-expired entry must be treated as absent")
	assert.Equal(t, 0, store.Len(), "expired entry is dropped on lookup")
}

func TestStore_AccessRefreshesTTL(t *testing.T) {
	store := NewStore(10, 80*time.Millisecond)

	store.Put("key", []int64{1})
	time.Sleep(50 * time.Millisecond)

	_, ok := store.Get("key")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok = store.Get("key")
	assert.True(t, ok, "the idle TTL should restart on access")
}

func TestStore_PeekDoesNotPromote(t *testing.T) {
	store := NewStore(2, time.Minute)

	store.Put("a", []int64{1})
	store.Put("b", []int64{2})

	got, ok := store.Peek("a")
	require.True(t, ok)
	assert.Equal(t, []int64{1}, got)

	// a stays least recently used despite the peek.
	store.Put("c", []int64{3})

	_, ok = store.Get("a")
	assert.False(t, ok, "a should have been evicted")
	_, ok = store.Get("b")
	assert.True(t, ok)
}

func TestStore_PruneExpired(t *testing.T) {
	store := NewStore(10, 40*time.Millisecond)

	store.Put("x", []int64{1})
	store.Put("y", []int64{2})
	time.Sleep(60 * time.Millisecond)
	store.Put("z", []int64{3})

	pruned := store.PruneExpired()
	assert.Equal(t, 2, pruned)
	assert.Equal(t, 1, store.Len())

	_, ok := store.Get("z")
	assert.True(t, ok)
}

func TestStore_Flush(t *testing.T) {
	store := NewStore(10, time.Minute)

	store.Put("a", []int64{1})
	store.Put("b", []int64{2})
	store.Flush()

	assert.Equal(t, 0, store.Len())
	_, ok := store.Get("a")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(10, time.Minute)

	store.Put("a", []int64{1})
	store.Delete("a")
	store.Delete("never-existed")

	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Defaults(t *testing.T) {
	store := NewStore(0, 0)

	assert.Equal(t, DefaultMaxEntries, store.maxEntries)
	assert.Equal(t, DefaultTTL, store.ttl)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(50, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("key-%d", (n+j)%60)
				store.Put(key, []int64{int64(j)})
				store.Get(key)
				store.Peek(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 50, "capacity bound must hold under concurrency")
}
