package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() *Limiter {
	return NewLimiter(NewStore(100, time.Minute))
}

func TestLimiter_Check_ExhaustsQuota(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 5}

	for i := 0; i < 5; i++ {
		d := limiter.Check("client-1", cfg)
		require.False(t, d.Limited, "request %d should be allowed", i+1)
		assert.Equal(t, 5-i, d.Remaining)
	}

	d := limiter.Check("client-1", cfg)
	assert.True(t, d.Limited)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 5, d.Limit)
}

func TestLimiter_Check_WindowSlides(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: 100 * time.Millisecond, MaxRequests: 2}

	require.False(t, limiter.Check("client-1", cfg).Limited)
	require.False(t, limiter.Check("client-1", cfg).Limited)
	require.True(t, limiter.Check("client-1", cfg).Limited)

	time.Sleep(120 * time.Millisecond)

	d := limiter.Check("client-1", cfg)
	assert.False(t, d.Limited, "quota should recover once the window has passed")
}

func TestLimiter_Check_DistinctIdentifiers(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 3}

	for i := 0; i < 3; i++ {
		require.False(t, limiter.Check("client-a", cfg).Limited)
	}
	require.True(t, limiter.Check("client-a", cfg).Limited)

	d := limiter.Check("client-b", cfg)
	assert.False(t, d.Limited)
	assert.Equal(t, 3, d.Remaining, "client-b must not share client-a's quota")
}

func TestLimiter_Check_RejectedNotCounted(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: 150 * time.Millisecond, MaxRequests: 1}

	require.False(t, limiter.Check("client-1", cfg).Limited)

	time.Sleep(100 * time.Millisecond)
	require.True(t, limiter.Check("client-1", cfg).Limited)
	require.True(t, limiter.Check("client-1", cfg).Limited)

	// Only the accepted request occupies the window. Had the rejected calls
	// been appended, the client would still be limited here.
	time.Sleep(100 * time.Millisecond)
	assert.False(t, limiter.Check("client-1", cfg).Limited)
}

func TestLimiter_Check_RemainingBounds(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 3}

	want := []int{3, 2, 1}
	for i, expected := range want {
		d := limiter.Check("client-1", cfg)
		require.False(t, d.Limited, "request %d", i+1)
		assert.Equal(t, expected, d.Remaining)
		assert.GreaterOrEqual(t, d.Remaining, 0)
		assert.LessOrEqual(t, d.Remaining, cfg.MaxRequests)
	}

	for i := 0; i < 3; i++ {
		d := limiter.Check("client-1", cfg)
		assert.True(t, d.Limited)
		assert.Equal(t, 0, d.Remaining)
	}
}

func TestLimiter_Check_ResetAt(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 1}

	before := time.Now()
	d := limiter.Check("client-1", cfg)

	assert.WithinDuration(t, before.Add(cfg.Window), d.ResetAt, 100*time.Millisecond)
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewLimiter(NewStore(100, time.Minute))
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 10}

	var accepted int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !limiter.Check("shared-client", cfg).Limited {
				atomic.AddInt64(&accepted, 1)
			}
		}()
	}
	wg.Wait()

	// The read-trim-append round trip may overshoot slightly under
	// contention, but never under-admits and never loses the key.
	assert.GreaterOrEqual(t, accepted, int64(10))
	assert.LessOrEqual(t, accepted, int64(50))
	assert.Equal(t, 1, limiter.TrackedClients())
}

func TestLimiter_ConcurrentDistinctIdentifiers(t *testing.T) {
	limiter := NewLimiter(NewStore(100, time.Minute))
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 2}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("client-%d", n)
			assert.False(t, limiter.Check(id, cfg).Limited)
			assert.False(t, limiter.Check(id, cfg).Limited)
			assert.True(t, limiter.Check(id, cfg).Limited)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, limiter.TrackedClients())
}

func TestLimiter_Recent(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 10}

	assert.Nil(t, limiter.Recent("client-1"))

	limiter.Check("client-1", cfg)
	limiter.Check("client-1", cfg)
	limiter.Check("client-1", cfg)

	recent := limiter.Recent("client-1")
	require.Len(t, recent, 3)
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].Before(recent[i-1]), "timestamps should be ordered oldest first")
	}
}

func TestLimiter_Flush(t *testing.T) {
	limiter := newTestLimiter()
	cfg := Config{Name: "test", Window: time.Minute, MaxRequests: 1}

	require.False(t, limiter.Check("client-1", cfg).Limited)
	require.True(t, limiter.Check("client-1", cfg).Limited)

	limiter.Flush()

	assert.Equal(t, 0, limiter.TrackedClients())
	assert.False(t, limiter.Check("client-1", cfg).Limited)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Auth.Validate())
	assert.NoError(t, Upload.Validate())
	assert.NoError(t, Delete.Validate())
	assert.NoError(t, General.Validate())
	assert.NoError(t, Test.Validate())

	assert.Error(t, Config{Name: "bad", Window: 0, MaxRequests: 5}.Validate())
	assert.Error(t, Config{Name: "bad", Window: time.Minute, MaxRequests: 0}.Validate())
}

func TestPresets(t *testing.T) {
	presets := Presets()
	require.Len(t, presets, 5)

	byName := make(map[string]Config, len(presets))
	for _, p := range presets {
		byName[p.Name] = p
	}

	assert.Equal(t, 5, byName["auth"].MaxRequests)
	assert.Equal(t, 10, byName["upload"].MaxRequests)
	assert.Equal(t, 20, byName["delete"].MaxRequests)
	assert.Equal(t, 100, byName["general"].MaxRequests)
	assert.Equal(t, 50, byName["test"].MaxRequests)
	for _, p := range presets {
		assert.Equal(t, time.Minute, p.Window)
	}
}
