package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst is available at once", burst: 3, calls: 3, wantPass: 3},
		{name: "calls past the burst are refused", burst: 2, calls: 5, wantPass: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(1, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("import") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	require.True(t, rl.Allow("127.0.0.1"))
	assert.False(t, rl.Allow("127.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestKeyedRateLimiter_WaitPaces(t *testing.T) {
	rl := New(10, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "inbox"))
	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "inbox"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestKeyedRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	rl.Allow("inbox")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "inbox"))
}

func TestKeyedRateLimiter_SweepEvictsIdleKeys(t *testing.T) {
	var mu sync.Mutex
	clock := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	rl := newLimiter(1, 1, time.Hour, now)
	defer rl.Stop()

	rl.Allow("old")
	mu.Lock()
	clock = clock.Add(45 * time.Minute)
	mu.Unlock()
	rl.Allow("fresh")

	mu.Lock()
	clock = clock.Add(30 * time.Minute)
	mu.Unlock()
	rl.sweep()

	assert.Equal(t, 1, rl.Len())
	assert.True(t, rl.Allow("old"), "evicted key starts with a full bucket")
}
