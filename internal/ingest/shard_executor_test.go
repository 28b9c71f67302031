package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerKeyOrder(t *testing.T) {
	se := NewShardExecutor(Config{Shards: 4, QueueSize: 64})

	var mu sync.Mutex
	seen := map[string][]int{}

	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b", "c"} {
			i, key := i, key
			require.NoError(t, se.Submit(context.Background(), key, func(ctx context.Context) {
				mu.Lock()
				seen[key] = append(seen[key], i)
				mu.Unlock()
			}))
		}
	}
	se.Stop()

	for _, key := range []string{"a", "b", "c"} {
		require.Len(t, seen[key], 50, key)
		for i, v := range seen[key] {
			assert.Equal(t, i, v, key)
		}
	}
}

func TestSameKeySameShard(t *testing.T) {
	se := NewShardExecutor(Config{Shards: 16})
	defer se.Stop()

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("actor-%d", i)
		shard := se.shardFor(key)
		assert.Equal(t, shard, se.shardFor(key))
		assert.GreaterOrEqual(t, shard, 0)
		assert.Less(t, shard, 16)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	se := NewShardExecutor(Config{Shards: 1})
	se.Stop()
	se.Stop()

	err := se.Submit(context.Background(), "k", func(context.Context) {})
	assert.ErrorIs(t, err, ErrExecutorClosed)
}

func TestQueueFull(t *testing.T) {
	se := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, se.Submit(context.Background(), "k", func(context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, se.Submit(context.Background(), "k", func(context.Context) {}))

	err := se.Submit(context.Background(), "k", func(context.Context) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)

	var qf *QueueFullError
	require.True(t, errors.As(err, &qf))
	assert.Equal(t, 0, qf.Shard)
	assert.Equal(t, 1, qf.Capacity)

	close(release)
	se.Stop()
}

func TestSubmitContextCancelled(t *testing.T) {
	se := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, se.Submit(context.Background(), "k", func(context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, se.Submit(context.Background(), "k", func(context.Context) {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, se.Submit(ctx, "k", func(context.Context) {}), context.Canceled)

	close(release)
	se.Stop()
}

func TestPanicDoesNotKillShard(t *testing.T) {
	se := NewShardExecutor(Config{Shards: 1})

	var ran atomic.Int32
	require.NoError(t, se.Submit(context.Background(), "k", func(context.Context) {
		panic("boom")
	}))
	require.NoError(t, se.Submit(context.Background(), "k", func(context.Context) {
		ran.Add(1)
	}))
	se.Stop()

	assert.Equal(t, int32(1), ran.Load())
}

func TestStopDrainsAcceptedJobs(t *testing.T) {
	se := NewShardExecutor(Config{Shards: 2, QueueSize: 128})

	var ran atomic.Int32
	for i := 0; i < 100; i++ {
		require.NoError(t, se.Submit(context.Background(), fmt.Sprint(i), func(context.Context) {
			ran.Add(1)
		}))
	}
	se.Stop()
	assert.Equal(t, int32(100), ran.Load())
}

func TestSubmitRacingStopNeverLosesAcceptedJobs(t *testing.T) {
	for round := 0; round < 50; round++ {
		se := NewShardExecutor(Config{Shards: 4, QueueSize: 8, EnqueueTimeout: 50 * time.Millisecond})

		var accepted, ran atomic.Int32
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					err := se.Submit(context.Background(), fmt.Sprintf("%d-%d", g, i), func(context.Context) {
						ran.Add(1)
					})
					if err == nil {
						accepted.Add(1)
					}
				}
			}(g)
		}

		se.Stop()
		wg.Wait()
		assert.Equal(t, accepted.Load(), ran.Load(), "round %d", round)
	}
}
