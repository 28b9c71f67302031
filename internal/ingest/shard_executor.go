// Package ingest serializes gateway events per actor before they reach the
// anti-raid controller. Events for the same key run in arrival order on one
// shard; different keys may run in parallel.
package ingest

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
)

// Job is one unit of work bound to a key.
type Job func(ctx context.Context)

type queuedJob struct {
	ctx context.Context
	job Job
}

type Config struct {
	Shards         int
	QueueSize      int
	EnqueueTimeout time.Duration
}

type ShardExecutor struct {
	cfg    Config
	queues []chan queuedJob
	labels []string

	// mu is held for reading while a job is handed to a shard, so Stop cannot
	// close done between the closed check and the send.
	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	wg sync.WaitGroup
}

func NewShardExecutor(cfg Config) *ShardExecutor {
	if cfg.Shards <= 0 {
		cfg.Shards = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}

	se := &ShardExecutor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		labels: make([]string, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		se.queues[i] = ch
		se.labels[i] = strconv.Itoa(i)
		se.wg.Add(1)
		go se.runWorker(i, ch)
	}
	return se
}

// Submit enqueues job on the shard owning key. It returns ErrExecutorClosed
// after Stop, a *QueueFullError if the shard stays full for EnqueueTimeout,
// or ctx.Err() if ctx ends first. An accepted job always runs, even when Stop
// is called concurrently.
func (se *ShardExecutor) Submit(ctx context.Context, key string, job Job) error {
	se.mu.RLock()
	defer se.mu.RUnlock()

	if se.closed {
		return ErrExecutorClosed
	}

	shard := se.shardFor(key)
	ch := se.queues[shard]

	timer := time.NewTimer(se.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		metrics.IngestSubmissions.WithLabelValues(se.labels[shard]).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		metrics.IngestQueueFull.WithLabelValues(se.labels[shard]).Inc()
		return &QueueFullError{
			Shard:    shard,
			Length:   len(ch),
			Capacity: cap(ch),
		}
	}
}

// Stop lets every shard drain what it already accepted, then waits for the
// workers. Pending Submit calls finish first. Safe to call more than once.
func (se *ShardExecutor) Stop() {
	se.mu.Lock()
	if se.closed {
		se.mu.Unlock()
		return
	}
	se.closed = true
	close(se.done)
	se.mu.Unlock()

	logging.Info("Stopping ingest executor, draining %d shards", se.cfg.Shards)
	se.wg.Wait()
	logging.Info("Ingest executor stopped")
}

func (se *ShardExecutor) Shards() int {
	return se.cfg.Shards
}

func (se *ShardExecutor) runWorker(idx int, ch <-chan queuedJob) {
	defer se.wg.Done()
	label := se.labels[idx]

	for {
		select {
		case qj := <-ch:
			se.run(idx, qj)
			metrics.IngestQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-se.done:
			drained := 0
			for {
				select {
				case qj := <-ch:
					se.run(idx, qj)
					drained++
				default:
					if drained > 0 {
						logging.Debug("Ingest shard %d drained %d jobs", idx, drained)
					}
					metrics.IngestQueueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

// run executes one job. A panic is logged and the shard keeps going.
func (se *ShardExecutor) run(idx int, qj queuedJob) {
	if qj.job == nil {
		return
	}
	if err := qj.ctx.Err(); err != nil {
		logging.Debug("Ingest shard %d skipped job: %v", idx, err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Ingest shard %d job panic: %v", idx, r)
		}
	}()

	start := time.Now()
	qj.job(qj.ctx)
	metrics.IngestRunDuration.WithLabelValues(se.labels[idx]).Observe(time.Since(start).Seconds())
}

func (se *ShardExecutor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(se.cfg.Shards))
}
