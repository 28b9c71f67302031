package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrExecutorClosed = errors.New("ingest: executor closed")
	ErrQueueFull      = errors.New("ingest: shard queue full")
)

// QueueFullError carries the state of the shard that rejected a job.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("ingest: shard %d queue full (%d/%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Unwrap() error {
	return ErrQueueFull
}
