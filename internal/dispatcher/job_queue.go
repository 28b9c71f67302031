package dispatcher

import (
	"errors"
	"sync"
	"time"

	"go-antiraid/internal/models"
)

var (
	ErrDispatcherClosed = errors.New("dispatcher: closed")
	ErrJobQueueFull     = errors.New("dispatcher: job queue full")
)

type JobType uint8

const (
	JobTypeWarn JobType = iota
	JobTypeSanction
	JobTypeDisclose
)

func (jt JobType) String() string {
	switch jt {
	case JobTypeWarn:
		return "warn"
	case JobTypeSanction:
		return "sanction"
	case JobTypeDisclose:
		return "disclose"
	default:
		return "unknown"
	}
}

// Job is one side effect. Exactly one payload matches Type; a sanction job may
// also carry the disclosure to publish once the timeout is applied.
type Job struct {
	Type       JobType
	Warning    *models.WarningAction
	Sanction   *models.SanctionAction
	Disclosure *models.DisclosureRecord
	EnqueuedAt time.Time
}

func (j *Job) GuildID() string {
	switch {
	case j.Warning != nil:
		return j.Warning.GuildID
	case j.Sanction != nil:
		return j.Sanction.GuildID
	case j.Disclosure != nil:
		return j.Disclosure.GuildID
	}
	return ""
}

// JobQueue is a bounded FIFO. Enqueue never blocks.
type JobQueue struct {
	mu     sync.RWMutex
	jobs   chan *Job
	closed bool
}

func NewJobQueue(size int) *JobQueue {
	if size <= 0 {
		size = 1024
	}
	return &JobQueue{jobs: make(chan *Job, size)}
}

func (jq *JobQueue) Enqueue(job *Job) error {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	if jq.closed {
		return ErrDispatcherClosed
	}
	select {
	case jq.jobs <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Jobs is closed once Close has been called and the queue is empty.
func (jq *JobQueue) Jobs() <-chan *Job {
	return jq.jobs
}

func (jq *JobQueue) Close() {
	jq.mu.Lock()
	defer jq.mu.Unlock()
	if jq.closed {
		return
	}
	jq.closed = true
	close(jq.jobs)
}

func (jq *JobQueue) Len() int {
	return len(jq.jobs)
}
