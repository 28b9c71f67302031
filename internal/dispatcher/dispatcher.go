// Package dispatcher executes anti-raid side effects off the detection path.
//
// The controller commits its counters and hands actions here; the dispatcher
// queues them, retries with exponential backoff and logs what fails. Nothing
// flows back to the caller once a job is accepted.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-antiraid/internal/logging"
	"go-antiraid/internal/models"
)

type Config struct {
	Workers      int
	JobQueueSize int
	Retry        RetryPolicy
}

type Dispatcher struct {
	jobQueue *JobQueue
	workers  []*RESTWorker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func New(cfg Config, sanctioner Sanctioner, messenger Messenger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 4
	}
	if cfg.Retry.InitialInterval <= 0 {
		cfg.Retry.InitialInterval = 250 * time.Millisecond
	}
	if cfg.Retry.MaxInterval <= 0 {
		cfg.Retry.MaxInterval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		jobQueue: NewJobQueue(cfg.JobQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.workers = append(d.workers, NewRESTWorker(i, d.jobQueue, sanctioner, messenger, cfg.Retry))
	}
	return d
}

func (d *Dispatcher) Start() {
	for _, w := range d.workers {
		d.wg.Add(1)
		go func(w *RESTWorker) {
			defer d.wg.Done()
			w.Run(d.ctx)
		}(w)
	}
	logging.Info("Dispatcher started with %d workers", len(d.workers))
}

// Stop refuses new jobs and waits for queued ones. When ctx ends first,
// in-flight retries are cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.once.Do(d.jobQueue.Close)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) Pending() int {
	return d.jobQueue.Len()
}

func (d *Dispatcher) Warn(ctx context.Context, action *models.WarningAction) error {
	return d.enqueue(&Job{Type: JobTypeWarn, Warning: action})
}

func (d *Dispatcher) Sanction(ctx context.Context, action *models.SanctionAction, disclosure *models.DisclosureRecord) error {
	if disclosure != nil {
		assignCaseID(disclosure)
	}
	return d.enqueue(&Job{Type: JobTypeSanction, Sanction: action, Disclosure: disclosure})
}

func (d *Dispatcher) Disclose(ctx context.Context, record *models.DisclosureRecord) error {
	assignCaseID(record)
	return d.enqueue(&Job{Type: JobTypeDisclose, Disclosure: record})
}

func (d *Dispatcher) enqueue(job *Job) error {
	job.EnqueuedAt = time.Now()
	if err := d.jobQueue.Enqueue(job); err != nil {
		logging.Error("Dropped %s job for guild %s: %v", job.Type, job.GuildID(), err)
		return err
	}
	return nil
}

func assignCaseID(record *models.DisclosureRecord) {
	if record.CaseID == "" {
		record.CaseID = uuid.NewString()
	}
}
