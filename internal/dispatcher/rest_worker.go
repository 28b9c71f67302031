package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
	"go-antiraid/internal/models"
)

// Sanctioner applies a timeout to a member.
type Sanctioner interface {
	ApplyTimeout(ctx context.Context, action *models.SanctionAction) error
}

// Messenger delivers the chat-facing side of a decision.
type Messenger interface {
	SendWarning(ctx context.Context, action *models.WarningAction) error
	SendDisclosure(ctx context.Context, record *models.DisclosureRecord) error
}

type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (rp RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = rp.InitialInterval
	exp.MaxInterval = rp.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := rp.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

type RESTWorker struct {
	workerID   int
	jobQueue   *JobQueue
	sanctioner Sanctioner
	messenger  Messenger
	retry      RetryPolicy
}

func NewRESTWorker(workerID int, jobQueue *JobQueue, sanctioner Sanctioner, messenger Messenger, retry RetryPolicy) *RESTWorker {
	return &RESTWorker{
		workerID:   workerID,
		jobQueue:   jobQueue,
		sanctioner: sanctioner,
		messenger:  messenger,
		retry:      retry,
	}
}

// Run executes jobs until the queue is closed and drained.
func (rw *RESTWorker) Run(ctx context.Context) {
	for job := range rw.jobQueue.Jobs() {
		rw.executeJob(ctx, job)
	}
}

func (rw *RESTWorker) executeJob(ctx context.Context, job *Job) {
	switch job.Type {
	case JobTypeWarn:
		rw.attempt(ctx, JobTypeWarn, job.Warning.ActorID, func() error {
			return rw.messenger.SendWarning(ctx, job.Warning)
		})

	case JobTypeSanction:
		err := rw.attempt(ctx, JobTypeSanction, job.Sanction.ActorID, func() error {
			return rw.sanctioner.ApplyTimeout(ctx, job.Sanction)
		})
		if err != nil || job.Disclosure == nil {
			return
		}
		rw.disclose(ctx, job.Disclosure)

	case JobTypeDisclose:
		rw.disclose(ctx, job.Disclosure)
	}
}

func (rw *RESTWorker) disclose(ctx context.Context, record *models.DisclosureRecord) {
	rw.attempt(ctx, JobTypeDisclose, record.ActorID, func() error {
		return rw.messenger.SendDisclosure(ctx, record)
	})
}

// attempt runs op under the retry policy. Errors that cannot succeed on a
// retry stop the loop at once.
func (rw *RESTWorker) attempt(ctx context.Context, jobType JobType, actorID string, op func() error) error {
	label := jobType.String()
	start := time.Now()

	err := backoff.RetryNotify(func() error {
		err := op()
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, rw.retry.backOff(ctx), func(err error, wait time.Duration) {
		logging.Debug("Worker %d retrying %s for %s in %s: %v", rw.workerID, label, actorID, wait, err)
	})

	metrics.ActionDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ActionsCompleted.WithLabelValues(label, "failed").Inc()
		logging.Error("[DISPATCH FAILED] %s for %s: %v", label, actorID, err)
		return err
	}
	metrics.ActionsCompleted.WithLabelValues(label, "ok").Inc()
	return nil
}

func isPermanent(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Permanent()
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
