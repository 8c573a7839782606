package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adwaidhmp/backend/app"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Job is one generation request. Ephemeral: it lives only in the in-process
// queue, duplicate enqueues are harmless because the orchestrator
// short-circuits on non-pending plans.
type Job struct {
	ID     uuid.UUID
	PlanID uuid.UUID
	Kind   string
}

// Runner executes one generation attempt. A returned error is treated as
// transient and retried; terminal outcomes (ready, failed, duplicate) must
// return nil.
type Runner interface {
	Run(ctx context.Context, planID uuid.UUID) error
}

// FailureMarker records the terminal failed state once retries run out, so
// no plan is left silently pending forever.
type FailureMarker interface {
	MarkFailed(ctx context.Context, planID uuid.UUID) error
}

type Queue struct {
	sync.RWMutex
	IsRunning bool

	runner Runner
	store  FailureMarker
	cfg    *app.WorkerConfig
	jobs   chan Job

	// Performance metrics (atomic counters)
	ProcessedCount int64
	RetriedCount   int64
	FailedCount    int64
	DroppedCount   int64

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

func NewQueue(runner Runner, store FailureMarker, cfg *app.WorkerConfig) *Queue {
	return &Queue{
		runner: runner,
		store:  store,
		cfg:    cfg,
		jobs:   make(chan Job, cfg.QueueSize),
	}
}

func (q *Queue) Start() error {
	q.Lock()
	defer q.Unlock()

	if q.IsRunning {
		return fmt.Errorf("worker queue is already running")
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.IsRunning = true
	atomic.StoreInt64(&q.ProcessedCount, 0)
	atomic.StoreInt64(&q.RetriedCount, 0)
	atomic.StoreInt64(&q.FailedCount, 0)
	atomic.StoreInt64(&q.DroppedCount, 0)

	for i := 0; i < q.cfg.WorkerCount; i++ {
		q.workers.Add(1)
		go q.worker(q.ctx, i)
	}

	logrus.WithField("workers", q.cfg.WorkerCount).Info("Generation worker queue started")
	return nil
}

// Enqueue hands a plan to the workers. Non-blocking: a full queue is an
// overload signal and the job is refused rather than blocking the caller.
func (q *Queue) Enqueue(planID uuid.UUID, kind string) error {
	q.RLock()
	running := q.IsRunning
	q.RUnlock()
	if !running {
		return fmt.Errorf("worker queue is not running")
	}

	job := Job{ID: uuid.New(), PlanID: planID, Kind: kind}
	select {
	case q.jobs <- job:
		return nil
	default:
		atomic.AddInt64(&q.DroppedCount, 1)
		logrus.WithField("plan_id", planID).Warn("Job queue full, dropping job")
		return fmt.Errorf("job queue full")
	}
}

func (q *Queue) worker(ctx context.Context, workerID int) {
	defer q.workers.Done()
	for {
		select {
		case <-ctx.Done():
			logrus.WithField("worker_id", workerID).Debug("Generation worker stopped")
			return
		case job := <-q.jobs:
			q.execute(ctx, job)
		}
	}
}

// execute retries transient failures with exponential backoff up to the
// attempt ceiling, then records the failed state as a last resort.
func (q *Queue) execute(ctx context.Context, job Job) {
	log := logrus.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"plan_id": job.PlanID,
		"kind":    job.Kind,
	})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = q.cfg.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.1
	bo.MaxElapsedTime = 0

	var retries uint64
	if q.cfg.MaxAttempts > 1 {
		retries = uint64(q.cfg.MaxAttempts - 1)
	}

	attempt := 0
	operation := func() error {
		attempt++
		return q.runner.Run(ctx, job.PlanID)
	}
	notify := func(err error, wait time.Duration) {
		atomic.AddInt64(&q.RetriedCount, 1)
		log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": wait.String(),
		}).Warn("Generation attempt failed, retrying")
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx), notify)
	if err == nil {
		atomic.AddInt64(&q.ProcessedCount, 1)
		return
	}

	if ctx.Err() != nil {
		// shutdown interrupted the retries: leave the plan pending for
		// another instance instead of failing it
		log.Warn("Generation interrupted by shutdown, leaving plan pending")
		return
	}

	atomic.AddInt64(&q.FailedCount, 1)
	log.WithError(err).WithField("attempts", attempt).Error("Generation retries exhausted, marking plan failed")

	ctx, cancel := context.WithTimeout(context.Background(), app.DBTimeout)
	defer cancel()
	if err := q.store.MarkFailed(ctx, job.PlanID); err != nil {
		log.WithError(err).Error("Failed to mark plan failed after retry exhaustion")
	}
}

func (q *Queue) Stop() {
	q.Lock()
	if !q.IsRunning {
		q.Unlock()
		return
	}
	cancel := q.cancel
	q.IsRunning = false
	q.ctx = nil
	q.cancel = nil
	q.Unlock()

	logrus.Info("Stopping generation worker queue...")
	cancel()
	q.workers.Wait()
	logrus.Info("Generation worker queue stopped")
}

func (q *Queue) GetMetrics() map[string]interface{} {
	q.RLock()
	running := q.IsRunning
	q.RUnlock()

	return map[string]interface{}{
		"is_running":      running,
		"queued":          len(q.jobs),
		"processed_count": atomic.LoadInt64(&q.ProcessedCount),
		"retried_count":   atomic.LoadInt64(&q.RetriedCount),
		"failed_count":    atomic.LoadInt64(&q.FailedCount),
		"dropped_count":   atomic.LoadInt64(&q.DroppedCount),
	}
}
