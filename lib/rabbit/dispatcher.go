package rabbit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adwaidhmp/backend/internal/event"

	"github.com/sirupsen/logrus"
)

const (
	DISPATCH_BUFFER  = 1000
	DISPATCH_WORKERS = 2
)

type publishTask struct {
	routingKey string
	env        event.Envelope
}

// Dispatcher hands publishes to a bounded worker pool so callers (HTTP
// handlers mostly) never block on broker I/O or the publisher's retry
// budget.
type Dispatcher struct {
	sync.RWMutex
	IsRunning bool

	publish func(routingKey string, env event.Envelope) error
	tasks   chan publishTask

	// Performance metrics (atomic counters)
	StartTime      time.Time
	PublishedCount int64
	ErrorCount     int64
	DroppedCount   int64
	LastError      string
	errMu          sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup

	workerCount int
}

func NewDispatcher(pub *Publisher) *Dispatcher {
	return &Dispatcher{
		publish:     pub.Publish,
		tasks:       make(chan publishTask, DISPATCH_BUFFER),
		workerCount: DISPATCH_WORKERS,
	}
}

func (d *Dispatcher) Start() error {
	d.Lock()
	defer d.Unlock()

	if d.IsRunning {
		return fmt.Errorf("dispatcher is already running")
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.IsRunning = true
	d.StartTime = time.Now()
	atomic.StoreInt64(&d.PublishedCount, 0)
	atomic.StoreInt64(&d.ErrorCount, 0)
	atomic.StoreInt64(&d.DroppedCount, 0)

	for i := 0; i < d.workerCount; i++ {
		d.workers.Add(1)
		go d.worker(i)
	}

	logrus.Info("Event dispatcher started")
	return nil
}

func (d *Dispatcher) worker(workerID int) {
	defer d.workers.Done()
	for {
		select {
		case <-d.ctx.Done():
			logrus.WithField("worker_id", workerID).Debug("Dispatch worker stopped")
			return
		case t := <-d.tasks:
			if err := d.publish(t.routingKey, t.env); err != nil {
				atomic.AddInt64(&d.ErrorCount, 1)
				d.setLastError(err.Error())
				continue
			}
			atomic.AddInt64(&d.PublishedCount, 1)
		}
	}
}

// Publish enqueues an envelope for background publishing. It never blocks:
// a full buffer means the system is overloaded and the event is dropped and
// counted rather than stalling the caller.
func (d *Dispatcher) Publish(routingKey string, env event.Envelope) error {
	d.RLock()
	running := d.IsRunning
	d.RUnlock()
	if !running {
		return fmt.Errorf("dispatcher is not running")
	}

	select {
	case d.tasks <- publishTask{routingKey: routingKey, env: env}:
		return nil
	default:
		atomic.AddInt64(&d.DroppedCount, 1)
		logrus.WithField("routing_key", routingKey).Warn("Dispatch buffer full, dropping event")
		return fmt.Errorf("dispatch buffer full, event dropped")
	}
}

func (d *Dispatcher) setLastError(errMsg string) {
	d.errMu.Lock()
	d.LastError = errMsg
	d.errMu.Unlock()
}

func (d *Dispatcher) Stop() {
	d.Lock()
	if !d.IsRunning {
		d.Unlock()
		return
	}
	cancel := d.cancel
	d.IsRunning = false
	d.ctx = nil
	d.cancel = nil
	d.Unlock()

	logrus.Info("Stopping event dispatcher...")
	cancel()
	d.workers.Wait()
	logrus.Info("Event dispatcher stopped")
}

func (d *Dispatcher) GetMetrics() map[string]interface{} {
	d.RLock()
	running := d.IsRunning
	started := d.StartTime
	d.RUnlock()

	d.errMu.Lock()
	lastErr := d.LastError
	d.errMu.Unlock()

	return map[string]interface{}{
		"is_running":      running,
		"queued":          len(d.tasks),
		"published_count": atomic.LoadInt64(&d.PublishedCount),
		"error_count":     atomic.LoadInt64(&d.ErrorCount),
		"dropped_count":   atomic.LoadInt64(&d.DroppedCount),
		"last_error":      lastErr,
		"uptime_seconds":  time.Since(started).Seconds(),
	}
}
