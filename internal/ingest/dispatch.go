package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWorkers   = 16
	defaultQueueSize = 256
	statsInterval    = 60 * time.Second
)

// Dispatcher runs handler jobs on a fixed pool of workers behind a bounded
// queue. When the queue is full, Enqueue blocks the producer (the MQTT
// receive path) instead of dropping messages; the broker's in-flight window
// provides the upstream backpressure.
type Dispatcher struct {
	logger *zap.Logger
	jobs   chan func(context.Context)
	fatal  chan error

	workers   int
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool

	depth     atomic.Int64
	processed atomic.Int64
}

func NewDispatcher(workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		logger:  logger,
		jobs:    make(chan func(context.Context), queueSize),
		fatal:   make(chan error, 1),
		workers: workers,
	}
}

// Start launches the workers and the periodic stats loop. Workers run until
// Drain closes the queue; ctx bounds only the stats loop. Jobs get a context
// detached from ctx's cancellation: a shutdown signal must not abort handler
// transactions mid-flight, Drain's deadline bounds them instead.
func (d *Dispatcher) Start(ctx context.Context) {
	jobCtx := context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(jobCtx, i)
	}
	go d.statsLoop(ctx)
	d.logger.Info("dispatch pool started", zap.Int("workers", d.workers), zap.Int("queue_size", cap(d.jobs)))
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for job := range d.jobs {
		d.runJob(ctx, id, job)
	}
}

func (d *Dispatcher) runJob(ctx context.Context, id int, job func(context.Context)) {
	defer func() {
		d.depth.Add(-1)
		d.processed.Add(1)
		if r := recover(); r != nil {
			err := fmt.Errorf("worker %d panic: %v", id, r)
			d.logger.Error("handler panicked", zap.Int("worker", id), zap.Any("panic", r))
			select {
			case d.fatal <- err:
			default:
			}
		}
	}()
	job(ctx)
}

// Enqueue submits a job, blocking while the queue is full. Jobs submitted
// after Drain has begun are dropped with a warning.
func (d *Dispatcher) Enqueue(job func(context.Context)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("job rejected: dispatcher draining")
		return
	}
	d.depth.Add(1)
	d.jobs <- job
}

// Drain closes the queue and waits for in-flight jobs, up to timeout.
// It reports whether the pool emptied before the deadline.
func (d *Dispatcher) Drain(timeout time.Duration) bool {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.jobs)
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("dispatch pool drained", zap.Int64("processed", d.processed.Load()))
		return true
	case <-time.After(timeout):
		d.logger.Warn("drain deadline exceeded",
			zap.Duration("timeout", timeout),
			zap.Int64("pending", d.depth.Load()),
		)
		return false
	}
}

// Fatal delivers the first worker panic; the orchestrator treats it as a
// shutdown trigger.
func (d *Dispatcher) Fatal() <-chan error {
	return d.fatal
}

// Depth is the number of jobs queued or running.
func (d *Dispatcher) Depth() int64 {
	return d.depth.Load()
}

func (d *Dispatcher) statsLoop(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.logger.Info("pipeline stats",
				zap.Int64("queue_depth", d.depth.Load()),
				zap.Int64("processed_total", d.processed.Load()),
			)
		}
	}
}
