// Package worker computes and stores daily snapshots from queued jobs.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/pkg/logger"
	"github.com/okian/celest/pkg/metrics"
)

const defaultWorkerMultiplier = 2

// Job abstracts what workers read off the queue.
type Job = model.SnapshotJob

// Computer turns a job into a snapshot.
type Computer interface {
	ComputeSnapshot(ctx context.Context, j Job) (model.Snapshot, error)
}

// Writer persists snapshots.
type Writer interface {
	Put(ctx context.Context, s model.Snapshot) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// FailureFunc is called after a job fails, e.g. to release its dedupe key.
type FailureFunc func(ctx context.Context, j Job, err error)

// Worker processes jobs until its queue channel closes.
type Worker interface {
	Run(ctx context.Context)
	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	computer  Computer
	writer    Writer
	name      string
	onFailure FailureFunc
	active    *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(queue Queue, computer Computer, writer Writer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		computer:  computer,
		writer:    writer,
		name:      "worker",
		onFailure: func(context.Context, Job, error) {},
		active:    new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "snapshot job failed",
					logger.String("job_id", j.ID),
					logger.String("subject_id", j.SubjectID),
					logger.Error(err),
				)
				w.onFailure(ctx, j, err)
			}
		}
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // jobs are passed by value through the channel
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	snap, err := w.computer.ComputeSnapshot(ctx, j)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "compute_error")
		return fmt.Errorf("compute snapshot %s: %w", j.ID, err)
	}
	if err := w.writer.Put(ctx, snap); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("store snapshot %s: %w", j.ID, err)
	}
	w.logger.Debug(ctx, "snapshot stored",
		logger.String("subject_id", snap.SubjectID),
		logger.String("date", snap.Date),
		logger.Int("harmony", snap.Harmony),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one defaults
// to twice the number of CPUs.
func NewPool(workerCount int, queue Queue, computer Computer, writer Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	active := new(atomic.Int64)
	for i := range workerCount {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(queue, computer, writer, wopts...)
		w.active = active
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Shutdown closes the queue, lets workers drain it and waits for them. When
// ctx ends first the workers are stopped after their current job.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker drain timed out; stopping workers")
		for _, w := range p.workers {
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
		<-drained
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
}
