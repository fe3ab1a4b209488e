package ingest

import (
	"context"
	"sync"
)

// Job analyses one document. The pool ignores the returned error.
type Job func(ctx context.Context) error

// WorkerPool runs jobs on a fixed number of goroutines.
type WorkerPool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	closeMu sync.RWMutex
	closed  bool
	// closed before Close takes closeMu so blocked submitters release the read lock
	done     chan struct{}
	doneOnce sync.Once
}

// NewWorkerPool returns a pool of workers goroutines with a queue of the given
// capacity. Non-positive values select one worker and a queue of twice the workers.
func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{
		jobs:    make(chan Job, queue),
		workers: workers,
		done:    make(chan struct{}),
	}
}

// Start launches the workers. Jobs receive ctx, and workers exit once it is done.
func (p *WorkerPool) Start(ctx context.Context) {
	p.wg.Add(p.workers)
	for range p.workers {
		go p.work(ctx)
	}
}

func (p *WorkerPool) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			// Job errors reach the Ingester through its result channel.
			_ = job(ctx)
		}
	}
}

// Submit queues job, blocking while the queue is full. It returns ErrPoolClosed
// once Close has been called.
func (p *WorkerPool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx is Submit bounded by ctx.
func (p *WorkerPool) SubmitCtx(ctx context.Context, job Job) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further jobs and waits for the queued ones to finish.
func (p *WorkerPool) Close() {
	p.doneOnce.Do(func() { close(p.done) })
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
}

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = &PoolError{"worker pool closed"}

// PoolError is the error type of pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
