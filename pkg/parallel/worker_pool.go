// Package parallel runs independent tasks, such as sampler chains, on a
// bounded set of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// PanicHandler receives the value recovered from a panicking task.
type PanicHandler func(recovered any)

// Option configures a WorkerPool.
type Option func(*WorkerPool)

// WithPanicHandler sets the callback for recovered task panics.
func WithPanicHandler(fn PanicHandler) Option {
	return func(wp *WorkerPool) {
		wp.onPanic = fn
	}
}

// MaxWorkers caps the pool size.
const MaxWorkers = 1024

// WorkerPool manages a pool of worker goroutines.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // guards taskQueue against close during send
	closed    bool
	onPanic   PanicHandler
}

// NewWorkerPool starts workers goroutines. A non-positive count means one per
// CPU; counts above MaxWorkers are clamped.
func NewWorkerPool(workers int, opts ...Option) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}
	for _, opt := range opts {
		opt(pool)
	}

	pool.start()
	return pool
}

// Workers returns the number of goroutines in the pool.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(task)
	}
}

// run executes one task; a panic is handed to onPanic and the worker carries on.
func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil && wp.onPanic != nil {
			wp.onPanic(r)
		}
	}()
	task()
}

// Submit queues a task. It returns false once the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for queued ones to finish. Safe to call
// more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait is Close; it exists for call sites that read better as "wait".
func (wp *WorkerPool) Wait() {
	wp.Close()
}
