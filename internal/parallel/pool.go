// Package parallel provides the worker pool the prover uses to race
// independent proof attempts. Nontermination searches over different
// problems and techniques run as pool tasks, so their combined
// parallelism stays bounded no matter how many SCCs a system
// decomposes into.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// WorkerPool manages a fixed set of goroutines executing proof tasks.
// Submission blocks when every worker is busy and the buffer is full,
// which throttles the task producer instead of growing an unbounded
// queue.
type WorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewWorkerPool creates a pool with the specified number of workers.
// If maxWorkers is 0 or negative, it defaults to the number of CPU
// cores.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers*2),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

// worker is the main worker loop that processes tasks from the channel.
func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()

	for {
		select {
		case task := <-wp.taskChan:
			if task != nil {
				task()
			}
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit hands a task to the pool. If every worker is busy, the call
// blocks until one frees up, the context is cancelled, or the pool is
// shut down.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops the pool, waiting for currently executing tasks to
// finish. Tasks still waiting in the buffer are then run inline;
// callers cancel task contexts before shutting down, so these return
// immediately, and any completion bookkeeping they carry still fires.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		close(wp.taskChan)
		wp.workerWg.Wait()
		for task := range wp.taskChan {
			if task != nil {
				task()
			}
		}
	})
}

// ErrPoolShutdown is returned when submitting to a pool that has shut down.
var ErrPoolShutdown = fmt.Errorf("worker pool has been shutdown")
