package pool

import (
	"sync"
	"sync/atomic"
)

// Batch groups jobs so the submitter can block until all of them finished.
// A frame submits its work through one Batch and calls Wait before the
// framebuffer is read or cleared again.
type Batch struct {
	pool *Pool

	submitted atomic.Int64
	completed atomic.Int64

	mu   sync.Mutex
	cond *sync.Cond
}

// NewBatch returns an empty batch bound to p.
func (p *Pool) NewBatch() *Batch {
	b := &Batch{pool: p}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Submit enqueues job as part of the batch. It reports false if the pool
// refused the job; the batch does not wait for refused jobs.
func (b *Batch) Submit(job Job) bool {
	b.submitted.Add(1)
	if !b.pool.enqueue(task{run: job, done: b.finish}) {
		b.submitted.Add(-1)
		b.signal()
		return false
	}
	return true
}

func (b *Batch) finish() {
	b.completed.Add(1)
	b.signal()
}

func (b *Batch) signal() {
	if b.completed.Load() == b.submitted.Load() {
		// Taking the lock orders this broadcast after a waiter's check.
		b.mu.Lock()
		b.cond.Broadcast()
		b.mu.Unlock()
	}
}

// Wait blocks until every submitted job has completed or been dropped.
// Submit must not be called concurrently with Wait.
func (b *Batch) Wait() {
	b.mu.Lock()
	for b.completed.Load() != b.submitted.Load() {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// Pending returns submitted jobs that have not completed yet.
func (b *Batch) Pending() int64 {
	return b.submitted.Load() - b.completed.Load()
}

// Submitted returns the number of jobs accepted by the batch.
func (b *Batch) Submitted() int64 {
	return b.submitted.Load()
}
