// Package pool runs jobs on a fixed set of worker goroutines sharing one
// unbounded FIFO queue.
package pool

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"soft-rasterizer/internal/logging"
)

// MaxWorkers bounds DefaultWorkers to avoid oversubscribing large hosts.
const MaxWorkers = 32

// Job is a unit of work. It must not block on other jobs of the same pool.
type Job func()

// ShutdownMode decides what Close does with queued jobs that have not started.
type ShutdownMode int

const (
	// Drain runs every queued job before the workers exit.
	Drain ShutdownMode = iota
	// Drop abandons queued jobs. Jobs already running still finish.
	Drop
)

func (m ShutdownMode) String() string {
	switch m {
	case Drain:
		return "drain"
	case Drop:
		return "drop"
	}
	return "unknown"
}

// ParseShutdownMode accepts "drain" or "drop".
func ParseShutdownMode(s string) (ShutdownMode, error) {
	switch s {
	case "drain", "":
		return Drain, nil
	case "drop":
		return Drop, nil
	}
	return Drain, fmt.Errorf("pool: unknown shutdown mode %q", s)
}

type task struct {
	run  Job
	done func() // called after run, or instead of it when dropped
}

// Pool is a fixed-size worker pool. The zero value is not usable; call New.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []task
	head    int
	closing bool

	workers int
	mode    ShutdownMode
	log     *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	dropped   atomic.Int64
	executed  atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

func WithShutdownMode(m ShutdownMode) Option {
	return func(p *Pool) { p.mode = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// DefaultWorkers returns the hardware concurrency bounded by MaxWorkers.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > MaxWorkers {
		n = MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// New starts a pool with the given number of workers (at least 1).
func New(workers int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		workers: workers,
		log:     logging.Logger(),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, o := range opts {
		o(p)
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.loop()
	}
	p.log.Debug("pool started", "workers", workers, "shutdown", p.mode.String())
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Submit enqueues job and returns immediately. It reports false when the pool
// is shutting down; the job is then dropped without running.
func (p *Pool) Submit(job Job) bool {
	return p.enqueue(task{run: job})
}

func (p *Pool) enqueue(t task) bool {
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		p.dropped.Add(1)
		return false
	}
	p.queue = append(p.queue, t)
	p.mu.Unlock()
	p.cond.Signal()
	return true
}

// Pending returns the number of queued jobs that have not started.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) - p.head
}

// Dropped returns how many jobs were refused or abandoned at shutdown.
func (p *Pool) Dropped() int64 {
	return p.dropped.Load()
}

// Executed returns how many jobs have run to completion.
func (p *Pool) Executed() int64 {
	return p.executed.Load()
}

// Close signals termination, wakes idle workers and waits for them to exit.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closing = true
		var abandoned []task
		if p.mode == Drop {
			abandoned = p.queue[p.head:]
			p.queue = nil
			p.head = 0
		}
		p.mu.Unlock()
		p.cond.Broadcast()

		for _, t := range abandoned {
			if t.done != nil {
				t.done()
			}
		}
		p.dropped.Add(int64(len(abandoned)))

		p.wg.Wait()
		if n := len(abandoned); n > 0 {
			p.log.Warn("pool closed with abandoned jobs", "workers", p.workers, "dropped", n)
		} else {
			p.log.Debug("pool closed", "workers", p.workers, "executed", p.executed.Load())
		}
	})
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.head == len(p.queue) && !p.closing {
			p.cond.Wait()
		}
		if p.head == len(p.queue) {
			// closing and nothing left
			p.mu.Unlock()
			return
		}
		t := p.queue[p.head]
		p.queue[p.head] = task{}
		p.head++
		if p.head == len(p.queue) {
			p.queue = p.queue[:0]
			p.head = 0
		}
		p.mu.Unlock()

		t.run()
		p.executed.Add(1)
		if t.done != nil {
			t.done()
		}
	}
}
