// Package tasks runs fire-and-forget background work on a fixed set of
// workers over a bounded queue, so cache backfill has deliberate
// backpressure and shutdown draining instead of unbounded goroutine spawn.
package tasks

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4
	defaultDepth   = 256
)

// Func is a unit of background work. It receives a background context:
// backfill has no caller left to cancel it, so tasks run to completion or
// fail on their own.
type Func func(ctx context.Context)

// Pool is a bounded fire-and-forget worker pool.
type Pool struct {
	mu     sync.RWMutex
	queue  chan Func
	group  *errgroup.Group
	log    *zap.Logger
	closed bool
}

// New starts workers goroutines consuming a queue of the given depth.
// Non-positive arguments fall back to defaults.
func New(workers, depth int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if depth <= 0 {
		depth = defaultDepth
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{
		queue: make(chan Func, depth),
		group: &errgroup.Group{},
		log:   log,
	}
	for i := 0; i < workers; i++ {
		p.group.Go(p.run)
	}
	return p
}

func (p *Pool) run() error {
	for task := range p.queue {
		p.invoke(task)
	}
	return nil
}

func (p *Pool) invoke(task Func) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("background task panicked", zap.Any("panic", r))
		}
	}()
	task(context.Background())
}

// Submit enqueues a task without blocking the caller. A full queue drops
// the task with a warning: backfill work is best-effort and the read it
// came from has already been satisfied. Returns whether the task was
// accepted.
func (p *Pool) Submit(task Func) bool {
	if task == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- task:
		return true
	default:
		p.log.Warn("background queue full, dropping task")
		return false
	}
}

// Close stops accepting work and drains the queue before returning.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	_ = p.group.Wait()
}
