// SPDX-License-Identifier: GPL-2.0-or-later

// Package jobs is a fork/join helper over a pool of reusable goroutines.
package jobs

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Pool runs batches of jobs. Jobs added with AddJob start at Submit, Wait
// blocks until all submitted jobs returned.
type Pool interface {
	AddJob(fn func())
	Submit()
	Wait()
	NumWorkerThreads() int
}

// WorkerPool distributes jobs over a fixed number of workers. It is not safe
// for use by more than one submitting goroutine at a time.
type WorkerPool struct {
	pool    worker.DynamicWorkerPool
	workers int
	pending []func()
	wg      sync.WaitGroup
	nextID  int
}

// queueSize is the task backlog the underlying pool buffers.
const queueSize = 256

func NewWorkerPool(workers int) *WorkerPool {
	workers = max(workers, 1)
	return &WorkerPool{
		pool:    worker.NewDynamicWorkerPool(workers, queueSize, 1*time.Second),
		workers: workers,
	}
}

func (p *WorkerPool) NumWorkerThreads() int {
	return p.workers
}

func (p *WorkerPool) AddJob(fn func()) {
	p.pending = append(p.pending, fn)
}

func (p *WorkerPool) Submit() {
	for _, fn := range p.pending {
		p.wg.Add(1)
		job := fn
		p.pool.SubmitTask(worker.Task{
			ID: p.nextID,
			Do: func() (any, error) {
				defer p.wg.Done()
				job()
				return nil, nil
			},
		})
		p.nextID++
	}
	clear(p.pending)
	p.pending = p.pending[:0]
}

func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// NewPool returns an Inline pool for a single worker and a WorkerPool
// otherwise.
func NewPool(workers int) Pool {
	if workers <= 1 {
		return &Inline{}
	}
	return NewWorkerPool(workers)
}

// Inline runs every job on the submitting goroutine.
type Inline struct {
	pending []func()
}

func (p *Inline) NumWorkerThreads() int { return 1 }

func (p *Inline) AddJob(fn func()) {
	p.pending = append(p.pending, fn)
}

func (p *Inline) Submit() {
	for _, fn := range p.pending {
		fn()
	}
	clear(p.pending)
	p.pending = p.pending[:0]
}

func (p *Inline) Wait() {}
