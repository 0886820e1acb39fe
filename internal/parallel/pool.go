// Package parallel provides the fixed-size worker pool the quantizer fans
// per-cell work out to.
package parallel

import (
	"runtime"
	"sync"
)

// Pool is a fixed number of goroutines pulling work from a shared queue.
//
// Pool is safe for concurrent use until Close is called.
type Pool struct {
	workers int
	queue   chan func()
	wg      sync.WaitGroup
	once    sync.Once
}

// NewPool starts a pool with the given number of workers. If workers is zero
// or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		queue:   make(chan func(), workers*4),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for work := range p.queue {
		work()
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// ExecuteAll runs every function on the pool and waits for all of them to
// return.
func (p *Pool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}

	var done sync.WaitGroup
	done.Add(len(work))
	for _, fn := range work {
		fn := fn
		p.queue <- func() {
			defer done.Done()
			fn()
		}
	}
	done.Wait()
}

// Close stops the workers once queued work has finished. It is safe to call
// more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.queue)
		p.wg.Wait()
	})
}
