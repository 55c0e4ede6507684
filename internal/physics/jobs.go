package physics

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// jobPool is a fixed set of goroutines the world hands integration chunks to.
// Run blocks until every job has finished; close stops the workers and waits
// for them to exit.
type jobPool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

func newJobPool(workers int) *jobPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &jobPool{
		workers: workers,
		queue:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *jobPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case job := <-p.queue:
			job()
		}
	}
}

// Run executes jobs across the workers and waits for all of them. With a
// single job, or once the pool is closed, jobs run on the caller.
func (p *jobPool) Run(jobs []func()) {
	if len(jobs) == 0 {
		return
	}
	if len(jobs) == 1 || !p.running.Load() {
		for _, job := range jobs {
			job()
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for _, job := range jobs {
		p.queue <- func() {
			defer wg.Done()
			job()
		}
	}
	wg.Wait()
}

func (p *jobPool) close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
