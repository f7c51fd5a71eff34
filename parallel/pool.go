package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs jobs on a fixed set of goroutines and tallies their outcome.
// With a single worker, jobs run inline on the submitting goroutine.
type Pool struct {
	wg      sync.WaitGroup
	jobs    chan func()
	workers int
	stop    func()

	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// Start launches numWorkers goroutines. Values below 1 select GOMAXPROCS.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		workers: numWorkers,
		stop:    func() {},
	}
	if numWorkers == 1 {
		return pool
	}

	pool.jobs = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.jobs {
				f()
			}
		})
	}
	pool.stop = sync.OnceFunc(func() { close(pool.jobs) })

	return pool
}

// Workers returns the number of goroutines serving the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Do schedules job, blocking while all workers are busy. A job returning a
// non-nil error counts as failed. Do must not be called after Wait.
func (p *Pool) Do(job func() error) {
	run := func() {
		if err := job(); err != nil {
			p.failed.Add(1)
			return
		}
		p.succeeded.Add(1)
	}

	if p.jobs == nil {
		run()
		return
	}
	p.jobs <- run
}

// Wait stops accepting jobs, waits for the scheduled ones and returns how
// many succeeded and failed.
func (p *Pool) Wait() (succeeded, failed uint64) {
	p.stop()
	p.wg.Wait()
	return p.succeeded.Load(), p.failed.Load()
}
