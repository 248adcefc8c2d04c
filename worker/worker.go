package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/railcart/oerror"
	"github.com/sirupsen/logrus"
)

var defaultPool = NewPool(runtime.NumCPU(), runtime.NumCPU())

// Pool runs submitted functions on a fixed amount of goroutines. A panicking function is reported and does
// not take its goroutine down with it.
type Pool struct {
	queue chan func()
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPool starts a pool with the amount of workers passed. backlog is the amount of functions that may be
// queued before Submit blocks.
func NewPool(workers, backlog int) *Pool {
	p := &Pool{queue: make(chan func(), backlog)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for f := range p.queue {
		run(id, f)
	}
}

func run(id int, f func()) {
	defer func() {
		if v := recover(); v != nil {
			err := oerror.New("worker %d crashed: %v", id, v)
			logrus.WithError(err).Error("background job failed")

			hub := sentry.CurrentHub().Clone()
			hub.Recover(err)
			hub.Flush(time.Second * 5)
		}
	}()
	f()
}

// Submit queues f to be run by one of the workers. It returns false if the pool was closed.
func (p *Pool) Submit(f func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.queue <- f
	return true
}

// Close stops accepting functions and waits for the queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues f on the shared pool. To be used by work that should not block the tick, such as chunk
// loading.
func Submit(f func()) {
	defaultPool.Submit(f)
}
