// Package threadpool implements the host thread pool that executes
// per-sample work of cpu-kind operators.
//
// A Pool owns a fixed set of worker goroutines. Work items are queued with
// AddWork and picked up in order; WaitForWork blocks until every queued
// item has finished. The pool is shared by reference: callers never own
// the pool they run on.
package threadpool

import (
	"sync"

	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/ksztenderski/dali/backends"
)

// Pool is a fixed-size pool of host worker goroutines.
type Pool struct {
	numThreads  int
	device      backends.DeviceNum
	setAffinity bool

	mu       sync.Mutex
	workCond sync.Cond // Signaled when work is queued or the pool closes.
	doneCond sync.Cond // Broadcast when pending reaches zero.
	queue    []func(threadID int)
	pending  int
	closed   bool
}

// New creates a pool with numThreads workers bound to the given device.
//
// setAffinity is accepted for interface parity with native thread pools
// but has no effect: goroutines cannot be pinned to cores.
func New(numThreads int, device backends.DeviceNum, setAffinity bool) *Pool {
	if numThreads <= 0 {
		exceptions.Panicf("threadpool.New: numThreads must be > 0, got %d", numThreads)
	}
	p := &Pool{
		numThreads:  numThreads,
		device:      device,
		setAffinity: setAffinity,
	}
	p.workCond.L = &p.mu
	p.doneCond.L = &p.mu
	if setAffinity {
		klog.V(1).Infof("threadpool: thread affinity requested but not supported, ignoring")
	}
	for threadID := 0; threadID < numThreads; threadID++ {
		go p.worker(threadID)
	}
	klog.V(1).Infof("threadpool: started pool with %d threads for device %d", numThreads, device)
	return p
}

func (p *Pool) worker(threadID int) {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.workCond.Wait()
		}
		if p.closed && len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		work := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		work(threadID)

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.doneCond.Broadcast()
		}
		p.mu.Unlock()
	}
}

// AddWork queues one work item. The item receives the id of the worker
// thread that runs it, in [0, NumThreads).
//
// It panics if the pool was closed.
func (p *Pool) AddWork(work func(threadID int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		exceptions.Panicf("threadpool.AddWork: pool is closed")
	}
	p.queue = append(p.queue, work)
	p.pending++
	p.workCond.Signal()
}

// WaitForWork blocks until every item queued so far has finished.
func (p *Pool) WaitForWork() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending > 0 {
		p.doneCond.Wait()
	}
}

// NumThreads returns the number of worker goroutines in the pool.
func (p *Pool) NumThreads() int { return p.numThreads }

// Device returns the device the pool was created for.
func (p *Pool) Device() backends.DeviceNum { return p.device }

// Close stops the workers after the queue drains. The pool must not be
// used after Close.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.workCond.Broadcast()
}
