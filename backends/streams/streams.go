// Package streams implements in-process device streams: ordered
// asynchronous work queues modeling CUDA streams, plus a per-device pool
// to allocate them from.
//
// Work enqueued on a stream runs on a dedicated goroutine in submission
// order. Synchronize blocks until everything enqueued so far has finished
// and reports the first failure since the previous synchronization, the
// way asynchronous CUDA errors surface at sync points.
package streams

import (
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/ksztenderski/dali/backends"
)

// Stream is an ordered asynchronous work queue bound to one device.
//
// A Stream is shared by reference; replacing a process-default stream does
// not stop or drain the replaced one.
type Stream struct {
	id     string
	device backends.DeviceNum

	mu       sync.Mutex
	workCond sync.Cond
	doneCond sync.Cond
	queue    []func() error
	pending  int
	err      error // First failure since the last Synchronize.
	closed   bool
}

// New creates a stream for the given device and starts its worker.
func New(device backends.DeviceNum) *Stream {
	if device < 0 {
		exceptions.Panicf("streams.New: invalid device %d", device)
	}
	s := &Stream{
		id:     uuid.NewString()[:8],
		device: device,
	}
	s.workCond.L = &s.mu
	s.doneCond.L = &s.mu
	go s.run()
	klog.V(1).Infof("streams: created stream %s on device %d", s.id, device)
	return s
}

func (s *Stream) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.workCond.Wait()
		}
		if s.closed && len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		err := task()

		s.mu.Lock()
		if err != nil && s.err == nil {
			s.err = err
		}
		s.pending--
		if s.pending == 0 {
			s.doneCond.Broadcast()
		}
		s.mu.Unlock()
	}
}

// Enqueue submits one task. Tasks run asynchronously, in submission order.
// A task failure is held by the stream and reported by the next
// Synchronize; tasks enqueued after a failure still run.
func (s *Stream) Enqueue(task func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		exceptions.Panicf("streams.Enqueue: stream %s is closed", s.id)
	}
	s.queue = append(s.queue, task)
	s.pending++
	s.workCond.Signal()
}

// Synchronize blocks until every task enqueued so far has finished and
// returns the first failure since the previous Synchronize, clearing it.
func (s *Stream) Synchronize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.doneCond.Wait()
	}
	err := s.err
	s.err = nil
	return err
}

// Device returns the device the stream is bound to.
func (s *Stream) Device() backends.DeviceNum { return s.device }

// ID returns the stream's log-correlation id.
func (s *Stream) ID() string { return s.id }

// Close stops the worker after the queue drains. The stream must not be
// used after Close.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.workCond.Broadcast()
}
