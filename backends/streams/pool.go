package streams

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/ksztenderski/dali/backends"
)

// Pool hands out streams per device, reusing returned ones.
type Pool struct {
	mu   sync.Mutex
	free map[backends.DeviceNum][]*Stream
}

// NewPool creates an empty stream pool.
func NewPool() *Pool {
	return &Pool{free: make(map[backends.DeviceNum][]*Stream)}
}

// Get returns a stream for the device, reusing a previously returned one
// if available, otherwise creating a fresh stream.
func (p *Pool) Get(device backends.DeviceNum) *Stream {
	p.mu.Lock()
	defer p.mu.Unlock()
	if free := p.free[device]; len(free) > 0 {
		s := free[len(free)-1]
		p.free[device] = free[:len(free)-1]
		klog.V(2).Infof("streams: reusing stream %s for device %d", s.id, device)
		return s
	}
	return New(device)
}

// Put returns a stream to the pool for reuse. The caller must guarantee no
// work is still being enqueued on it.
func (p *Pool) Put(s *Stream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free[s.device] = append(p.free[s.device], s)
}

var (
	sharedPool     *Pool
	sharedPoolOnce sync.Once
)

// SharedPool returns the process-wide stream pool, created on first use.
func SharedPool() *Pool {
	sharedPoolOnce.Do(func() {
		sharedPool = NewPool()
	})
	return sharedPool
}
