package eager

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/ksztenderski/dali/backends"
	"github.com/ksztenderski/dali/backends/streams"
	"github.com/ksztenderski/dali/backends/threadpool"
)

// Resources coordinates the default execution resources of direct
// operators: one default host thread pool and one default stream per
// device. Both are created lazily on first use and unconditionally
// replaced by the setters; replaced handles are not released and nothing
// is reference-counted.
//
// Replacing a resource is not synchronized against in-flight Run calls --
// the caller must guarantee no concurrent Run is using the resource being
// replaced.
type Resources struct {
	mu         sync.Mutex
	threadPool *threadpool.Pool
	streams    map[backends.DeviceNum]*streams.Stream
}

// NewResources creates an empty coordinator. Most callers want the
// process-wide Shared() instance instead.
func NewResources() *Resources {
	return &Resources{streams: make(map[backends.DeviceNum]*streams.Stream)}
}

var (
	shared     *Resources
	sharedOnce sync.Once
)

// Shared returns the process-wide resource coordinator, created on first
// use.
func Shared() *Resources {
	sharedOnce.Do(func() {
		shared = NewResources()
	})
	return shared
}

// ThreadPool returns the current default thread pool. The initial default
// has a single thread on the first device, without affinity.
func (r *Resources) ThreadPool() *threadpool.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.threadPool == nil {
		r.threadPool = threadpool.New(1, 0, false)
	}
	return r.threadPool
}

// SetThreadPool replaces the default thread pool with a freshly created
// one. Only subsequent default-resource Run calls are affected.
func (r *Resources) SetThreadPool(numThreads int, device backends.DeviceNum, setAffinity bool) {
	pool := threadpool.New(numThreads, device, setAffinity)
	r.mu.Lock()
	defer r.mu.Unlock()
	klog.V(1).Infof("eager: replacing default thread pool (%d threads, device %d)", numThreads, device)
	r.threadPool = pool
}

// Stream returns the current default stream of the device, creating the
// device's legacy default stream on first use.
func (r *Resources) Stream(device backends.DeviceNum) *streams.Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, found := r.streams[device]
	if !found {
		s = streams.New(device)
		r.streams[device] = s
	}
	return s
}

// SetCudaStream replaces the default stream of the device with one taken
// from the shared stream pool. It is a no-op for the CPU-only sentinel
// device. Only subsequent default-resource Run calls are affected.
func (r *Resources) SetCudaStream(device backends.DeviceNum) {
	if device == backends.CPUOnlyDeviceID {
		return
	}
	s := streams.SharedPool().Get(device)
	r.mu.Lock()
	defer r.mu.Unlock()
	klog.V(1).Infof("eager: replacing default stream of device %d with stream %s", device, s.ID())
	r.streams[device] = s
}
