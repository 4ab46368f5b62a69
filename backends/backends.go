// Package backends defines where tensor-batch data lives and the handles
// used to address execution resources.
//
// A Backend tags a batch with its placement: CPU (host memory) or GPU
// (device memory). DeviceNum addresses one device among the devices of
// a backend.
//
// The device side is served by in-process streams (see backends/streams):
// work submitted to a stream executes asynchronously in submission order,
// the way work on a CUDA stream does.
package backends

// Backend tags the placement of a tensor batch.
type Backend int

const (
	// CPU batches live in host memory and are operated on by host threads.
	CPU Backend = iota

	// GPU batches live in device memory and are operated on by streams.
	GPU
)

// String implements fmt.Stringer, using the lowercase device names
// operators are registered under.
func (b Backend) String() string {
	switch b {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	}
	return "invalid"
}

// DeviceNum addresses one device. It should be between 0 and the number of
// devices available, except for the CPUOnlyDeviceID sentinel.
type DeviceNum int

// CPUOnlyDeviceID is the sentinel device of processes that never touch a
// device: requests to replace a device stream for it are no-ops.
const CPUOnlyDeviceID DeviceNum = -1
