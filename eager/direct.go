// Package eager provides direct execution of a single configured operator,
// outside any pipeline scheduler: inputs go in, the operator runs on the
// caller's thread of control, and materialized list outputs come back.
package eager

import (
	"github.com/pkg/errors"

	"github.com/ksztenderski/dali/backends"
	"github.com/ksztenderski/dali/backends/streams"
	"github.com/ksztenderski/dali/backends/threadpool"
	"github.com/ksztenderski/dali/batches"
	"github.com/ksztenderski/dali/ops"
)

// ErrUnsupportedCombination is returned when a Run call's execution kind,
// input placement and resource form have no concrete implementation. The
// check happens before the execution context is touched.
var ErrUnsupportedCombination = errors.New("unsupported backend combination in DirectOperator.Run")

// resourceForm distinguishes the resource a Run variant binds.
type resourceForm int

const (
	resourceThreadPool resourceForm = iota
	resourceStream
)

func (f resourceForm) String() string {
	if f == resourceThreadPool {
		return "thread pool"
	}
	return "stream"
}

// combination keys the closed dispatch table: the instantiation kind, the
// placement of the positional inputs, and the resource form of the call.
type combination struct {
	kind ops.Kind
	in   backends.Backend
	res  resourceForm
}

// runImpl is one concrete execution path.
type runImpl struct {
	inRep      batches.Representation // Workspace-side input representation.
	outRep     batches.Representation // Workspace-side output representation.
	outBackend backends.Backend
	syncStream bool
}

// runImpls is the closed set of supported execution paths. Any combination
// outside it fails with ErrUnsupportedCombination at call time; there is
// deliberately no construction-time check, matching the behavior of lazily
// resolved per-combination dispatch.
var runImpls = map[combination]runImpl{
	{ops.KindCPU, backends.CPU, resourceThreadPool}: {
		inRep: batches.Vector, outRep: batches.Vector, outBackend: backends.CPU,
	},
	{ops.KindGPU, backends.GPU, resourceStream}: {
		inRep: batches.List, outRep: batches.List, outBackend: backends.GPU, syncStream: true,
	},
	{ops.KindMixed, backends.CPU, resourceStream}: {
		inRep: batches.Vector, outRep: batches.List, outBackend: backends.GPU, syncStream: true,
	},
}

// defaultInputBackend is the input placement assumed for calls without
// positional inputs.
var defaultInputBackend = map[ops.Kind]backends.Backend{
	ops.KindCPU:   backends.CPU,
	ops.KindGPU:   backends.GPU,
	ops.KindMixed: backends.CPU,
}

// DirectOperator eagerly executes one operator instantiation.
//
// The operator capability is instantiated at construction and owned for
// the facade's lifetime; the execution kind, batch size and output count
// are fixed then. A DirectOperator is reusable after any failure, but a
// single instance must not Run concurrently: the execution context is
// instance-owned mutable state.
type DirectOperator struct {
	kind       ops.Kind
	batchSize  int
	numOutputs int
	device     backends.DeviceNum

	spec   *ops.Spec
	schema *ops.Schema
	op     ops.Operator

	ws        ops.Workspace
	resources *Resources
}

// New constructs a direct operator for the spec and execution kind, using
// the process-wide shared resource coordinator for default-resource calls.
func New(spec *ops.Spec, kind ops.Kind) (*DirectOperator, error) {
	return NewWithResources(spec, kind, Shared())
}

// NewWithResources is New with an explicit resource coordinator.
//
// Construction fails for an invalid specification: an unregistered schema,
// a missing or non-positive max_batch_size argument, or an operator
// factory rejecting the spec. Factory errors propagate unchanged.
func NewWithResources(spec *ops.Spec, kind ops.Kind, resources *Resources) (*DirectOperator, error) {
	schema, err := spec.Schema()
	if err != nil {
		return nil, err
	}
	batchSize, err := ops.GetArgument[int](spec, ops.MaxBatchSizeArg)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		return nil, errors.Errorf("eager: %s argument of operator %q must be > 0, got %d",
			ops.MaxBatchSizeArg, spec.OpName(), batchSize)
	}
	deviceID, err := ops.GetArgumentOr[int](spec, ops.DeviceIDArg, 0)
	if err != nil {
		return nil, err
	}
	op, err := ops.Instantiate(spec, kind)
	if err != nil {
		return nil, err
	}
	return &DirectOperator{
		kind:       kind,
		batchSize:  batchSize,
		numOutputs: schema.NumOutput(),
		device:     backends.DeviceNum(deviceID),
		spec:       spec,
		schema:     schema,
		op:         op,
		resources:  resources,
	}, nil
}

// Kind returns the fixed execution kind of the instantiation.
func (d *DirectOperator) Kind() ops.Kind { return d.kind }

// BatchSize returns the batch size fixed at construction.
func (d *DirectOperator) BatchSize() int { return d.batchSize }

// NumOutputs returns the output count declared by the schema.
func (d *DirectOperator) NumOutputs() int { return d.numOutputs }

// Run executes the operator with the default resource of its kind: the
// coordinator's thread pool for cpu, its default stream for gpu and mixed.
func (d *DirectOperator) Run(inputs []*batches.Batch, kwargs map[string]*batches.Batch) ([]*batches.Batch, error) {
	switch d.kind {
	case ops.KindCPU:
		return d.RunWithThreadPool(inputs, kwargs, d.resources.ThreadPool())
	case ops.KindGPU, ops.KindMixed:
		return d.RunWithStream(inputs, kwargs, d.resources.Stream(d.device))
	}
	return nil, errors.Wrapf(ErrUnsupportedCombination, "kind %s", d.kind)
}

// RunWithThreadPool executes the operator on an explicit host thread pool.
// Only the cpu kind has an implementation for this resource form.
func (d *DirectOperator) RunWithThreadPool(inputs []*batches.Batch, kwargs map[string]*batches.Batch,
	pool *threadpool.Pool) ([]*batches.Batch, error) {
	impl, err := d.lookup(inputs, kwargs, resourceThreadPool)
	if err != nil {
		return nil, err
	}
	return d.run(impl, inputs, kwargs, pool, nil)
}

// RunWithStream executes the operator on an explicit device stream. Only
// the gpu and mixed kinds have implementations for this resource form.
func (d *DirectOperator) RunWithStream(inputs []*batches.Batch, kwargs map[string]*batches.Batch,
	stream *streams.Stream) ([]*batches.Batch, error) {
	impl, err := d.lookup(inputs, kwargs, resourceStream)
	if err != nil {
		return nil, err
	}
	return d.run(impl, inputs, kwargs, nil, stream)
}

// SetThreadPool replaces the coordinator's default thread pool. Only
// subsequent default-resource calls are affected.
func (d *DirectOperator) SetThreadPool(numThreads int, device backends.DeviceNum, setAffinity bool) {
	d.resources.SetThreadPool(numThreads, device, setAffinity)
}

// SetCudaStream replaces the coordinator's default stream for the device.
// No-op for the CPU-only sentinel device.
func (d *DirectOperator) SetCudaStream(device backends.DeviceNum) {
	d.resources.SetCudaStream(device)
}

// lookup resolves the concrete execution path and validates the call
// surface. It runs before any context mutation: a failed lookup leaves the
// facade untouched, with no allocation performed.
func (d *DirectOperator) lookup(inputs []*batches.Batch, kwargs map[string]*batches.Batch,
	res resourceForm) (runImpl, error) {
	for i, input := range inputs {
		if input == nil {
			return runImpl{}, errors.Errorf("eager: input %d is nil", i)
		}
	}
	in := defaultInputBackend[d.kind]
	if len(inputs) > 0 {
		in = inputs[0].Backend()
	}
	for i, input := range inputs {
		if input.Rep() != batches.List {
			return runImpl{}, errors.Wrapf(ErrUnsupportedCombination,
				"input %d is a %s batch, the call surface takes list batches", i, input.Rep())
		}
		if input.Backend() != in {
			return runImpl{}, errors.Wrapf(ErrUnsupportedCombination,
				"input %d is on %s, input 0 is on %s", i, input.Backend(), in)
		}
	}
	for name, arg := range kwargs {
		if arg == nil {
			return runImpl{}, errors.Errorf("eager: argument input %q is nil", name)
		}
		if arg.Backend() != backends.CPU || arg.Rep() != batches.List {
			return runImpl{}, errors.Wrapf(ErrUnsupportedCombination,
				"argument input %q must be a host list batch, got %s %s batch", name, arg.Backend(), arg.Rep())
		}
	}
	impl, found := runImpls[combination{kind: d.kind, in: in, res: res}]
	if !found {
		return runImpl{}, errors.Wrapf(ErrUnsupportedCombination,
			"kind %s with %s inputs and a %s resource", d.kind, in, res)
	}
	return impl, nil
}
