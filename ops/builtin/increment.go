// Package builtin registers the built-in operators: increment (cpu and
// gpu kinds) and copy (mixed kind, host to device).
package builtin

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/ksztenderski/dali/batches"
	"github.com/ksztenderski/dali/ops"
	"github.com/ksztenderski/dali/types/shapes"
)

// DeltaArgInput is the optional per-sample argument input of increment:
// scalar host samples overriding the spec's delta for each sample.
const DeltaArgInput = "delta"

func init() {
	ops.RegisterSchema("increment").Inputs(1).Outputs(1).
		InputLayouts(0, "HWC").InferOutputs()
	ops.Register("increment", ops.KindCPU, newCPUIncrement)
	ops.Register("increment", ops.KindGPU, newGPUIncrement)
}

// increment adds a constant to every element of its input. The constant
// comes from the "delta" spec argument (default 1), overridable per sample
// through the "delta" argument input.
type increment struct {
	delta float64
}

func makeIncrement(spec *ops.Spec) (increment, error) {
	delta, err := ops.GetArgumentOr[float64](spec, "delta", 1)
	if err != nil {
		return increment{}, err
	}
	return increment{delta: delta}, nil
}

func (op increment) Setup(ws *ops.Workspace) ([]ops.OutputDesc, error) {
	return []ops.OutputDesc{{Shapes: ws.Input(0).Shapes()}}, nil
}

func (op increment) CanInferOutputs() bool { return true }

// sampleDelta resolves the delta for sample i.
func (op increment) sampleDelta(ws *ops.Workspace, i int) (float64, error) {
	arg, found := ws.ArgumentInput(DeltaArgInput)
	if !found {
		return op.delta, nil
	}
	if !arg.Shape(i).IsScalar() {
		return 0, errors.Errorf("increment: %q argument input sample %d must be scalar, got %s",
			DeltaArgInput, i, arg.Shape(i))
	}
	return scalarAsFloat(arg, i)
}

func scalarAsFloat(b *batches.Batch, i int) (float64, error) {
	switch b.DType() {
	case shapes.Int32:
		return float64(batches.SampleData[int32](b, i)[0]), nil
	case shapes.Int64:
		return float64(batches.SampleData[int64](b, i)[0]), nil
	case shapes.Float32:
		return float64(batches.SampleData[float32](b, i)[0]), nil
	case shapes.Float64:
		return batches.SampleData[float64](b, i)[0], nil
	}
	return 0, errors.Errorf("increment: unsupported %q argument input DType %s", DeltaArgInput, b.DType())
}

// addSample writes src+delta into dst. Both must alias distinct storage of
// the same length and DType.
func addSample(dst, src *batches.Batch, i int, delta float64) error {
	switch src.DType() {
	case shapes.Uint8:
		d, s := batches.SampleData[uint8](dst, i), batches.SampleData[uint8](src, i)
		for j := range s {
			d[j] = s[j] + uint8(delta)
		}
	case shapes.Int32:
		d, s := batches.SampleData[int32](dst, i), batches.SampleData[int32](src, i)
		for j := range s {
			d[j] = s[j] + int32(delta)
		}
	case shapes.Int64:
		d, s := batches.SampleData[int64](dst, i), batches.SampleData[int64](src, i)
		for j := range s {
			d[j] = s[j] + int64(delta)
		}
	case shapes.Float16:
		d, s := batches.SampleData[float16.Float16](dst, i), batches.SampleData[float16.Float16](src, i)
		for j := range s {
			d[j] = float16.Fromfloat32(s[j].Float32() + float32(delta))
		}
	case shapes.Float32:
		d, s := batches.SampleData[float32](dst, i), batches.SampleData[float32](src, i)
		for j := range s {
			d[j] = s[j] + float32(delta)
		}
	case shapes.Float64:
		d, s := batches.SampleData[float64](dst, i), batches.SampleData[float64](src, i)
		for j := range s {
			d[j] = s[j] + delta
		}
	default:
		return errors.Errorf("increment: unsupported input DType %s", src.DType())
	}
	return nil
}

// cpuIncrement fans per-sample work out on the bound thread pool.
type cpuIncrement struct {
	increment
}

func newCPUIncrement(spec *ops.Spec) (ops.Operator, error) {
	op, err := makeIncrement(spec)
	if err != nil {
		return nil, err
	}
	return &cpuIncrement{increment: op}, nil
}

func (op *cpuIncrement) Run(ws *ops.Workspace) error {
	pool := ws.ThreadPool()
	if pool == nil {
		return errors.Errorf("increment: cpu kind requires a bound thread pool")
	}
	in, out := ws.Input(0), ws.Output(0)

	var mu sync.Mutex
	var firstErr error
	for i := 0; i < in.NumSamples(); i++ {
		delta, err := op.sampleDelta(ws, i)
		if err != nil {
			return err
		}
		pool.AddWork(func(threadID int) {
			if err := addSample(out, in, i, delta); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}
	pool.WaitForWork()
	return firstErr
}

// gpuIncrement enqueues the whole batch as one asynchronous stream task;
// completion is guaranteed by the caller's post-run synchronization.
type gpuIncrement struct {
	increment
}

func newGPUIncrement(spec *ops.Spec) (ops.Operator, error) {
	op, err := makeIncrement(spec)
	if err != nil {
		return nil, err
	}
	return &gpuIncrement{increment: op}, nil
}

func (op *gpuIncrement) Run(ws *ops.Workspace) error {
	stream := ws.Stream()
	if stream == nil {
		return errors.Errorf("increment: gpu kind requires a bound stream")
	}
	in, out := ws.Input(0), ws.Output(0)
	deltas := make([]float64, in.NumSamples())
	for i := range deltas {
		delta, err := op.sampleDelta(ws, i)
		if err != nil {
			return err
		}
		deltas[i] = delta
	}
	stream.Enqueue(func() error {
		for i := 0; i < in.NumSamples(); i++ {
			if err := addSample(out, in, i, deltas[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}
