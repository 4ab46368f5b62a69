package ops

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksztenderski/dali/backends"
	"github.com/ksztenderski/dali/backends/streams"
	"github.com/ksztenderski/dali/backends/threadpool"
	"github.com/ksztenderski/dali/batches"
	"github.com/ksztenderski/dali/types/shapes"
)

type nopOperator struct{}

func (nopOperator) Setup(*Workspace) ([]OutputDesc, error) { return nil, nil }
func (nopOperator) Run(*Workspace) error                   { return nil }
func (nopOperator) CanInferOutputs() bool                  { return false }

func init() {
	RegisterSchema("nop").Inputs(1).Outputs(1).InputLayouts(0, "HWC", "FHWC")
	Register("nop", KindCPU, func(*Spec) (Operator, error) { return nopOperator{}, nil })
}

func TestSchemaRegistry(t *testing.T) {
	s, err := SchemaFor("nop")
	require.NoError(t, err)
	assert.Equal(t, "nop", s.Name())
	assert.Equal(t, 1, s.NumInput())
	assert.Equal(t, 1, s.NumOutput())
	assert.False(t, s.CanInferOutputs())

	_, err = SchemaFor("no_such_op")
	require.Error(t, err)
	require.Panics(t, func() { RegisterSchema("nop") })
}

func TestSchemaInputLayout(t *testing.T) {
	s, err := SchemaFor("nop")
	require.NoError(t, err)
	assert.Equal(t, shapes.Layout("HWC"), s.InputLayout(0, 3))
	assert.Equal(t, shapes.Layout("FHWC"), s.InputLayout(0, 4))
	assert.True(t, s.InputLayout(0, 2).Empty()) // No candidate of rank 2.
	assert.True(t, s.InputLayout(1, 3).Empty()) // No candidates for input 1.
}

func TestSpecArguments(t *testing.T) {
	spec := NewSpec("nop").WithArg(MaxBatchSizeArg, 8).WithArg("delta", 2.5)
	assert.Equal(t, "nop", spec.OpName())
	assert.True(t, spec.HasArg("delta"))

	n, err := GetArgument[int](spec, MaxBatchSizeArg)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	_, err = GetArgument[int](spec, "missing")
	require.Error(t, err)
	_, err = GetArgument[string](spec, "delta") // Wrong type.
	require.Error(t, err)

	d, err := GetArgumentOr[float64](spec, "delta", 1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, d)
	d, err = GetArgumentOr[float64](spec, "missing", 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, d)
	_, err = GetArgumentOr[int](spec, "delta", 0) // Set with the wrong type.
	require.Error(t, err)

	sch, err := spec.Schema()
	require.NoError(t, err)
	assert.Equal(t, "nop", sch.Name())
}

func TestInstantiate(t *testing.T) {
	op, err := Instantiate(NewSpec("nop"), KindCPU)
	require.NoError(t, err)
	require.NotNil(t, op)

	_, err = Instantiate(NewSpec("nop"), KindGPU)
	require.Error(t, err) // Registered for cpu only.
	_, err = Instantiate(NewSpec("no_such_op"), KindCPU)
	require.Error(t, err)

	rejected := errors.New("bad spec")
	Register("rejecting", KindCPU, func(*Spec) (Operator, error) { return nil, rejected })
	_, err = Instantiate(NewSpec("rejecting"), KindCPU)
	require.ErrorIs(t, err, rejected) // Factory errors propagate unchanged.

	require.Panics(t, func() {
		Register("nop", KindCPU, func(*Spec) (Operator, error) { return nopOperator{}, nil })
	})
}

func TestWorkspace(t *testing.T) {
	var ws Workspace
	in, err := batches.FromFlat(backends.CPU, []int32{1, 2}, 2)
	require.NoError(t, err)
	out := batches.New(backends.CPU, batches.Vector, 2)
	arg, err := batches.FromFlat(backends.CPU, []float32{0.5, 0.5}, 2)
	require.NoError(t, err)

	pool := threadpool.New(1, 0, false)
	defer pool.Close()

	ws.AddInput(in)
	ws.AddArgumentInput("scale", arg)
	ws.AddOutput(out)
	ws.SetBatchSize(2)
	ws.SetThreadPool(pool)

	assert.Equal(t, 1, ws.NumInput())
	assert.Same(t, in, ws.Input(0))
	assert.Equal(t, 1, ws.NumOutput())
	assert.Same(t, out, ws.Output(0))
	got, found := ws.ArgumentInput("scale")
	assert.True(t, found)
	assert.Same(t, arg, got)
	assert.Equal(t, 2, ws.BatchSize())
	assert.Same(t, pool, ws.ThreadPool())
	assert.False(t, ws.HasStream())

	require.Panics(t, func() { ws.Input(1) })
	require.Panics(t, func() { ws.Output(-1) })

	// Clear discards every binding of the previous invocation.
	ws.Clear()
	assert.Equal(t, 0, ws.NumInput())
	assert.Equal(t, 0, ws.NumOutput())
	_, found = ws.ArgumentInput("scale")
	assert.False(t, found)
	assert.Equal(t, 0, ws.BatchSize())
	assert.Nil(t, ws.ThreadPool())

	s := streams.New(0)
	defer s.Close()
	ws.SetStream(s)
	assert.True(t, ws.HasStream())
	assert.Same(t, s, ws.Stream())
}
