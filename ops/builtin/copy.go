package builtin

import (
	"github.com/pkg/errors"

	"github.com/ksztenderski/dali/ops"
)

func init() {
	ops.RegisterSchema("copy").Inputs(1).Outputs(1).InferOutputs()
	ops.Register("copy", ops.KindMixed, newMixedCopy)
}

// mixedCopy transfers a host batch to the device: the copy is enqueued on
// the bound stream and completes by the caller's post-run synchronization.
type mixedCopy struct{}

func newMixedCopy(*ops.Spec) (ops.Operator, error) {
	return mixedCopy{}, nil
}

func (mixedCopy) Setup(ws *ops.Workspace) ([]ops.OutputDesc, error) {
	return []ops.OutputDesc{{Shapes: ws.Input(0).Shapes()}}, nil
}

func (mixedCopy) CanInferOutputs() bool { return true }

func (mixedCopy) Run(ws *ops.Workspace) error {
	stream := ws.Stream()
	if stream == nil {
		return errors.Errorf("copy: mixed kind requires a bound stream")
	}
	in, out := ws.Input(0), ws.Output(0)
	stream.Enqueue(func() error {
		return out.CopyDataFrom(in)
	})
	return nil
}
