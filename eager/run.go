package eager

import (
	"github.com/pkg/errors"

	"github.com/ksztenderski/dali/backends/streams"
	"github.com/ksztenderski/dali/backends/threadpool"
	"github.com/ksztenderski/dali/batches"
)

// run is the execution sequence shared by every kind. The workspace is
// cleared first, so a failure anywhere leaves at most a partially
// populated context that the next call discards; the facade stays usable.
func (d *DirectOperator) run(impl runImpl, inputs []*batches.Batch, kwargs map[string]*batches.Batch,
	pool *threadpool.Pool, stream *streams.Stream) ([]*batches.Batch, error) {
	d.ws.Clear()
	if stream != nil {
		d.ws.SetStream(stream)
	} else {
		d.ws.SetThreadPool(pool)
	}

	// Wrap inputs in the kind's workspace representation, sharing sample
	// storage, and fill in default layouts where the caller left them
	// empty. The default is applied to the workspace view only, and never
	// over an explicit layout.
	for i, input := range inputs {
		view := input.View(impl.inRep)
		if view.Layout().Empty() {
			if def := d.schema.InputLayout(i, view.SampleDim()); !def.Empty() {
				view.SetLayout(def)
			}
		}
		d.ws.AddInput(view)
	}

	for name, arg := range kwargs {
		d.ws.AddArgumentInput(name, arg)
	}

	for i := 0; i < d.numOutputs; i++ {
		d.ws.AddOutput(batches.New(impl.outBackend, impl.outRep, d.batchSize))
	}
	d.ws.SetBatchSize(d.batchSize)

	// Inputs of device kinds may still be in flight on the stream; they
	// must be fully available before the operator reads them.
	if impl.syncStream {
		if err := stream.Synchronize(); err != nil {
			return nil, errors.Wrapf(err, "device error synchronizing stream %s before setup", stream.ID())
		}
	}

	descs, err := d.op.Setup(&d.ws)
	if err != nil {
		return nil, err
	}
	if descs != nil && d.op.CanInferOutputs() {
		if len(descs) != d.numOutputs {
			return nil, errors.Errorf("eager: operator %q inferred %d outputs, schema declares %d",
				d.spec.OpName(), len(descs), d.numOutputs)
		}
		for i, desc := range descs {
			if err := d.ws.Output(i).Resize(desc.Shapes); err != nil {
				return nil, errors.Wrapf(err, "eager: resizing output %d of operator %q", i, d.spec.OpName())
			}
		}
	}

	if err := d.op.Run(&d.ws); err != nil {
		return nil, err
	}

	// Outputs of device kinds may have been produced asynchronously; they
	// must be complete before a caller consumes them on another stream.
	if impl.syncStream {
		if err := stream.Synchronize(); err != nil {
			return nil, errors.Wrapf(err, "device error synchronizing stream %s after run", stream.ID())
		}
	}

	outputs := make([]*batches.Batch, 0, d.numOutputs)
	for i := 0; i < d.numOutputs; i++ {
		out, err := d.ws.Output(i).AsList()
		if err != nil {
			return nil, errors.Wrapf(err, "eager: materializing output %d of operator %q", i, d.spec.OpName())
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
