package batches

import (
	"github.com/gomlx/exceptions"

	"github.com/ksztenderski/dali/types/shapes"
)

// View returns a batch sharing this batch's sample storage under the given
// representation. It never copies:
//
//   - same representation: a new header over the same storage;
//   - list to vector: the vector's samples alias the list's contiguous
//     allocation;
//   - vector to list: impossible without a copy, so it panics -- use AsList
//     to pay for the copy explicitly.
//
// The view has its own metadata: setting a layout on the view does not
// touch the viewed batch.
func (b *Batch) View(rep Representation) *Batch {
	if b.rep == Vector && rep == List {
		exceptions.Panicf("Batch.View: cannot view a vector batch as a list without copying; use AsList")
	}
	view := &Batch{
		backend:      b.backend,
		rep:          rep,
		dtype:        b.dtype,
		layout:       b.layout,
		sampleShapes: b.sampleShapes,
		samples:      b.samples,
	}
	if rep == List {
		view.flat = b.flat
	}
	return view
}

// AsList materializes the batch in list representation.
//
// A list batch is returned as-is, sharing storage. A vector batch is
// deep-copied, sample by sample in order, into a freshly allocated list
// batch with the same shapes, dtype and layout.
func (b *Batch) AsList() (*Batch, error) {
	if b.rep == List {
		return b, nil
	}
	out := New(b.backend, List, b.NumSamples())
	out.layout = b.layout
	if b.dtype == shapes.InvalidDType {
		// Unallocated vector batch: nothing to copy.
		out.sampleShapes = b.sampleShapes
		return out, nil
	}
	if err := out.Resize(b.sampleShapes); err != nil {
		return nil, err
	}
	out.layout = b.layout
	if err := out.CopyDataFrom(b); err != nil {
		return nil, err
	}
	return out, nil
}
