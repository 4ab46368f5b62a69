// Package batches implements the tensor-batch container exchanged between
// callers and operators.
//
// A Batch is a backend-tagged, homogeneous group of samples with one
// explicit Representation:
//
//   - List: one contiguous allocation backing the whole batch; per-sample
//     slices alias into it.
//   - Vector: one allocation per sample.
//
// Conversions make their cost visible at the call site: View shares
// storage and never copies (and panics where sharing is impossible),
// AsList is the one operation that may deep-copy (vector to list).
package batches

import (
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ksztenderski/dali/backends"
	"github.com/ksztenderski/dali/types/shapes"
)

// Representation tags how a Batch stores its samples.
type Representation int

const (
	// List batches use one contiguous allocation for the whole batch.
	List Representation = iota

	// Vector batches allocate each sample separately.
	Vector
)

// String implements fmt.Stringer.
func (r Representation) String() string {
	switch r {
	case List:
		return "list"
	case Vector:
		return "vector"
	}
	return "invalid"
}

// Batch is a backend-tagged batch of samples sharing one DType.
// The zero value is not usable; use New or FromFlat.
type Batch struct {
	backend backends.Backend
	rep     Representation
	dtype   shapes.DType
	layout  shapes.Layout

	sampleShapes []shapes.Shape

	// flat is the contiguous storage of List batches, a slice of the
	// dtype's Go type. It is nil for Vector batches.
	flat any

	// samples holds one flat slice per sample. For List batches these
	// alias subranges of flat.
	samples []any
}

// New creates an empty batch with numSamples unallocated samples.
// Storage is allocated later by Resize (or by the operator running on it).
func New(backend backends.Backend, rep Representation, numSamples int) *Batch {
	if numSamples < 0 {
		exceptions.Panicf("batches.New: negative number of samples %d", numSamples)
	}
	shapesList := make([]shapes.Shape, numSamples)
	for i := range shapesList {
		shapesList[i] = shapes.Invalid()
	}
	return &Batch{
		backend:      backend,
		rep:          rep,
		dtype:        shapes.InvalidDType,
		sampleShapes: shapesList,
		samples:      make([]any, numSamples),
	}
}

// Backend returns the placement tag of the batch.
func (b *Batch) Backend() backends.Backend { return b.backend }

// Rep returns the representation tag of the batch.
func (b *Batch) Rep() Representation { return b.rep }

// DType returns the element type shared by all samples, or InvalidDType
// before the batch was sized.
func (b *Batch) DType() shapes.DType { return b.dtype }

// NumSamples returns the number of samples in the batch.
func (b *Batch) NumSamples() int { return len(b.samples) }

// Shape returns the shape of sample i.
func (b *Batch) Shape(i int) shapes.Shape {
	b.checkSample(i)
	return b.sampleShapes[i]
}

// Shapes returns the per-sample shapes. The returned slice is owned by the
// batch and must not be mutated.
func (b *Batch) Shapes() []shapes.Shape { return b.sampleShapes }

// SampleDim returns the rank shared by the samples, or 0 for an empty or
// unallocated batch.
func (b *Batch) SampleDim() int {
	if len(b.sampleShapes) == 0 || !b.sampleShapes[0].Ok() {
		return 0
	}
	return b.sampleShapes[0].Rank()
}

// Layout returns the axes layout label, possibly empty.
func (b *Batch) Layout() shapes.Layout { return b.layout }

// SetLayout sets the axes layout label. It panics if the batch is already
// sized and the layout's rank does not match the samples' rank.
func (b *Batch) SetLayout(layout shapes.Layout) {
	if !layout.Empty() && len(b.sampleShapes) > 0 && b.sampleShapes[0].Ok() &&
		!layout.MatchesRank(b.SampleDim()) {
		exceptions.Panicf("Batch.SetLayout(%q): layout rank %d does not match sample rank %d",
			layout, layout.Rank(), b.SampleDim())
	}
	b.layout = layout
}

// Resize allocates storage for the given per-sample shapes, replacing any
// previous storage. All shapes must be valid and share one DType.
func (b *Batch) Resize(sampleShapes []shapes.Shape) error {
	if len(sampleShapes) == 0 {
		return errors.Errorf("Batch.Resize: empty shape list")
	}
	dtype := sampleShapes[0].DType
	total := 0
	for i, s := range sampleShapes {
		if !s.Ok() {
			return errors.Errorf("Batch.Resize: invalid shape for sample %d", i)
		}
		if s.DType != dtype {
			return errors.Errorf("Batch.Resize: sample %d has DType %s, batch has %s", i, s.DType, dtype)
		}
		total += s.Size()
	}

	cloned := make([]shapes.Shape, len(sampleShapes))
	for i, s := range sampleShapes {
		cloned[i] = s.Clone()
	}

	sliceType := reflect.SliceOf(dtype.GoType())
	samples := make([]any, len(sampleShapes))
	switch b.rep {
	case List:
		flat := reflect.MakeSlice(sliceType, total, total)
		offset := 0
		for i, s := range cloned {
			size := s.Size()
			samples[i] = flat.Slice(offset, offset+size).Interface()
			offset += size
		}
		b.flat = flat.Interface()
		if klog.V(2).Enabled() {
			klog.Infof("batches: allocated %s contiguous for %d-sample %s list batch",
				humanize.IBytes(uint64(total*dtype.Size())), len(cloned), b.backend)
		}
	case Vector:
		for i, s := range cloned {
			size := s.Size()
			samples[i] = reflect.MakeSlice(sliceType, size, size).Interface()
		}
		b.flat = nil
	default:
		return errors.Errorf("Batch.Resize: invalid representation %d", b.rep)
	}

	b.dtype = dtype
	b.sampleShapes = cloned
	b.samples = samples
	if !b.layout.Empty() && !b.layout.MatchesRank(cloned[0].Rank()) {
		// A resize that changes rank drops a no-longer-matching layout.
		b.layout = ""
	}
	return nil
}

func (b *Batch) checkSample(i int) {
	if i < 0 || i >= len(b.samples) {
		exceptions.Panicf("batch sample index %d out-of-bounds for %d samples", i, len(b.samples))
	}
}

// String implements fmt.Stringer.
func (b *Batch) String() string {
	return fmt.Sprintf("Batch<%s,%s>{%d samples, dtype=%s, layout=%q}",
		b.backend, b.rep, len(b.samples), b.dtype, string(b.layout))
}
