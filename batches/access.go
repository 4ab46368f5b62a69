package batches

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/ksztenderski/dali/backends"
	"github.com/ksztenderski/dali/types/shapes"
)

// copyFlat assumes both flat slices are of the same underlying type.
func copyFlat(flatDst, flatSrc any) {
	reflect.Copy(reflect.ValueOf(flatDst), reflect.ValueOf(flatSrc))
}

// CopyDataFrom deep-copies every sample of src into this batch, in order.
// Both batches must already be sized with equal per-sample shapes.
func (b *Batch) CopyDataFrom(src *Batch) error {
	if src.NumSamples() != b.NumSamples() {
		return errors.Errorf("Batch.CopyDataFrom: %d samples into %d samples", src.NumSamples(), b.NumSamples())
	}
	if src.dtype != b.dtype {
		return errors.Errorf("Batch.CopyDataFrom: DType %s into %s", src.dtype, b.dtype)
	}
	for i := range b.samples {
		if !src.sampleShapes[i].Equal(b.sampleShapes[i]) {
			return errors.Errorf("Batch.CopyDataFrom: sample %d shape %s into %s",
				i, src.sampleShapes[i], b.sampleShapes[i])
		}
		copyFlat(b.samples[i], src.samples[i])
	}
	return nil
}

// SampleData returns the flat data of sample i.
//
// The returned slice aliases the batch's storage. It panics if the batch's
// DType does not match T or the sample is not allocated.
func SampleData[T shapes.Supported](b *Batch, i int) []T {
	b.checkSample(i)
	flat, ok := b.samples[i].([]T)
	if !ok {
		exceptions.Panicf("batches.SampleData[%s]: batch holds %s", shapes.DTypeFor[T](), b.dtype)
	}
	return flat
}

// FlatData returns the contiguous storage of a list batch.
//
// The returned slice aliases the batch's storage. It panics for vector
// batches and on DType mismatch.
func FlatData[T shapes.Supported](b *Batch) []T {
	if b.rep != List {
		exceptions.Panicf("batches.FlatData: batch is %s, only list batches have contiguous storage", b.rep)
	}
	flat, ok := b.flat.([]T)
	if !ok {
		exceptions.Panicf("batches.FlatData[%s]: batch holds %s", shapes.DTypeFor[T](), b.dtype)
	}
	return flat
}

// FromFlat builds a list batch of numSamples samples, each with shape
// sampleDims, from the given flat values. The values are copied.
func FromFlat[T shapes.Supported](backend backends.Backend, flat []T, numSamples int, sampleDims ...int) (*Batch, error) {
	dtype := shapes.DTypeFor[T]()
	sampleShape := shapes.Make(dtype, sampleDims...)
	if numSamples <= 0 {
		return nil, errors.Errorf("batches.FromFlat: numSamples must be > 0, got %d", numSamples)
	}
	if len(flat) != numSamples*sampleShape.Size() {
		return nil, errors.Errorf("batches.FromFlat: %d values for %d samples of shape %s",
			len(flat), numSamples, sampleShape)
	}
	sampleShapes := make([]shapes.Shape, numSamples)
	for i := range sampleShapes {
		sampleShapes[i] = sampleShape
	}
	b := New(backend, List, numSamples)
	if err := b.Resize(sampleShapes); err != nil {
		return nil, err
	}
	copy(b.flat.([]T), flat)
	return b, nil
}
