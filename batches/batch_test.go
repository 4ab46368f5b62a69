package batches

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksztenderski/dali/backends"
	"github.com/ksztenderski/dali/types/shapes"
)

func sameStorage[T shapes.Supported](a, b []T) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

func TestFromFlat(t *testing.T) {
	b, err := FromFlat(backends.CPU, []int32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, backends.CPU, b.Backend())
	assert.Equal(t, List, b.Rep())
	assert.Equal(t, shapes.Int32, b.DType())
	assert.Equal(t, 2, b.NumSamples())
	assert.Equal(t, 1, b.SampleDim())
	assert.Equal(t, []int32{4, 5, 6}, SampleData[int32](b, 1))
	assert.True(t, sameStorage(FlatData[int32](b), SampleData[int32](b, 0)))

	_, err = FromFlat(backends.CPU, []int32{1, 2, 3}, 2, 3)
	require.Error(t, err)
	_, err = FromFlat(backends.CPU, []int32{}, 0)
	require.Error(t, err)
}

func TestResize(t *testing.T) {
	b := New(backends.CPU, List, 2)
	assert.Equal(t, shapes.InvalidDType, b.DType())
	require.NoError(t, b.Resize([]shapes.Shape{
		shapes.Make(shapes.Float32, 2),
		shapes.Make(shapes.Float32, 3),
	}))
	assert.Equal(t, shapes.Float32, b.DType())
	assert.Len(t, FlatData[float32](b), 5)
	assert.Len(t, SampleData[float32](b, 1), 3)

	// Samples alias the contiguous storage.
	FlatData[float32](b)[2] = 7
	assert.Equal(t, float32(7), SampleData[float32](b, 1)[0])

	// Mixed dtypes are rejected.
	require.Error(t, b.Resize([]shapes.Shape{
		shapes.Make(shapes.Float32, 2),
		shapes.Make(shapes.Int32, 2),
	}))
	require.Error(t, b.Resize(nil))
	require.Error(t, b.Resize([]shapes.Shape{shapes.Invalid()}))
}

func TestVectorResize(t *testing.T) {
	b := New(backends.CPU, Vector, 2)
	require.NoError(t, b.Resize([]shapes.Shape{
		shapes.Make(shapes.Int64, 2),
		shapes.Make(shapes.Int64, 2),
	}))
	require.Panics(t, func() { FlatData[int64](b) }) // No contiguous storage.
	SampleData[int64](b, 0)[0] = 42
	assert.Equal(t, int64(42), SampleData[int64](b, 0)[0])
	assert.Equal(t, int64(0), SampleData[int64](b, 1)[0])
}

func TestViewShares(t *testing.T) {
	list, err := FromFlat(backends.CPU, []int32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)

	vec := list.View(Vector)
	assert.Equal(t, Vector, vec.Rep())
	assert.True(t, sameStorage(SampleData[int32](list, 0), SampleData[int32](vec, 0)))

	// Writes through the view are visible in the viewed batch.
	SampleData[int32](vec, 1)[0] = 9
	assert.Equal(t, []int32{1, 2, 9, 4}, FlatData[int32](list))

	// View metadata is independent.
	vec.SetLayout("HW")
	assert.True(t, list.Layout().Empty())

	// A vector cannot be viewed as a list without a copy.
	pure := New(backends.CPU, Vector, 1)
	require.NoError(t, pure.Resize([]shapes.Shape{shapes.Make(shapes.Int32, 2)}))
	require.Panics(t, func() { pure.View(List) })
}

func TestAsListIdentityForLists(t *testing.T) {
	list, err := FromFlat(backends.GPU, []float32{1, 2}, 2)
	require.NoError(t, err)
	out, err := list.AsList()
	require.NoError(t, err)
	assert.Same(t, list, out)
}

func TestAsListCopiesVectors(t *testing.T) {
	vec := New(backends.CPU, Vector, 3)
	require.NoError(t, vec.Resize([]shapes.Shape{
		shapes.Make(shapes.Int32, 1),
		shapes.Make(shapes.Int32, 2),
		shapes.Make(shapes.Int32, 1),
	}))
	vec.SetLayout("W")
	SampleData[int32](vec, 0)[0] = 10
	copy(SampleData[int32](vec, 1), []int32{20, 21})
	SampleData[int32](vec, 2)[0] = 30

	out, err := vec.AsList()
	require.NoError(t, err)
	assert.Equal(t, List, out.Rep())
	assert.Equal(t, shapes.Layout("W"), out.Layout())
	assert.Equal(t, []int32{10, 20, 21, 30}, FlatData[int32](out))
	require.Equal(t, 3, out.NumSamples())
	for i := 0; i < 3; i++ {
		assert.True(t, out.Shape(i).Equal(vec.Shape(i)))
	}

	// Deep copy: mutating the source does not affect the materialized list.
	SampleData[int32](vec, 0)[0] = -1
	assert.Equal(t, int32(10), FlatData[int32](out)[0])
}

func TestCopyDataFrom(t *testing.T) {
	src, err := FromFlat(backends.CPU, []int32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	dst := New(backends.GPU, List, 2)
	require.NoError(t, dst.Resize(src.Shapes()))
	require.NoError(t, dst.CopyDataFrom(src))
	assert.Equal(t, []int32{1, 2, 3, 4}, FlatData[int32](dst))

	other := New(backends.CPU, List, 1)
	require.NoError(t, other.Resize([]shapes.Shape{shapes.Make(shapes.Int32, 2)}))
	require.Error(t, dst.CopyDataFrom(other)) // Sample count mismatch.
}

func TestSetLayoutValidation(t *testing.T) {
	b, err := FromFlat(backends.CPU, make([]uint8, 12), 1, 2, 2, 3)
	require.NoError(t, err)
	b.SetLayout("HWC")
	assert.Equal(t, shapes.Layout("HWC"), b.Layout())
	require.Panics(t, func() { b.SetLayout("HW") })

	// A rank-changing resize drops a stale layout.
	require.NoError(t, b.Resize([]shapes.Shape{shapes.Make(shapes.Uint8, 5)}))
	assert.True(t, b.Layout().Empty())
}

func TestSampleDataDTypeMismatchPanics(t *testing.T) {
	b, err := FromFlat(backends.CPU, []int32{1}, 1)
	require.NoError(t, err)
	require.Panics(t, func() { SampleData[float32](b, 0) })
	require.Panics(t, func() { SampleData[int32](b, 1) })
}
