package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestMake(t *testing.T) {
	s := Make(Float32, 2, 3)
	require.True(t, s.Ok())
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, 6, s.Size())
	assert.Equal(t, 3, s.Dim(1))
	assert.Equal(t, 3, s.Dim(-1))
	assert.Equal(t, "(Float32)[2 3]", s.String())

	require.Panics(t, func() { Make(Float32, 2, 0) })
	require.Panics(t, func() { s.Dim(2) })
}

func TestScalar(t *testing.T) {
	s := Scalar[int32]()
	require.True(t, s.IsScalar())
	assert.Equal(t, Int32, s.DType)
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, "(Int32)", s.String())

	assert.False(t, Invalid().Ok())
	assert.False(t, Shape{}.Ok())
}

func TestEqualAndClone(t *testing.T) {
	s := Make(Int64, 4)
	assert.True(t, s.Equal(Make(Int64, 4)))
	assert.False(t, s.Equal(Make(Int32, 4)))
	assert.False(t, s.Equal(Make(Int64, 5)))

	c := s.Clone()
	c.Dimensions[0] = 7
	assert.Equal(t, 4, s.Dimensions[0])
}

func TestDType(t *testing.T) {
	assert.Equal(t, Int32, DTypeFor[int32]())
	assert.Equal(t, Float16, DTypeFor[float16.Float16]())
	assert.Equal(t, 2, Float16.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "Float32", Float32.String())
	assert.False(t, InvalidDType.Ok())
	require.Panics(t, func() { InvalidDType.GoType() })

	assert.Equal(t, Int16, FromGoType(Make(Int16).DType.GoType()))
}

func TestLayout(t *testing.T) {
	var l Layout
	assert.True(t, l.Empty())
	l = "HWC"
	assert.False(t, l.Empty())
	assert.Equal(t, 3, l.Rank())
	assert.True(t, l.MatchesRank(3))
	assert.False(t, l.MatchesRank(2))
}
