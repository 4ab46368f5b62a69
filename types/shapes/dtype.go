package shapes

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// DType indicates the type of the unit element of a tensor sample stored
// in a batch container. Values are stable (they are part of the operator
// schema surface), so new entries must be appended, never reordered.
type DType int32

//go:generate stringer -type=DType

const (
	InvalidDType DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16 // Stored as github.com/x448/float16.Float16.
	Float32
	Float64
)

// Number is the constraint for the numeric Go types that have a DType.
type Number interface {
	constraints.Integer | constraints.Float
}

// Supported is the constraint of all Go types that can back a batch sample.
type Supported interface {
	bool | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float16.Float16 | float32 | float64
}

var (
	dtypeToGoType = map[DType]reflect.Type{
		Bool:    reflect.TypeOf(bool(false)),
		Int8:    reflect.TypeOf(int8(0)),
		Int16:   reflect.TypeOf(int16(0)),
		Int32:   reflect.TypeOf(int32(0)),
		Int64:   reflect.TypeOf(int64(0)),
		Uint8:   reflect.TypeOf(uint8(0)),
		Uint16:  reflect.TypeOf(uint16(0)),
		Uint32:  reflect.TypeOf(uint32(0)),
		Uint64:  reflect.TypeOf(uint64(0)),
		Float16: reflect.TypeOf(float16.Float16(0)),
		Float32: reflect.TypeOf(float32(0)),
		Float64: reflect.TypeOf(float64(0)),
	}
	goTypeToDType = func() map[reflect.Type]DType {
		m := make(map[reflect.Type]DType, len(dtypeToGoType))
		for dtype, goType := range dtypeToGoType {
			m[goType] = dtype
		}
		return m
	}()
)

// Ok returns whether this is a valid DType.
func (dtype DType) Ok() bool {
	_, found := dtypeToGoType[dtype]
	return found
}

// GoType returns the reflection type of the Go value backing one element
// of this DType. It panics for an invalid DType.
func (dtype DType) GoType() reflect.Type {
	goType, found := dtypeToGoType[dtype]
	if !found {
		exceptions.Panicf("DType.GoType: invalid DType(%d)", dtype)
	}
	return goType
}

// Size returns the size in bytes of one element of this DType.
func (dtype DType) Size() int {
	return int(dtype.GoType().Size())
}

// FromGoType returns the DType backing the given Go reflection type, or
// InvalidDType if the type has no DType.
func FromGoType(goType reflect.Type) DType {
	return goTypeToDType[goType]
}

// DTypeFor returns the DType for the given supported Go type.
func DTypeFor[T Supported]() DType {
	var zero T
	return FromGoType(reflect.TypeOf(zero))
}
