package ops

import (
	"github.com/pkg/errors"
)

// MaxBatchSizeArg is the argument every specification must carry: the
// batch size operator instantiations are constructed for.
const MaxBatchSizeArg = "max_batch_size"

// DeviceIDArg optionally selects the device of device-kind
// instantiations. It defaults to device 0.
const DeviceIDArg = "device_id"

// Spec is the specification of one operator instantiation: the operator
// name plus its configuration arguments. Specs are consumed, not owned, by
// executors.
type Spec struct {
	opName string
	args   map[string]any
}

// NewSpec creates a specification for the named operator.
func NewSpec(opName string) *Spec {
	return &Spec{
		opName: opName,
		args:   make(map[string]any),
	}
}

// WithArg sets one configuration argument and returns the spec for
// chaining.
func (s *Spec) WithArg(name string, value any) *Spec {
	s.args[name] = value
	return s
}

// OpName returns the operator name of the spec.
func (s *Spec) OpName() string { return s.opName }

// Schema returns the registered schema of the spec's operator.
func (s *Spec) Schema() (*Schema, error) {
	return SchemaFor(s.opName)
}

// HasArg returns whether the argument was set.
func (s *Spec) HasArg(name string) bool {
	_, found := s.args[name]
	return found
}

// GetArgument returns the argument's value as T.
// It fails for a missing argument or a value of the wrong type.
func GetArgument[T any](s *Spec, name string) (T, error) {
	var zero T
	raw, found := s.args[name]
	if !found {
		return zero, errors.Errorf("ops: argument %q not set for operator %q", name, s.opName)
	}
	value, ok := raw.(T)
	if !ok {
		return zero, errors.Errorf("ops: argument %q of operator %q is %T, not %T", name, s.opName, raw, zero)
	}
	return value, nil
}

// GetArgumentOr returns the argument's value as T, or defaultValue if the
// argument was not set. A value of the wrong type is still an error.
func GetArgumentOr[T any](s *Spec, name string, defaultValue T) (T, error) {
	if !s.HasArg(name) {
		return defaultValue, nil
	}
	return GetArgument[T](s, name)
}
