package ops

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Factory instantiates an operator from its specification. It should fail
// for an invalid specification.
type Factory func(spec *Spec) (Operator, error)

var registeredFactories = make(map[string]map[Kind]Factory)

// Register the factory for the operator name and execution kind. An
// operator is registered separately for each kind it implements.
//
// To be safe, call Register during initialization of a package.
// It panics if the (name, kind) pair is already registered.
func Register(name string, kind Kind, factory Factory) {
	byKind, found := registeredFactories[name]
	if !found {
		byKind = make(map[Kind]Factory)
		registeredFactories[name] = byKind
	}
	if _, found := byKind[kind]; found {
		exceptions.Panicf("ops.Register: operator %q already registered for kind %s", name, kind)
	}
	byKind[kind] = factory
}

// Instantiate creates the operator the spec names, for the given execution
// kind. It fails if no factory is registered for the (name, kind) pair or
// if the factory rejects the spec; factory errors propagate unchanged.
func Instantiate(spec *Spec, kind Kind) (Operator, error) {
	factory, found := registeredFactories[spec.OpName()][kind]
	if !found {
		return nil, errors.Errorf("ops: no operator %q registered for kind %s", spec.OpName(), kind)
	}
	return factory(spec)
}
