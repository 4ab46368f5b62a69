// Package ops defines the operator surface: the Schema describing an
// operator's static interface, the Spec configuring one instantiation, the
// Operator capability executed by the eager core, the Workspace execution
// context it runs against, and the registries operators are instantiated
// from.
package ops

import (
	"github.com/ksztenderski/dali/types/shapes"
)

// Kind is the execution class of an operator instantiation.
type Kind int

const (
	// KindCPU operators read host inputs and produce host outputs on a
	// thread pool.
	KindCPU Kind = iota

	// KindGPU operators read device inputs and produce device outputs on
	// a stream.
	KindGPU

	// KindMixed operators read host inputs and produce device outputs on
	// a stream.
	KindMixed
)

// String implements fmt.Stringer, using the device names operators are
// registered under.
func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindGPU:
		return "gpu"
	case KindMixed:
		return "mixed"
	}
	return "invalid"
}

// OutputDesc describes one output slot as inferred by Setup: the
// per-sample shapes (which carry the DType) the slot should be sized to.
type OutputDesc struct {
	Shapes []shapes.Shape
}

// Operator is the capability performing one batch transformation. It is
// instantiated from a Spec (see Instantiate) and owned by the executor
// that created it.
type Operator interface {
	// Setup prepares the operator for one run against ws, whose inputs
	// and argument inputs are already bound. Returning a non-nil slice of
	// descriptors (one per output slot) signals the output shapes were
	// inferred; returning nil leaves output sizing to Run. Output slots
	// are only pre-sized from the descriptors when CanInferOutputs is
	// also true.
	Setup(ws *Workspace) ([]OutputDesc, error)

	// Run executes the transformation against ws. Inputs and argument
	// inputs are bound, and output slots are registered (pre-sized when
	// shape inference applied).
	Run(ws *Workspace) error

	// CanInferOutputs declares whether the operator's Setup descriptors
	// may be used to pre-size its outputs.
	CanInferOutputs() bool
}
