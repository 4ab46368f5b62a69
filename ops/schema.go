package ops

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/ksztenderski/dali/types/shapes"
)

// Schema is the static description of an operator: its input and output
// counts, per-input default layout candidates, and whether instantiations
// may have their outputs pre-sized from Setup's descriptors.
//
// Schemas are registered once per operator name, during package
// initialization, and configured fluently:
//
//	var _ = ops.RegisterSchema("decode").Inputs(1).Outputs(1).
//		InputLayouts(0, "HWC", "DHWC").InferOutputs()
type Schema struct {
	name                 string
	numInput, numOutput  int
	inputLayouts         map[int][]shapes.Layout
	declaresInferOutputs bool
}

var registeredSchemas = make(map[string]*Schema)

// RegisterSchema registers an empty schema under the operator name and
// returns it for fluent configuration.
//
// To be safe, call RegisterSchema during initialization of a package.
// It panics if the name is already registered.
func RegisterSchema(name string) *Schema {
	if _, found := registeredSchemas[name]; found {
		exceptions.Panicf("ops.RegisterSchema: schema %q already registered", name)
	}
	s := &Schema{
		name:         name,
		inputLayouts: make(map[int][]shapes.Layout),
	}
	registeredSchemas[name] = s
	return s
}

// SchemaFor returns the registered schema for the operator name.
func SchemaFor(name string) (*Schema, error) {
	s, found := registeredSchemas[name]
	if !found {
		return nil, errors.Errorf("ops: no schema registered for operator %q", name)
	}
	return s, nil
}

// Inputs declares the number of positional inputs.
func (s *Schema) Inputs(n int) *Schema {
	s.numInput = n
	return s
}

// Outputs declares the number of outputs.
func (s *Schema) Outputs(n int) *Schema {
	s.numOutput = n
	return s
}

// InputLayouts declares the default layout candidates for the positional
// input at index. The candidate matching a sample's rank is used when the
// caller did not label the input.
func (s *Schema) InputLayouts(index int, candidates ...shapes.Layout) *Schema {
	s.inputLayouts[index] = candidates
	return s
}

// InferOutputs declares that instantiations may have their outputs
// pre-sized from the descriptors produced by Setup.
func (s *Schema) InferOutputs() *Schema {
	s.declaresInferOutputs = true
	return s
}

// Name returns the operator name the schema is registered under.
func (s *Schema) Name() string { return s.name }

// NumInput returns the declared number of positional inputs.
func (s *Schema) NumInput() int { return s.numInput }

// NumOutput returns the declared number of outputs.
func (s *Schema) NumOutput() int { return s.numOutput }

// CanInferOutputs returns whether outputs may be pre-sized from Setup's
// descriptors.
func (s *Schema) CanInferOutputs() bool { return s.declaresInferOutputs }

// InputLayout returns the default layout for the positional input at index
// given the rank of its samples, or the empty layout if no declared
// candidate matches.
func (s *Schema) InputLayout(index, sampleDim int) shapes.Layout {
	for _, candidate := range s.inputLayouts[index] {
		if candidate.MatchesRank(sampleDim) {
			return candidate
		}
	}
	return ""
}
