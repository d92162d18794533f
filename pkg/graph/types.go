// Package graph implements the typed node/graph registry: ID
// allocation, name uniqueness, dependency validation, and
// registration-order iteration.
package graph

import (
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/name"
)

// ID is the 32-bit opaque identifier shared by nodes and graphs
// . Each manager partitions its own ID space: values below
// its endOfStandard are library-provided; values at or above it are
// assigned sequentially as end_of_standard + len(vector).
type ID uint32

// Illegal is the sentinel value for "no such node/graph".
const Illegal ID = ^ID(0)

// TypeMask is a bitfield over stream types; two masks are "compatible"
// when their bitwise AND is non-zero.
type TypeMask uint32

// Compatible reports whether a and b share at least one type bit.
func (a TypeMask) Compatible(b TypeMask) bool { return a&b != 0 }

// GraphType enumerates the seven graph kinds.
type GraphType int

const (
	Standard GraphType = iota
	Static
	Selector
	Function
	MultiInput
	Parameterized
	Segmenter
)

func (t GraphType) String() string {
	switch t {
	case Standard:
		return "standard"
	case Static:
		return "static"
	case Selector:
		return "selector"
	case Function:
		return "function"
	case MultiInput:
		return "multiInput"
	case Parameterized:
		return "parameterized"
	case Segmenter:
		return "segmenter"
	default:
		return "unknown"
	}
}

// Node describes a typed transform object. Standard nodes carry
// their implementation out-of-band; this record only captures the
// metadata the registry, serializer, and clustering graph need.
type Node struct {
	ID         ID
	Name       name.Name
	IsStandard bool

	InputMasks          []TypeMask
	SingletonOutputs    []TypeMask
	VariableOutputs     []TypeMask
	LastInputIsVariable bool

	CustomGraphs []ID
	CustomNodes  []ID

	LocalParams localparams.CanonicalParams

	// BaseNode is the node this one was parameterized from, or nil for
	// standard/root custom nodes.
	BaseNode *ID
}

// Graph describes a routing/selection object.
type Graph struct {
	ID   ID
	Name name.Name
	Type GraphType

	InputMasks   []TypeMask
	CustomGraphs []ID
	CustomNodes  []ID

	LocalParams localparams.CanonicalParams

	// BaseGraph is set only for clones made by RegisterParameterizedGraph:
	// Parameterized graphs, and Segmenter graphs cloned from a segmenter.
	BaseGraph *ID

	// HeadNode and Successors are set only for Static graphs.
	HeadNode   ID
	Successors []ID
}

// Metadata is the uniform record returned by metadata accessors,
// regardless of the underlying graph's type.
type Metadata struct {
	ID           ID
	Name         name.Name
	Type         GraphType
	BaseGraph    *ID
	HeadNode     ID
	Successors   []ID
	CustomGraphs []ID
	CustomNodes  []ID
	LocalParams  localparams.CanonicalParams
}
