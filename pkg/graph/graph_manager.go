package graph

import (
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/name"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// GraphManager is the typed registry of graphs. It consults a
// NodeManager to validate a static graph's head
// node and that head node's declared outputs.
type GraphManager struct {
	nodes *NodeManager

	standard       map[ID]Graph
	standardByName map[string]ID

	custom *registry[Graph]
}

// NewGraphManager constructs a GraphManager backed by nodes for head-
// node lookups. limit is the ENCODER_GRAPH_LIMIT cap; 0 means unlimited.
func NewGraphManager(nodes *NodeManager, endOfStandard ID, limit int) *GraphManager {
	return &GraphManager{
		nodes:          nodes,
		standard:       make(map[ID]Graph),
		standardByName: make(map[string]ID),
		custom:         newRegistry[Graph](endOfStandard, limit),
	}
}

// RegisterStandardGraph installs a library-provided graph (e.g. the
// well-known "store" graph) at a caller-chosen low ID, so it can later
// be resolved purely by name when deserializing a document that
// expects it pre-registered.
func (gm *GraphManager) RegisterStandardGraph(id ID, prefix string, inputMasks []TypeMask) (ID, error) {
	if id >= gm.custom.endOfStandard {
		return Illegal, zlerror.New(zlerror.GraphInvalid, "standard graph id %d must be below endOfStandard %d", id, gm.custom.endOfStandard)
	}
	if _, exists := gm.standard[id]; exists {
		return Illegal, zlerror.New(zlerror.InvalidName, "standard graph id %d already registered", id)
	}
	n, err := name.NewStandard(prefix)
	if err != nil {
		return Illegal, err
	}
	if _, exists := gm.standardByName[n.Unique()]; exists {
		return Illegal, zlerror.New(zlerror.InvalidName, "duplicate anchor name %q", n.Unique())
	}
	g := Graph{ID: id, Name: n, Type: Standard, InputMasks: inputMasks}
	gm.standard[id] = g
	gm.standardByName[n.Unique()] = id
	return id, nil
}

// RegisterStaticGraph validates and registers a static graph: a head
// node plus a list of successor graphs whose count must equal the
// head node's declared output count, and whose single input mask must
// be compatible with the corresponding output.
func (gm *GraphManager) RegisterStaticGraph(prefix string, headNode ID, successors []ID, params *localparams.CanonicalParams) (ID, error) {
	head, ok := gm.nodes.GetByID(headNode)
	if !ok {
		return Illegal, zlerror.New(zlerror.NodeInvalidInput, "static graph: head node %d not found", headNode)
	}

	expected := len(head.SingletonOutputs) + len(head.VariableOutputs)
	if len(successors) != expected {
		return Illegal, zlerror.New(zlerror.GraphInvalidNumInputs,
			"static graph: head node %d declares %d outputs, got %d successors", headNode, expected, len(successors))
	}

	outputs := make([]TypeMask, 0, expected)
	outputs = append(outputs, head.SingletonOutputs...)
	outputs = append(outputs, head.VariableOutputs...)

	for i, succID := range successors {
		succ, ok := gm.GetByID(succID)
		if !ok {
			return Illegal, zlerror.New(zlerror.NodeInvalidInput, "static graph: successor %d not found", succID)
		}
		if len(succ.InputMasks) != 1 {
			return Illegal, zlerror.New(zlerror.NodeInvalidInput,
				"static graph: successor %q must have exactly one input, has %d", succ.Name.Unique(), len(succ.InputMasks))
		}
		if !succ.InputMasks[0].Compatible(outputs[i]) {
			return Illegal, zlerror.New(zlerror.NodeInvalidInput,
				"static graph: successor %q input type incompatible with head node output %d", succ.Name.Unique(), i)
		}
	}

	if err := gm.custom.checkCapacity(); err != nil {
		return Illegal, err
	}
	n, err := name.New(prefix, uint32(gm.custom.nextID()))
	if err != nil {
		return Illegal, err
	}
	if err := gm.custom.checkNameAvailable(n); err != nil {
		return Illegal, err
	}

	lp := head.LocalParams
	if params != nil {
		lp = *params
	}
	g := Graph{
		Name:        n,
		Type:        Static,
		InputMasks:  head.InputMasks,
		HeadNode:    headNode,
		Successors:  append([]ID(nil), successors...),
		LocalParams: lp,
	}
	id := gm.custom.commit(n, g)
	g.ID = id
	gm.custom.setByIndex(id, g)
	return id, nil
}

// MultiInputDesc describes a generic typed function graph.
type MultiInputDesc struct {
	InputMasks   []TypeMask
	CustomGraphs []ID
	CustomNodes  []ID
	LocalParams  localparams.CanonicalParams
}

// RegisterMultiInputGraph validates every custom child ID and stores a
// generic typed function graph.
func (gm *GraphManager) RegisterMultiInputGraph(prefix string, desc MultiInputDesc) (ID, error) {
	if err := gm.validateChildren(desc.CustomGraphs, desc.CustomNodes); err != nil {
		return Illegal, err
	}
	return gm.registerChildGraph(prefix, MultiInput, desc.InputMasks, desc.CustomGraphs, desc.CustomNodes, desc.LocalParams)
}

// RegisterSegmenter follows the same discipline as a multi-input graph
// but produces the distinct Segmenter kind.
func (gm *GraphManager) RegisterSegmenter(prefix string, desc MultiInputDesc) (ID, error) {
	if err := gm.validateChildren(desc.CustomGraphs, desc.CustomNodes); err != nil {
		return Illegal, err
	}
	return gm.registerChildGraph(prefix, Segmenter, desc.InputMasks, desc.CustomGraphs, desc.CustomNodes, desc.LocalParams)
}

// RegisterTypedSelector adapts a selector callback into a function-
// graph representation, after checking every candidate has a single
// input compatible with inputMask.
func (gm *GraphManager) RegisterTypedSelector(prefix string, inputMask TypeMask, candidates []ID) (ID, error) {
	for _, cand := range candidates {
		g, ok := gm.GetByID(cand)
		if !ok {
			return Illegal, zlerror.New(zlerror.NodeInvalidInput, "selector: candidate %d not found", cand)
		}
		if len(g.InputMasks) != 1 {
			return Illegal, zlerror.New(zlerror.NodeInvalidInput,
				"selector: candidate %q must have exactly one input, has %d", g.Name.Unique(), len(g.InputMasks))
		}
		if !g.InputMasks[0].Compatible(inputMask) {
			return Illegal, zlerror.New(zlerror.NodeInvalidInput,
				"selector: candidate %q input type incompatible with selector input", g.Name.Unique())
		}
	}
	return gm.registerChildGraph(prefix, Selector, []TypeMask{inputMask}, candidates, nil, localparams.CanonicalParams{})
}

func (gm *GraphManager) validateChildren(customGraphs, customNodes []ID) error {
	for _, id := range customGraphs {
		if _, ok := gm.GetByID(id); !ok {
			return zlerror.New(zlerror.GraphInvalid, "child graph %d not found", id)
		}
	}
	for _, id := range customNodes {
		if _, ok := gm.nodes.GetByID(id); !ok {
			return zlerror.New(zlerror.NodeInvalidInput, "child node %d not found", id)
		}
	}
	return nil
}

func (gm *GraphManager) registerChildGraph(prefix string, t GraphType, inputMasks []TypeMask, customGraphs, customNodes []ID, lp localparams.CanonicalParams) (ID, error) {
	if err := gm.custom.checkCapacity(); err != nil {
		return Illegal, err
	}
	n, err := name.New(prefix, uint32(gm.custom.nextID()))
	if err != nil {
		return Illegal, err
	}
	if err := gm.custom.checkNameAvailable(n); err != nil {
		return Illegal, err
	}
	g := Graph{
		Name:         n,
		Type:         t,
		InputMasks:   inputMasks,
		CustomGraphs: append([]ID(nil), customGraphs...),
		CustomNodes:  append([]ID(nil), customNodes...),
		LocalParams:  lp,
	}
	id := gm.custom.commit(n, g)
	g.ID = id
	gm.custom.setByIndex(id, g)
	return id, nil
}

// ParameterizedOverrides carries the non-null overrides applied when
// cloning a base graph.
type ParameterizedOverrides struct {
	LocalParams  *localparams.CanonicalParams
	CustomGraphs []ID
	CustomNodes  []ID
}

// RegisterParameterizedGraph clones base, applying any non-nil
// overrides. A segmenter base yields a parameterized segmenter: the
// clone's Type stays Segmenter and its non-nil BaseGraph alone marks
// it as parameterized. Any other base yields a parameterized
// multi-input graph, recorded as Parameterized.
func (gm *GraphManager) RegisterParameterizedGraph(prefix string, base ID, overrides ParameterizedOverrides) (ID, error) {
	baseGraph, ok := gm.GetByID(base)
	if !ok {
		return Illegal, zlerror.New(zlerror.GraphInvalid, "parameterized graph: base %d not found", base)
	}
	if err := gm.validateChildren(overrides.CustomGraphs, overrides.CustomNodes); err != nil {
		return Illegal, err
	}
	if err := gm.custom.checkCapacity(); err != nil {
		return Illegal, err
	}
	n, err := name.New(prefix, uint32(gm.custom.nextID()))
	if err != nil {
		return Illegal, err
	}
	if err := gm.custom.checkNameAvailable(n); err != nil {
		return Illegal, err
	}

	lp := baseGraph.LocalParams
	if overrides.LocalParams != nil {
		lp = *overrides.LocalParams
	}
	customGraphs := baseGraph.CustomGraphs
	if overrides.CustomGraphs != nil {
		customGraphs = overrides.CustomGraphs
	}
	customNodes := baseGraph.CustomNodes
	if overrides.CustomNodes != nil {
		customNodes = overrides.CustomNodes
	}

	cloneType := Parameterized
	if baseGraph.Type == Segmenter {
		cloneType = Segmenter
	}

	baseID := base
	g := Graph{
		Name:         n,
		Type:         cloneType,
		InputMasks:   baseGraph.InputMasks,
		CustomGraphs: append([]ID(nil), customGraphs...),
		CustomNodes:  append([]ID(nil), customNodes...),
		LocalParams:  lp,
		BaseGraph:    &baseID,
	}
	id := gm.custom.commit(n, g)
	g.ID = id
	gm.custom.setByIndex(id, g)
	return id, nil
}

// OverrideGraphParams in-place replaces a parameterized graph's custom
// children and/or local params; newPrefix must be nil, since names
// cannot be replaced.
func (gm *GraphManager) OverrideGraphParams(gid ID, params *localparams.CanonicalParams, customGraphs, customNodes []ID, newPrefix *string) error {
	if newPrefix != nil {
		return zlerror.New(zlerror.ParameterInvalid, "cannot rename graph %d during override", gid)
	}
	g, ok := gm.custom.byIndex(gid)
	if !ok {
		return zlerror.New(zlerror.GraphInvalid, "override: graph %d not found", gid)
	}
	if g.Type != Parameterized {
		return zlerror.New(zlerror.ParameterInvalid, "override: graph %q is not parameterized", g.Name.Unique())
	}
	if err := gm.validateChildren(customGraphs, customNodes); err != nil {
		return err
	}
	if params != nil {
		g.LocalParams = *params
	}
	if customGraphs != nil {
		g.CustomGraphs = append([]ID(nil), customGraphs...)
	}
	if customNodes != nil {
		g.CustomNodes = append([]ID(nil), customNodes...)
	}
	gm.custom.setByIndex(gid, g)
	return nil
}

// GetByID returns the graph with the given ID, standard or custom.
func (gm *GraphManager) GetByID(id ID) (Graph, bool) {
	if g, ok := gm.standard[id]; ok {
		return g, true
	}
	return gm.custom.byIndex(id)
}

// GetByName returns the graph with the given unique name.
func (gm *GraphManager) GetByName(unique string) (Graph, bool) {
	if id, ok := gm.standardByName[unique]; ok {
		return gm.GetByID(id)
	}
	if id, ok := gm.custom.idByName(unique); ok {
		return gm.custom.byIndex(id)
	}
	return Graph{}, false
}

// IterateCustom returns every user-registered graph in registration
// order, the set the serializer walks.
func (gm *GraphManager) IterateCustom() []Graph { return gm.custom.all() }

// Metadata returns the uniform accessor record for id.
func (gm *GraphManager) Metadata(id ID) (Metadata, bool) {
	g, ok := gm.GetByID(id)
	if !ok {
		return Metadata{}, false
	}
	return Metadata{
		ID:           g.ID,
		Name:         g.Name,
		Type:         g.Type,
		BaseGraph:    g.BaseGraph,
		HeadNode:     g.HeadNode,
		Successors:   g.Successors,
		CustomGraphs: g.CustomGraphs,
		CustomNodes:  g.CustomNodes,
		LocalParams:  g.LocalParams,
	}, true
}
