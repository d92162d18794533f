package graph

import (
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/name"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// NodeDesc carries the fields a caller supplies when registering a
// node, standard or custom.
type NodeDesc struct {
	InputMasks          []TypeMask
	SingletonOutputs    []TypeMask
	VariableOutputs     []TypeMask
	LastInputIsVariable bool
	CustomGraphs        []ID
	CustomNodes         []ID
	LocalParams         localparams.CanonicalParams
}

// NodeManager is the typed registry of nodes. Standard nodes occupy caller-supplied IDs below endOfStandard;
// custom (user-registered or parameterized) nodes are assigned
// sequential IDs starting at endOfStandard.
type NodeManager struct {
	formatVersion int

	standard       map[ID]Node
	standardByName map[string]ID

	custom *registry[Node]
}

// NewNodeManager constructs a NodeManager. endOfStandard is the first
// ID available for custom registration; formatVersion gates
// RegisterStandard's version-window check.
func NewNodeManager(endOfStandard ID, formatVersion, limit int) *NodeManager {
	return &NodeManager{
		formatVersion:  formatVersion,
		standard:       make(map[ID]Node),
		standardByName: make(map[string]ID),
		custom:         newRegistry[Node](endOfStandard, limit),
	}
}

// RegisterStandard installs a library-provided node at a caller-chosen
// low ID, active only while the manager's formatVersion falls within
// [minFormatVersion, maxFormatVersion].
func (nm *NodeManager) RegisterStandard(id ID, prefix string, desc NodeDesc, minFormatVersion, maxFormatVersion int) (ID, error) {
	if nm.formatVersion < minFormatVersion || nm.formatVersion > maxFormatVersion {
		return Illegal, zlerror.New(zlerror.FormatVersionUnsupported,
			"standard node %q requires format version in [%d,%d], got %d",
			prefix, minFormatVersion, maxFormatVersion, nm.formatVersion)
	}
	if id >= nm.custom.endOfStandard {
		return Illegal, zlerror.New(zlerror.NodeInvalidInput,
			"standard node id %d must be below endOfStandard %d", id, nm.custom.endOfStandard)
	}
	if _, exists := nm.standard[id]; exists {
		return Illegal, zlerror.New(zlerror.InvalidName, "standard node id %d already registered", id)
	}
	n, err := name.NewStandard(prefix)
	if err != nil {
		return Illegal, err
	}
	if _, exists := nm.standardByName[n.Unique()]; exists {
		return Illegal, zlerror.New(zlerror.InvalidName, "duplicate anchor name %q", n.Unique())
	}
	node := Node{
		ID:                  id,
		Name:                n,
		IsStandard:          true,
		InputMasks:          desc.InputMasks,
		SingletonOutputs:    desc.SingletonOutputs,
		VariableOutputs:     desc.VariableOutputs,
		LastInputIsVariable: desc.LastInputIsVariable,
		CustomGraphs:        desc.CustomGraphs,
		CustomNodes:         desc.CustomNodes,
		LocalParams:         desc.LocalParams,
	}
	nm.standard[id] = node
	nm.standardByName[n.Unique()] = id
	return id, nil
}

// RegisterCustom registers a brand-new user-defined node with no base.
func (nm *NodeManager) RegisterCustom(prefix string, desc NodeDesc) (ID, error) {
	if err := nm.custom.checkCapacity(); err != nil {
		return Illegal, err
	}
	n, err := name.New(prefix, uint32(nm.custom.nextID()))
	if err != nil {
		return Illegal, err
	}
	if err := nm.custom.checkNameAvailable(n); err != nil {
		return Illegal, err
	}
	node := Node{
		Name:                n,
		InputMasks:          desc.InputMasks,
		SingletonOutputs:    desc.SingletonOutputs,
		VariableOutputs:     desc.VariableOutputs,
		LastInputIsVariable: desc.LastInputIsVariable,
		CustomGraphs:        desc.CustomGraphs,
		CustomNodes:         desc.CustomNodes,
		LocalParams:         desc.LocalParams,
	}
	id := nm.custom.commit(n, node)
	node.ID = id
	nm.custom.setByIndex(id, node)
	return id, nil
}

// Parameterize clones base with overridden local params, allocating a
// fresh ID under prefix.
func (nm *NodeManager) Parameterize(base ID, params localparams.CanonicalParams, prefix string) (ID, error) {
	baseNode, ok := nm.GetByID(base)
	if !ok {
		return Illegal, zlerror.New(zlerror.NodeInvalidInput, "parameterize: base node %d not found", base)
	}
	if err := nm.custom.checkCapacity(); err != nil {
		return Illegal, err
	}
	n, err := name.New(prefix, uint32(nm.custom.nextID()))
	if err != nil {
		return Illegal, err
	}
	if err := nm.custom.checkNameAvailable(n); err != nil {
		return Illegal, err
	}
	baseID := base
	node := Node{
		Name:                n,
		InputMasks:          baseNode.InputMasks,
		SingletonOutputs:    baseNode.SingletonOutputs,
		VariableOutputs:     baseNode.VariableOutputs,
		LastInputIsVariable: baseNode.LastInputIsVariable,
		CustomGraphs:        baseNode.CustomGraphs,
		CustomNodes:         baseNode.CustomNodes,
		LocalParams:         params,
		BaseNode:            &baseID,
	}
	id := nm.custom.commit(n, node)
	node.ID = id
	nm.custom.setByIndex(id, node)
	return id, nil
}

// GetByID returns the node with the given ID, standard or custom.
func (nm *NodeManager) GetByID(id ID) (Node, bool) {
	if n, ok := nm.standard[id]; ok {
		return n, true
	}
	return nm.custom.byIndex(id)
}

// GetByName returns the node with the given unique name.
func (nm *NodeManager) GetByName(unique string) (Node, bool) {
	if id, ok := nm.standardByName[unique]; ok {
		return nm.GetByID(id)
	}
	if id, ok := nm.custom.idByName(unique); ok {
		return nm.custom.byIndex(id)
	}
	return Node{}, false
}

// IterateCustom returns every user-registered (non-standard) node in
// registration order, the set the serializer walks.
func (nm *NodeManager) IterateCustom() []Node { return nm.custom.all() }
