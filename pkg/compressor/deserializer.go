package compressor

import (
	"sort"
	"strings"

	"github.com/openzl-go/openzl/pkg/a1c"
	"github.com/openzl-go/openzl/pkg/arena"
	"github.com/openzl-go/openzl/pkg/graph"
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/logger"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// Deserializer rebuilds a Compressor's custom nodes and graphs from
// bytes produced by Serializer.Serialize. It walks the
// document's "nodes" then "graphs" maps, resolving each entry's
// dependencies depth-first before registering the entry itself, and
// resolves any name the document itself doesn't define by looking it
// up on the target Compressor (a pre-registered standard or anchor
// component). The DFS rides Go's call stack: a visiting-set catches
// cycles, and dependency-first order falls out of recursion instead of
// a manual pending-stack with a second-visit retry.
type Deserializer struct {
	log logger.Logger
	ctx zlerror.OperationContext
}

// NewDeserializer constructs a Deserializer. log may be nil.
func NewDeserializer(log logger.Logger) *Deserializer {
	if log == nil {
		log = logger.Nop()
	}
	return &Deserializer{log: log}
}

// ErrorContextString returns the most recently recorded diagnostic
// message for err.
func (d *Deserializer) ErrorContextString(err error) string { return d.ctx.ErrorContextString(err) }

type visitState int

const (
	visitUnvisited visitState = iota
	visitPending
	visitDone
)

type deserializeState struct {
	c          *Compressor
	paramsDict localparams.ParamSetDict
	nodesMap   *a1c.Item
	graphsMap  *a1c.Item

	nodeState map[string]visitState
	nodeIDs   map[string]graph.ID

	graphState map[string]visitState
	graphIDs   map[string]graph.ID
}

// Deserialize decodes data and rebuilds every node and graph it
// describes onto c, then selects its starting graph and global
// parameters if the document recorded any.
func (d *Deserializer) Deserialize(data []byte, c *Compressor) error {
	root, err := decodeDocument(c.Arena(), data)
	if err != nil {
		return d.ctx.Record(err)
	}
	if err := checkFormatVersion(root, c.FormatVersion()); err != nil {
		return d.ctx.Record(err)
	}

	paramsDict, err := extractParamsDict(root)
	if err != nil {
		return d.ctx.Record(err)
	}

	nodesMap := root.MapGet("nodes")
	if nodesMap == nil || nodesMap.Type != a1c.TypeMap {
		return d.ctx.Record(zlerror.New(zlerror.Corruption, `deserialize: missing or invalid "nodes"`))
	}
	graphsMap := root.MapGet("graphs")
	if graphsMap == nil || graphsMap.Type != a1c.TypeMap {
		return d.ctx.Record(zlerror.New(zlerror.Corruption, `deserialize: missing or invalid "graphs"`))
	}

	st := &deserializeState{
		c:          c,
		paramsDict: paramsDict,
		nodesMap:   nodesMap,
		graphsMap:  graphsMap,
		nodeState:  make(map[string]visitState),
		nodeIDs:    make(map[string]graph.ID),
		graphState: make(map[string]visitState),
		graphIDs:   make(map[string]graph.ID),
	}

	for i := range nodesMap.Map {
		if _, err := st.buildNode(nodesMap.Map[i].Key.Str); err != nil {
			return d.ctx.Record(err)
		}
	}
	for i := range graphsMap.Map {
		if _, err := st.buildGraph(graphsMap.Map[i].Key.Str); err != nil {
			return d.ctx.Record(err)
		}
	}

	if startItem := root.MapGet("start"); startItem != nil && startItem.Type == a1c.TypeString {
		id, err := st.buildGraph(startItem.Str)
		if err != nil {
			return d.ctx.Record(err)
		}
		if err := c.SelectStartingGraphID(id); err != nil {
			return d.ctx.Record(err)
		}
	}

	if gpItem := root.MapGet("global_params"); gpItem != nil {
		lp, err := localparams.Resolve(gpItem, localparams.LocalParams{}, paramsDict)
		if err != nil {
			return d.ctx.Record(err)
		}
		if len(lp.Blobs) != 0 {
			return d.ctx.Record(zlerror.New(zlerror.Corruption, "deserialize: can't set global blob params"))
		}
		if len(lp.Refs) != 0 {
			return d.ctx.Record(zlerror.New(zlerror.Corruption, "deserialize: can't set global ref params"))
		}
		for _, p := range lp.Ints {
			if err := c.SetParameter(int64(p.ID), p.Value); err != nil {
				return d.ctx.Record(err)
			}
		}
	}

	return nil
}

// ownParams detaches a resolved param set from the decode buffer: the
// document is decoded in referenceSource mode, so blob params would
// otherwise alias the caller's input bytes past the call.
func (st *deserializeState) ownParams(canon localparams.CanonicalParams) (localparams.CanonicalParams, error) {
	moved, err := localparams.Transfer(st.c.Arena(), canon)
	if err != nil {
		return localparams.CanonicalParams{}, zlerror.Wrap(zlerror.Allocation, err, "copy params into compressor arena")
	}
	return moved, nil
}

func (st *deserializeState) buildNode(ser string) (graph.ID, error) {
	if id, ok := st.nodeIDs[ser]; ok {
		return id, nil
	}
	if st.nodeState[ser] == visitPending {
		return graph.Illegal, zlerror.New(zlerror.Corruption, "node %q participates in a dependency cycle", ser)
	}

	entry := st.nodesMap.MapGet(ser)
	if entry == nil {
		n, ok := st.c.Nodes.GetByName(ser)
		if !ok {
			return graph.Illegal, zlerror.New(zlerror.Corruption,
				"serialized compressor depends on node %q, which is neither defined in the "+
					"document nor pre-registered on the target compressor", ser)
		}
		st.nodeIDs[ser] = n.ID
		return n.ID, nil
	}
	if entry.Type != a1c.TypeMap {
		return graph.Illegal, zlerror.New(zlerror.Corruption, "node %q: entry must be a map", ser)
	}
	st.nodeState[ser] = visitPending

	baseItem := entry.MapGet("base")
	if baseItem == nil || baseItem.Type != a1c.TypeString {
		return graph.Illegal, zlerror.New(zlerror.Corruption, `node %q: missing or invalid "base"`, ser)
	}
	baseID, err := st.buildNode(baseItem.Str)
	if err != nil {
		return graph.Illegal, err
	}
	baseNode, ok := st.c.Nodes.GetByID(baseID)
	if !ok {
		return graph.Illegal, zlerror.New(zlerror.Corruption, "node %q: base node %q vanished after construction", ser, baseItem.Str)
	}

	lp, err := localparams.Resolve(entry.MapGet("params"), baseLocalParams(baseNode.LocalParams), st.paramsDict)
	if err != nil {
		return graph.Illegal, err
	}
	canon, err := st.ownParams(localparams.Build(lp))
	if err != nil {
		return graph.Illegal, err
	}

	id, err := st.c.Nodes.Parameterize(baseID, canon, stripNameFragment(ser))
	if err != nil {
		return graph.Illegal, err
	}
	st.nodeIDs[ser] = id
	st.nodeState[ser] = visitDone
	return id, nil
}

func (st *deserializeState) buildGraph(ser string) (graph.ID, error) {
	if id, ok := st.graphIDs[ser]; ok {
		return id, nil
	}
	if st.graphState[ser] == visitPending {
		return graph.Illegal, zlerror.New(zlerror.Corruption, "graph %q participates in a dependency cycle", ser)
	}

	entry := st.graphsMap.MapGet(ser)
	if entry == nil {
		g, ok := st.c.Graphs.GetByName(ser)
		if !ok {
			return graph.Illegal, zlerror.New(zlerror.Corruption,
				"serialized compressor depends on graph %q, which is neither defined in the "+
					"document nor pre-registered on the target compressor", ser)
		}
		st.graphIDs[ser] = g.ID
		return g.ID, nil
	}
	if entry.Type != a1c.TypeMap {
		return graph.Illegal, zlerror.New(zlerror.Corruption, "graph %q: entry must be a map", ser)
	}
	st.graphState[ser] = visitPending

	typeItem := entry.MapGet("type")
	if typeItem == nil || typeItem.Type != a1c.TypeString {
		return graph.Illegal, zlerror.New(zlerror.Corruption, `graph %q: missing or invalid "type"`, ser)
	}

	var id graph.ID
	var err error
	switch typeItem.Str {
	case "static":
		id, err = st.buildStaticGraph(ser, entry)
	case "parameterized":
		id, err = st.buildParameterizedGraph(ser, entry)
	default:
		err = zlerror.New(zlerror.Corruption, "graph %q: serialized graph can't have type %q", ser, typeItem.Str)
	}
	if err != nil {
		return graph.Illegal, err
	}

	st.graphIDs[ser] = id
	st.graphState[ser] = visitDone
	return id, nil
}

func (st *deserializeState) buildStaticGraph(ser string, entry *a1c.Item) (graph.ID, error) {
	successorsItem := entry.MapGet("successors")
	if successorsItem == nil || successorsItem.Type != a1c.TypeArray {
		return graph.Illegal, zlerror.New(zlerror.Corruption, `static graph %q: missing or invalid "successors"`, ser)
	}
	successors := make([]graph.ID, len(successorsItem.Array))
	for i := range successorsItem.Array {
		item := &successorsItem.Array[i]
		if item.Type != a1c.TypeString {
			return graph.Illegal, zlerror.New(zlerror.Corruption, "static graph %q: successor %d is not a string", ser, i)
		}
		sid, err := st.buildGraph(item.Str)
		if err != nil {
			return graph.Illegal, err
		}
		successors[i] = sid
	}

	nodeItem := entry.MapGet("node")
	if nodeItem == nil || nodeItem.Type != a1c.TypeString {
		return graph.Illegal, zlerror.New(zlerror.Corruption, `static graph %q: missing or invalid "node"`, ser)
	}
	headID, err := st.buildNode(nodeItem.Str)
	if err != nil {
		return graph.Illegal, err
	}
	headNode, ok := st.c.Nodes.GetByID(headID)
	if !ok {
		return graph.Illegal, zlerror.New(zlerror.Corruption, "static graph %q: head node %q vanished after construction", ser, nodeItem.Str)
	}

	// A null params entry means the graph carried its head node's own
	// params; leaving the override unset restores that default.
	var params *localparams.CanonicalParams
	if paramsItem := entry.MapGet("params"); paramsItem != nil && paramsItem.Type != a1c.TypeNull {
		lp, err := localparams.Resolve(paramsItem, baseLocalParams(headNode.LocalParams), st.paramsDict)
		if err != nil {
			return graph.Illegal, err
		}
		canon, err := st.ownParams(localparams.Build(lp))
		if err != nil {
			return graph.Illegal, err
		}
		params = &canon
	}

	id, err := st.c.Graphs.RegisterStaticGraph(stripNameFragment(ser), headID, successors, params)
	if err != nil {
		return graph.Illegal, err
	}
	return id, nil
}

func (st *deserializeState) buildParameterizedGraph(ser string, entry *a1c.Item) (graph.ID, error) {
	baseItem := entry.MapGet("base")
	if baseItem == nil || baseItem.Type != a1c.TypeString {
		return graph.Illegal, zlerror.New(zlerror.Corruption, `parameterized graph %q: missing or invalid "base"`, ser)
	}
	baseID, err := st.buildGraph(baseItem.Str)
	if err != nil {
		return graph.Illegal, err
	}

	graphsItem := entry.MapGet("graphs")
	if graphsItem == nil || graphsItem.Type != a1c.TypeArray {
		return graph.Illegal, zlerror.New(zlerror.Corruption, `parameterized graph %q: missing or invalid "graphs"`, ser)
	}
	customGraphs := make([]graph.ID, len(graphsItem.Array))
	for i := range graphsItem.Array {
		item := &graphsItem.Array[i]
		if item.Type != a1c.TypeString {
			return graph.Illegal, zlerror.New(zlerror.Corruption, "parameterized graph %q: custom graph %d is not a string", ser, i)
		}
		gid, err := st.buildGraph(item.Str)
		if err != nil {
			return graph.Illegal, err
		}
		customGraphs[i] = gid
	}

	nodesItem := entry.MapGet("nodes")
	if nodesItem == nil || nodesItem.Type != a1c.TypeArray {
		return graph.Illegal, zlerror.New(zlerror.Corruption, `parameterized graph %q: missing or invalid "nodes"`, ser)
	}
	customNodes := make([]graph.ID, len(nodesItem.Array))
	for i := range nodesItem.Array {
		item := &nodesItem.Array[i]
		if item.Type != a1c.TypeString {
			return graph.Illegal, zlerror.New(zlerror.Corruption, "parameterized graph %q: custom node %d is not a string", ser, i)
		}
		nid, err := st.buildNode(item.Str)
		if err != nil {
			return graph.Illegal, err
		}
		customNodes[i] = nid
	}

	baseGraph, ok := st.c.Graphs.GetByID(baseID)
	if !ok {
		return graph.Illegal, zlerror.New(zlerror.Corruption, "parameterized graph %q: base graph %q vanished after construction", ser, baseItem.Str)
	}
	var params *localparams.CanonicalParams
	if paramsItem := entry.MapGet("params"); paramsItem != nil && paramsItem.Type != a1c.TypeNull {
		lp, err := localparams.Resolve(paramsItem, baseLocalParams(baseGraph.LocalParams), st.paramsDict)
		if err != nil {
			return graph.Illegal, err
		}
		canon, err := st.ownParams(localparams.Build(lp))
		if err != nil {
			return graph.Illegal, err
		}
		params = &canon
	}

	id, err := st.c.Graphs.RegisterParameterizedGraph(stripNameFragment(ser), baseID, graph.ParameterizedOverrides{
		LocalParams:  params,
		CustomGraphs: customGraphs,
		CustomNodes:  customNodes,
	})
	if err != nil {
		return graph.Illegal, err
	}
	return id, nil
}

// Dependencies names every node and graph a serialized document
// depends on but does not define itself, the set a caller must pre-register on a Compressor before
// Deserialize will succeed against it.
type Dependencies struct {
	Nodes  []string
	Graphs []string
}

// GetDependencies decodes data and reports its unresolved node/graph
// dependencies without mutating anything. c may be nil to report every
// external reference regardless of what any particular compressor
// already provides; if non-nil, names c already has registered (under
// an anchor name) are excluded.
func (d *Deserializer) GetDependencies(data []byte, c *Compressor) (Dependencies, error) {
	var scratch arena.Arena = arenaOrHeap(c)
	root, err := decodeDocument(scratch, data)
	if err != nil {
		return Dependencies{}, d.ctx.Record(err)
	}
	wantVersion := FormatVersion
	if c != nil {
		wantVersion = c.FormatVersion()
	}
	if err := checkFormatVersion(root, wantVersion); err != nil {
		return Dependencies{}, d.ctx.Record(err)
	}

	nodesMap := root.MapGet("nodes")
	if nodesMap == nil || nodesMap.Type != a1c.TypeMap {
		return Dependencies{}, d.ctx.Record(zlerror.New(zlerror.Corruption, `dependencies: missing or invalid "nodes"`))
	}
	graphsMap := root.MapGet("graphs")
	if graphsMap == nil || graphsMap.Type != a1c.TypeMap {
		return Dependencies{}, d.ctx.Record(zlerror.New(zlerror.Corruption, `dependencies: missing or invalid "graphs"`))
	}

	dq := &depsQuery{c: c, nodeNames: map[string]bool{}, graphNames: map[string]bool{}}

	for i := range nodesMap.Map {
		pair := &nodesMap.Map[i]
		name := pair.Key.Str
		dq.addNodeRef(name, false)
		baseItem := pair.Val.MapGet("base")
		if baseItem == nil || baseItem.Type != a1c.TypeString {
			return Dependencies{}, d.ctx.Record(zlerror.New(zlerror.Corruption, `node %q: missing or invalid "base"`, name))
		}
		dq.addNodeRef(baseItem.Str, true)
	}

	for i := range graphsMap.Map {
		pair := &graphsMap.Map[i]
		name := pair.Key.Str
		dq.addGraphRef(name, false)

		typeItem := pair.Val.MapGet("type")
		if typeItem == nil || typeItem.Type != a1c.TypeString {
			return Dependencies{}, d.ctx.Record(zlerror.New(zlerror.Corruption, `graph %q: missing or invalid "type"`, name))
		}
		switch typeItem.Str {
		case "static":
			if err := dq.visitStringArray(pair.Val.MapGet("successors"), dq.addGraphRef); err != nil {
				return Dependencies{}, d.ctx.Record(err)
			}
			headItem := pair.Val.MapGet("node")
			if headItem == nil || headItem.Type != a1c.TypeString {
				return Dependencies{}, d.ctx.Record(zlerror.New(zlerror.Corruption, `static graph %q: missing or invalid "node"`, name))
			}
			dq.addNodeRef(headItem.Str, true)
		case "parameterized":
			baseItem := pair.Val.MapGet("base")
			if baseItem == nil || baseItem.Type != a1c.TypeString {
				return Dependencies{}, d.ctx.Record(zlerror.New(zlerror.Corruption, `parameterized graph %q: missing or invalid "base"`, name))
			}
			dq.addGraphRef(baseItem.Str, true)
			if err := dq.visitStringArray(pair.Val.MapGet("graphs"), dq.addGraphRef); err != nil {
				return Dependencies{}, d.ctx.Record(err)
			}
			if err := dq.visitStringArray(pair.Val.MapGet("nodes"), dq.addNodeRef); err != nil {
				return Dependencies{}, d.ctx.Record(err)
			}
		default:
			return Dependencies{}, d.ctx.Record(zlerror.New(zlerror.Corruption, "graph %q: serialized graph can't have type %q", name, typeItem.Str))
		}
	}

	var deps Dependencies
	for name, resolved := range dq.nodeNames {
		if !resolved {
			deps.Nodes = append(deps.Nodes, name)
		}
	}
	for name, resolved := range dq.graphNames {
		if !resolved {
			deps.Graphs = append(deps.Graphs, name)
		}
	}
	sort.Strings(deps.Nodes)
	sort.Strings(deps.Graphs)
	return deps, nil
}

type depsQuery struct {
	c *Compressor
	// nodeNames/graphNames map a referenced name to whether it is
	// resolved: either defined in the document itself, or (for an
	// unsuffixed, anchor-shaped name) already present on c.
	nodeNames  map[string]bool
	graphNames map[string]bool
}

func (dq *depsQuery) addNodeRef(name string, missing bool) {
	if _, visited := dq.nodeNames[name]; visited {
		if !missing {
			dq.nodeNames[name] = true
		}
		return
	}
	resolved := !missing
	if missing && dq.c != nil && !strings.Contains(name, "#") {
		if _, ok := dq.c.Nodes.GetByName(name); ok {
			resolved = true
		}
	}
	dq.nodeNames[name] = resolved
}

func (dq *depsQuery) addGraphRef(name string, missing bool) {
	if _, visited := dq.graphNames[name]; visited {
		if !missing {
			dq.graphNames[name] = true
		}
		return
	}
	resolved := !missing
	if missing && dq.c != nil && !strings.Contains(name, "#") {
		if _, ok := dq.c.Graphs.GetByName(name); ok {
			resolved = true
		}
	}
	dq.graphNames[name] = resolved
}

func (dq *depsQuery) visitStringArray(item *a1c.Item, add func(string, bool)) error {
	if item == nil || item.Type != a1c.TypeArray {
		return zlerror.New(zlerror.Corruption, "dependencies: expected an array of names")
	}
	for i := range item.Array {
		el := &item.Array[i]
		if el.Type != a1c.TypeString {
			return zlerror.New(zlerror.Corruption, "dependencies: name at index %d is not a string", i)
		}
		add(el.Str, true)
	}
	return nil
}

func decodeDocument(backing arena.Arena, data []byte) (*a1c.Item, error) {
	dec := a1c.NewDecoder(backing, a1c.DecoderConfig{ReferenceSource: true, RejectUnknownSimple: true})
	item, err := dec.Decode(data)
	if err != nil {
		return nil, zlerror.Wrap(zlerror.Corruption, err, "decode CBOR")
	}
	if item.Type != a1c.TypeMap {
		return nil, zlerror.New(zlerror.Corruption, "deserialize: root item must be a map, got %s", item.Type)
	}
	return item, nil
}

func checkFormatVersion(root *a1c.Item, want int) error {
	versionItem := root.MapGet("version")
	if versionItem == nil || versionItem.Type != a1c.TypeInt64 {
		return zlerror.New(zlerror.Corruption, `deserialize: missing or invalid "version"`)
	}
	if int(versionItem.Int64) != want {
		return zlerror.New(zlerror.FormatVersionUnsupported,
			"serialized compressor format version %d is not supported by this build (expects %d)",
			versionItem.Int64, want)
	}
	return nil
}

func extractParamsDict(root *a1c.Item) (localparams.ParamSetDict, error) {
	paramsItem := root.MapGet("params")
	if paramsItem == nil || paramsItem.Type != a1c.TypeMap {
		return nil, zlerror.New(zlerror.Corruption, `deserialize: missing or invalid "params"`)
	}
	dict := make(localparams.ParamSetDict, len(paramsItem.Map))
	for i := range paramsItem.Map {
		pair := &paramsItem.Map[i]
		if pair.Key.Type != a1c.TypeString {
			return nil, zlerror.New(zlerror.Corruption, "deserialize: param set name must be a string")
		}
		dict[pair.Key.Str] = &pair.Val
	}
	return dict, nil
}

func baseLocalParams(c localparams.CanonicalParams) localparams.LocalParams {
	return localparams.LocalParams{Ints: c.Ints, Blobs: c.Blobs, Refs: c.Refs}
}

// stripNameFragment removes a non-anchor name's trailing "#<id>"
// disambiguator, recovering the prefix to re-register it under on the
// target compressor. Anchor names have no fragment and pass through unchanged.
func stripNameFragment(unique string) string {
	if idx := strings.IndexByte(unique, '#'); idx >= 0 {
		return unique[:idx]
	}
	return unique
}

func arenaOrHeap(c *Compressor) arena.Arena {
	if c != nil {
		return c.Arena()
	}
	return arena.NewHeap()
}
