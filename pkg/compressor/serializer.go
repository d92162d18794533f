package compressor

import (
	"context"
	"fmt"
	"sort"

	"github.com/openzl-go/openzl/pkg/a1c"
	"github.com/openzl-go/openzl/pkg/graph"
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/logger"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// Serializer performs the scan -> canonicalize -> assemble -> emit
// pipeline. A Serializer is single-use per call to
// Serialize/SerializeJSON but may be reused across calls against
// different compressors; each call resets its internal scan state.
type Serializer struct {
	log logger.Logger
	ctx zlerror.OperationContext

	paramNames   []string
	paramByName  map[string]localparams.CanonicalParams
	memoByValue  []memoEntry
	nodeEntries  []nodeEntry
	graphEntries []graphEntry
}

type memoEntry struct {
	params localparams.CanonicalParams
	name   string
}

type nodeEntry struct {
	name   string
	base   string
	params string
}

type graphEntry struct {
	name       string
	typ        graph.GraphType
	base       string // parameterized only
	headNode   string // static only
	successors []string
	nodes      []string // parameterized custom nodes only
	params     string   // "" means write CBOR null
	hasParams  bool
}

// NewSerializer constructs a Serializer. log may be nil (logger.Nop()
// is used in that case).
func NewSerializer(log logger.Logger) *Serializer {
	if log == nil {
		log = logger.Nop()
	}
	return &Serializer{log: log}
}

func (s *Serializer) reset() {
	s.paramNames = nil
	s.paramByName = make(map[string]localparams.CanonicalParams)
	s.memoByValue = nil
	s.nodeEntries = nil
	s.graphEntries = nil
}

// ErrorContextString returns the most recently recorded diagnostic
// message for err.
func (s *Serializer) ErrorContextString(err error) string { return s.ctx.ErrorContextString(err) }

// Serialize encodes c's serializable state to deterministic CBOR bytes
// . c must not be mutated concurrently with this call.
func (s *Serializer) Serialize(c *Compressor) ([]byte, error) {
	root, err := s.assemble(c)
	if err != nil {
		return nil, err
	}
	data, err := a1c.Encode(root)
	if err != nil {
		return nil, s.ctx.Record(zlerror.Wrap(zlerror.Generic, err, "encode CBOR"))
	}
	return data, nil
}

// SerializeJSON renders the same tree Serialize would encode to CBOR
// as the ASCII-only debug JSON dump. It is
// explicitly not guaranteed to round-trip back through the
// deserializer; it exists for inspection, not round-tripping.
func (s *Serializer) SerializeJSON(c *Compressor) (string, error) {
	root, err := s.assemble(c)
	if err != nil {
		return "", err
	}
	return a1c.DumpJSON(root), nil
}

func (s *Serializer) assemble(c *Compressor) (*a1c.Item, error) {
	s.reset()
	ctx := context.Background()
	s.log.Debug(ctx, "serialize: scan begin")

	if err := s.scanNodes(c); err != nil {
		return nil, s.ctx.Record(err)
	}
	if err := s.scanGraphs(c); err != nil {
		return nil, s.ctx.Record(err)
	}
	globalParamsName, err := s.recordGlobalParams(c)
	if err != nil {
		return nil, s.ctx.Record(err)
	}
	s.log.Debug(ctx, "serialize: scan complete",
		"nodes", len(s.nodeEntries), "graphs", len(s.graphEntries), "paramSets", len(s.paramNames))

	root := &a1c.Item{}
	rb := root.MapBuilder(6)

	p := rb.Add()
	p.Key.SetStringRef("version")
	p.Val.SetInt64(int64(c.FormatVersion()))

	p = rb.Add()
	p.Key.SetStringRef("params")
	s.writeParams(&p.Val)

	p = rb.Add()
	p.Key.SetStringRef("nodes")
	s.writeNodes(&p.Val)

	p = rb.Add()
	p.Key.SetStringRef("graphs")
	s.writeGraphs(&p.Val)

	p = rb.Add()
	p.Key.SetStringRef("start")
	if startID, ok := c.GetStartingGraphID(); ok {
		g, ok := c.Graphs.GetByID(startID)
		if !ok {
			return nil, zlerror.New(zlerror.GraphInvalid, "serialize: starting graph %d not found", startID)
		}
		p.Val.SetStringRef(g.Name.Unique())
	} else {
		p.Val.SetUndefined()
	}

	p = rb.Add()
	p.Key.SetStringRef("global_params")
	p.Val.SetStringRef(globalParamsName)

	s.log.Debug(ctx, "serialize: assemble complete")
	return root, nil
}

// recordParamSet memoizes lp to a stable 16-hex-digit name, reusing an
// existing name when lp is logically equal to a previously recorded
// set.
func (s *Serializer) recordParamSet(lp localparams.CanonicalParams) (string, error) {
	for _, m := range s.memoByValue {
		if m.params.Eq(lp) {
			return m.name, nil
		}
	}
	name := s.nameParamSet(lp.Hash())
	s.paramByName[name] = lp
	s.paramNames = append(s.paramNames, name)
	s.memoByValue = append(s.memoByValue, memoEntry{params: lp, name: name})
	return name, nil
}

func (s *Serializer) nameParamSet(hash uint64) string {
	disambig := 0
	for {
		var name string
		if disambig == 0 {
			name = fmt.Sprintf("%016x", hash)
		} else {
			name = fmt.Sprintf("%016x_%d", hash, disambig)
		}
		if _, used := s.paramByName[name]; !used {
			return name
		}
		disambig++
	}
}

func (s *Serializer) scanNodes(c *Compressor) error {
	return c.ForEachNode(func(n graph.Node) error {
		if n.BaseNode == nil {
			if !n.Name.IsAnchor() {
				return zlerror.New(zlerror.GraphNonserializable,
					"non-serializable node %q (no base node) does not have an explicit anchor name; "+
						"non-serializable nodes must be pre-registered under a stable name on the target compressor",
					n.Name.Unique())
			}
			return nil // Pre-registered by name on the target compressor; not emitted.
		}

		base, ok := c.Nodes.GetByID(*n.BaseNode)
		if !ok {
			return zlerror.New(zlerror.Corruption, "node %q: base node %d not found", n.Name.Unique(), *n.BaseNode)
		}
		if !refParamsEq(n.LocalParams, base.LocalParams) {
			return zlerror.New(zlerror.GraphNonserializable,
				"node %q has different ref-params than its base node %q; ref-params are non-serializable",
				n.Name.Unique(), base.Name.Unique())
		}

		paramName, err := s.recordParamSet(n.LocalParams)
		if err != nil {
			return err
		}
		s.nodeEntries = append(s.nodeEntries, nodeEntry{
			name: n.Name.Unique(), base: base.Name.Unique(), params: paramName,
		})
		return nil
	})
}

func (s *Serializer) scanGraphs(c *Compressor) error {
	return c.ForEachGraph(func(g graph.Graph) error {
		// A segmenter or multi-input graph carrying a base is a
		// parameterized clone and crosses the wire as "parameterized".
		// (RegisterParameterizedGraph keeps the Segmenter kind in memory
		// for a segmenter clone.)
		typ := g.Type
		if g.BaseGraph != nil && (typ == graph.Segmenter || typ == graph.MultiInput) {
			typ = graph.Parameterized
		}

		switch typ {
		case graph.Selector, graph.Function, graph.MultiInput, graph.Segmenter:
			return nil // Non-serializable; expected pre-registered by name.
		case graph.Static, graph.Parameterized:
			// handled below
		default:
			return zlerror.New(zlerror.Corruption, "graph %q: unexpected graph type %s", g.Name.Unique(), typ)
		}

		entry := graphEntry{name: g.Name.Unique(), typ: typ}
		writeParams := true

		switch typ {
		case graph.Static:
			head, ok := c.Nodes.GetByID(g.HeadNode)
			if !ok {
				return zlerror.New(zlerror.Corruption, "graph %q: head node %d not found", g.Name.Unique(), g.HeadNode)
			}
			entry.headNode = head.Name.Unique()
			if g.LocalParams.Eq(head.LocalParams) {
				writeParams = false
			}
			for _, succID := range g.Successors {
				succ, ok := c.Graphs.GetByID(succID)
				if !ok {
					return zlerror.New(zlerror.Corruption, "graph %q: successor %d not found", g.Name.Unique(), succID)
				}
				entry.successors = append(entry.successors, succ.Name.Unique())
			}

		case graph.Parameterized:
			baseID := *g.BaseGraph
			base, ok := c.Graphs.GetByID(baseID)
			if !ok {
				return zlerror.New(zlerror.Corruption, "graph %q: base graph %d not found", g.Name.Unique(), baseID)
			}
			entry.base = base.Name.Unique()
			if !refParamsEq(g.LocalParams, base.LocalParams) {
				return zlerror.New(zlerror.GraphNonserializable,
					"graph %q has different ref-params than its base graph %q; ref-params are non-serializable",
					g.Name.Unique(), base.Name.Unique())
			}
			for _, succID := range g.CustomGraphs {
				succ, ok := c.Graphs.GetByID(succID)
				if !ok {
					return zlerror.New(zlerror.Corruption, "graph %q: custom graph %d not found", g.Name.Unique(), succID)
				}
				entry.successors = append(entry.successors, succ.Name.Unique())
			}
			for _, nodeID := range g.CustomNodes {
				node, ok := c.Nodes.GetByID(nodeID)
				if !ok {
					return zlerror.New(zlerror.Corruption, "graph %q: custom node %d not found", g.Name.Unique(), nodeID)
				}
				entry.nodes = append(entry.nodes, node.Name.Unique())
			}
		}

		if writeParams {
			paramName, err := s.recordParamSet(g.LocalParams)
			if err != nil {
				return err
			}
			entry.params = paramName
			entry.hasParams = true
		}

		s.graphEntries = append(s.graphEntries, entry)
		return nil
	})
}

func (s *Serializer) recordGlobalParams(c *Compressor) (string, error) {
	var lp localparams.LocalParams
	_ = c.ForEachParam(func(key, value int64) error {
		lp.Ints = append(lp.Ints, localparams.IntParam{ID: int(key), Value: value})
		return nil
	})
	return s.recordParamSet(localparams.Build(lp))
}

// refParamsEq compares only the ref-param family, the non-serializable
// family whose divergence from a base forces graph_nonserializable.
func refParamsEq(a, b localparams.CanonicalParams) bool {
	return localparams.CanonicalParams{Refs: a.Refs}.Eq(localparams.CanonicalParams{Refs: b.Refs})
}

func (s *Serializer) writeParams(item *a1c.Item) {
	names := append([]string(nil), s.paramNames...)
	sort.Strings(names)
	pairs := item.MapBuilder(len(names))
	for _, name := range names {
		lp := s.paramByName[name]
		p := pairs.Add()
		p.Key.SetStringRef(name)
		writeParamSetBody(&p.Val, lp)
	}
}

func writeParamSetBody(item *a1c.Item, lp localparams.CanonicalParams) {
	b := item.MapBuilder(2)

	p := b.Add()
	p.Key.SetStringRef("ints")
	ib := p.Val.MapBuilder(len(lp.Ints))
	for _, ip := range lp.Ints {
		pair := ib.Add()
		pair.Key.SetInt64(int64(ip.ID))
		pair.Val.SetInt64(ip.Value)
	}

	p = b.Add()
	p.Key.SetStringRef("blobs")
	bb := p.Val.MapBuilder(len(lp.Blobs))
	for _, bp := range lp.Blobs {
		pair := bb.Add()
		pair.Key.SetInt64(int64(bp.ID))
		pair.Val.SetBytesRef(bp.Value)
	}
}

func (s *Serializer) writeNodes(item *a1c.Item) {
	entries := append([]nodeEntry(nil), s.nodeEntries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	pairs := item.MapBuilder(len(entries))
	for _, e := range entries {
		p := pairs.Add()
		p.Key.SetStringRef(e.name)
		b := p.Val.MapBuilder(2)

		bp := b.Add()
		bp.Key.SetStringRef("base")
		bp.Val.SetStringRef(e.base)

		bp = b.Add()
		bp.Key.SetStringRef("params")
		bp.Val.SetStringRef(e.params)
	}
}

func (s *Serializer) writeGraphs(item *a1c.Item) {
	entries := append([]graphEntry(nil), s.graphEntries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	pairs := item.MapBuilder(len(entries))
	for _, e := range entries {
		p := pairs.Add()
		p.Key.SetStringRef(e.name)
		writeGraphBody(&p.Val, e)
	}
}

func writeGraphBody(item *a1c.Item, e graphEntry) {
	switch e.typ {
	case graph.Static:
		b := item.MapBuilder(4)
		p := b.Add()
		p.Key.SetStringRef("type")
		p.Val.SetStringRef("static")

		p = b.Add()
		p.Key.SetStringRef("node")
		p.Val.SetStringRef(e.headNode)

		p = b.Add()
		p.Key.SetStringRef("successors")
		succItems := p.Val.SetArray(len(e.successors))
		for i, name := range e.successors {
			succItems[i].SetStringRef(name)
		}

		p = b.Add()
		p.Key.SetStringRef("params")
		writeOptionalParamsRef(&p.Val, e)

	case graph.Parameterized:
		b := item.MapBuilder(5)
		p := b.Add()
		p.Key.SetStringRef("type")
		p.Val.SetStringRef("parameterized")

		p = b.Add()
		p.Key.SetStringRef("base")
		p.Val.SetStringRef(e.base)

		p = b.Add()
		p.Key.SetStringRef("graphs")
		gItems := p.Val.SetArray(len(e.successors))
		for i, name := range e.successors {
			gItems[i].SetStringRef(name)
		}

		p = b.Add()
		p.Key.SetStringRef("nodes")
		nItems := p.Val.SetArray(len(e.nodes))
		for i, name := range e.nodes {
			nItems[i].SetStringRef(name)
		}

		p = b.Add()
		p.Key.SetStringRef("params")
		writeOptionalParamsRef(&p.Val, e)
	}
}

func writeOptionalParamsRef(item *a1c.Item, e graphEntry) {
	if e.hasParams {
		item.SetStringRef(e.params)
	} else {
		item.SetNull()
	}
}
