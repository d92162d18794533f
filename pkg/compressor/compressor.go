// Package compressor implements the compressor object: the top-level
// container that wires an arena, a graph/node manager, a starting
// graph, and global parameters, plus a DFS-driven CBOR schema
// writer/reader that round-trips the serializable subset of those
// components.
package compressor

import (
	"github.com/openzl-go/openzl/pkg/arena"
	"github.com/openzl-go/openzl/pkg/graph"
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/logger"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// FormatVersion is the CBOR document "version" this build of the
// module writes and enforces on decode.
const FormatVersion = 1

// Default boundaries between standard (library-provided) and custom
// (user-registered) IDs. Callers that embed a larger
// standard table can override these via Config.
const (
	DefaultEndOfStandardNode  graph.ID = 1 << 16
	DefaultEndOfStandardGraph graph.ID = 1 << 16
)

// Config collects a Compressor's construction-time limits: format
// version, graph count cap, and arena byte budget. Built with
// functional options; there is no global mutable config singleton.
type Config struct {
	FormatVersion      int
	GraphLimit         int
	ArenaLimitBytes    int
	EndOfStandardNode  graph.ID
	EndOfStandardGraph graph.ID
	Logger             logger.Logger
}

// Option mutates a Config at construction time.
type Option func(*Config)

// WithFormatVersion overrides the format version a Compressor is
// constructed with (and, for a Deserializer's target, checked against).
func WithFormatVersion(v int) Option { return func(c *Config) { c.FormatVersion = v } }

// WithGraphLimit caps the number of custom graphs this Compressor may
// register; 0 means unlimited.
func WithGraphLimit(n int) Option { return func(c *Config) { c.GraphLimit = n } }

// WithArenaLimit wraps the Compressor's arena in a byte-budgeted
// arena.Limited.
func WithArenaLimit(n int) Option { return func(c *Config) { c.ArenaLimitBytes = n } }

// WithLogger sets Config.Logger; the nil-safe default is logger.Nop().
// The Compressor itself emits no log events: registration is not
// logged, and the Serializer and Deserializer take their own logger.
func WithLogger(l logger.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithEndOfStandardNode overrides the first custom node ID.
func WithEndOfStandardNode(id graph.ID) Option {
	return func(c *Config) { c.EndOfStandardNode = id }
}

// WithEndOfStandardGraph overrides the first custom graph ID.
func WithEndOfStandardGraph(id graph.ID) Option {
	return func(c *Config) { c.EndOfStandardGraph = id }
}

// Compressor is the top-level single-writer object: an arena plus a
// graph/node manager plus a starting graph
// and a set of global (compressor-level) parameters. Concurrent
// readers are safe once construction is finished; concurrent mutation
// is not supported (no internal locking is provided on the
// registration/mutation paths).
type Compressor struct {
	cfg   Config
	arena arena.Arena

	Nodes  *graph.NodeManager
	Graphs *graph.GraphManager

	startingGraph *graph.ID
	globalParams  []localparams.IntParam

	log logger.Logger
	ctx zlerror.OperationContext
}

// New constructs an empty Compressor ready for node/graph registration.
func New(opts ...Option) *Compressor {
	cfg := Config{
		FormatVersion:      FormatVersion,
		EndOfStandardNode:  DefaultEndOfStandardNode,
		EndOfStandardGraph: DefaultEndOfStandardGraph,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var backing arena.Arena = arena.NewHeap()
	if cfg.ArenaLimitBytes > 0 {
		backing = arena.NewLimited(backing, cfg.ArenaLimitBytes)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	nodes := graph.NewNodeManager(cfg.EndOfStandardNode, cfg.FormatVersion, 0)
	graphs := graph.NewGraphManager(nodes, cfg.EndOfStandardGraph, cfg.GraphLimit)

	return &Compressor{cfg: cfg, arena: backing, Nodes: nodes, Graphs: graphs, log: log}
}

// Arena returns the Compressor's backing arena, the allocation
// authority every arena-owned buffer (param blobs, decoded CBOR
// strings/bytes) must come from.
func (c *Compressor) Arena() arena.Arena { return c.arena }

// FormatVersion reports the version this Compressor was constructed
// with.
func (c *Compressor) FormatVersion() int { return c.cfg.FormatVersion }

// SelectStartingGraphID sets the compressor-level entry point.
func (c *Compressor) SelectStartingGraphID(id graph.ID) error {
	if _, ok := c.Graphs.GetByID(id); !ok {
		return c.ctx.Record(zlerror.New(zlerror.GraphInvalid, "select starting graph: %d not found", id))
	}
	gid := id
	c.startingGraph = &gid
	return nil
}

// GetStartingGraphID returns the starting graph ID, if one has been
// selected.
func (c *Compressor) GetStartingGraphID() (graph.ID, bool) {
	if c.startingGraph == nil {
		return graph.Illegal, false
	}
	return *c.startingGraph, true
}

// SetParameter sets (or overwrites) a global, compressor-level integer
// parameter. Global parameters are
// int-only: there is no blob/ref family at this level.
func (c *Compressor) SetParameter(key int64, value int64) error {
	for i, p := range c.globalParams {
		if p.ID == int(key) {
			c.globalParams[i].Value = value
			return nil
		}
	}
	c.globalParams = append(c.globalParams, localparams.IntParam{ID: int(key), Value: value})
	return nil
}

// GetParameter returns the value of a global parameter, if set.
func (c *Compressor) GetParameter(key int64) (int64, bool) {
	for _, p := range c.globalParams {
		if p.ID == int(key) {
			return p.Value, true
		}
	}
	return 0, false
}

// ForEachNode visits every custom (user-registered) node in
// registration order. cb may return an error to abort iteration; that
// error is returned unchanged.
func (c *Compressor) ForEachNode(cb func(n graph.Node) error) error {
	for _, n := range c.Nodes.IterateCustom() {
		if err := cb(n); err != nil {
			return err
		}
	}
	return nil
}

// ForEachGraph visits every custom graph in registration order, with
// the same abort contract as ForEachNode.
func (c *Compressor) ForEachGraph(cb func(g graph.Graph) error) error {
	for _, g := range c.Graphs.IterateCustom() {
		if err := cb(g); err != nil {
			return err
		}
	}
	return nil
}

// ForEachParam visits every set global parameter in registration
// order. cb may return an error to abort
// iteration early.
func (c *Compressor) ForEachParam(cb func(key, value int64) error) error {
	for _, p := range c.globalParams {
		if err := cb(int64(p.ID), p.Value); err != nil {
			return err
		}
	}
	return nil
}

// ErrorContextString returns the most recently recorded diagnostic
// message for err.
func (c *Compressor) ErrorContextString(err error) string {
	return c.ctx.ErrorContextString(err)
}
