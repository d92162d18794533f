package compressor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openzl-go/openzl/pkg/compressor"
	"github.com/openzl-go/openzl/pkg/graph"
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// registerLeafNode installs a standard node that
// takes one serial input and produces one serial output, a minimal
// stand-in for a real transform's metadata (transform execution lives
// outside this module).
func registerLeafNode(t *testing.T, nm *graph.NodeManager, id graph.ID, prefix string) graph.ID {
	t.Helper()
	got, err := nm.RegisterStandard(id, prefix, graph.NodeDesc{
		InputMasks:       []graph.TypeMask{1},
		SingletonOutputs: []graph.TypeMask{1},
	}, 1, 1)
	require.NoError(t, err)
	return got
}

func registerStoreGraph(t *testing.T, gm *graph.GraphManager, id graph.ID) graph.ID {
	t.Helper()
	got, err := gm.RegisterStandardGraph(id, "!zl.store", []graph.TypeMask{1})
	require.NoError(t, err)
	return got
}

// TestSerializeDeserializeTrivialStaticGraph checks that a static
// graph with a single standard head node and a standard successor
// serializes to identical bytes on a second Serialize of the same
// compressor, and rebuilds onto a fresh compressor with matching
// structure.
func TestSerializeDeserializeTrivialStaticGraph(t *testing.T) {
	src := compressor.New()
	head := registerLeafNode(t, src.Nodes, 0, "!zl.leaf")
	store := registerStoreGraph(t, src.Graphs, 1)

	gid, err := src.Graphs.RegisterStaticGraph("my.graph", head, []graph.ID{store}, nil)
	require.NoError(t, err)
	require.NoError(t, src.SelectStartingGraphID(gid))

	ser := compressor.NewSerializer(nil)
	data, err := ser.Serialize(src)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	data2, err := ser.Serialize(src)
	require.NoError(t, err)
	require.Equal(t, data, data2, "serialization must be deterministic")

	dst := compressor.New()
	registerLeafNode(t, dst.Nodes, 0, "!zl.leaf")
	registerStoreGraph(t, dst.Graphs, 1)

	deser := compressor.NewDeserializer(nil)
	require.NoError(t, deser.Deserialize(data, dst))

	startID, ok := dst.GetStartingGraphID()
	require.True(t, ok)
	g, ok := dst.Graphs.GetByID(startID)
	require.True(t, ok)
	require.Equal(t, graph.Static, g.Type)
	require.Equal(t, graph.ID(0), g.HeadNode)
	require.Equal(t, []graph.ID{1}, g.Successors)
}

// TestSerializeCanonicalizesDuplicateParamSets checks that two
// nodes parameterized with logically equal local params share a single
// named param set in the "params" map.
func TestSerializeCanonicalizesDuplicateParamSets(t *testing.T) {
	src := compressor.New()
	base := registerLeafNode(t, src.Nodes, 0, "!zl.leaf")

	lp := localparams.Build(localparams.LocalParams{Ints: []localparams.IntParam{{ID: 1, Value: 42}}})
	n1, err := src.Nodes.Parameterize(base, lp, "custom.a")
	require.NoError(t, err)
	n2, err := src.Nodes.Parameterize(base, lp, "custom.b")
	require.NoError(t, err)
	require.NotEqual(t, n1, n2)

	ser := compressor.NewSerializer(nil)
	doc, err := ser.SerializeJSON(src)
	require.NoError(t, err)
	require.Contains(t, doc, `"custom.a#`)
	require.Contains(t, doc, `"custom.b#`)
	require.Equal(t, 1, strings.Count(doc, `"ints":{"1":42}`))
}

// TestDeserializeMissingDependencyErrors checks that a document
// naming a base node the target compressor has never heard of fails
// deserialization with a diagnosable error.
func TestDeserializeMissingDependencyErrors(t *testing.T) {
	src := compressor.New()
	head := registerLeafNode(t, src.Nodes, 0, "!zl.leaf")
	store := registerStoreGraph(t, src.Graphs, 1)
	gid, err := src.Graphs.RegisterStaticGraph("my.graph", head, []graph.ID{store}, nil)
	require.NoError(t, err)
	require.NoError(t, src.SelectStartingGraphID(gid))

	ser := compressor.NewSerializer(nil)
	data, err := ser.Serialize(src)
	require.NoError(t, err)

	dst := compressor.New() // deliberately missing !zl.leaf and !zl.store
	deser := compressor.NewDeserializer(nil)
	err = deser.Deserialize(data, dst)
	require.Error(t, err)
	require.Equal(t, zlerror.Corruption, zlerror.KindOf(err))
}

// TestGetDependenciesReportsExternalNames checks the dependency-query
// entry point against a document whose head node is external.
func TestGetDependenciesReportsExternalNames(t *testing.T) {
	src := compressor.New()
	head := registerLeafNode(t, src.Nodes, 0, "!zl.leaf")
	store := registerStoreGraph(t, src.Graphs, 1)
	gid, err := src.Graphs.RegisterStaticGraph("my.graph", head, []graph.ID{store}, nil)
	require.NoError(t, err)
	require.NoError(t, src.SelectStartingGraphID(gid))

	ser := compressor.NewSerializer(nil)
	data, err := ser.Serialize(src)
	require.NoError(t, err)

	deser := compressor.NewDeserializer(nil)
	deps, err := deser.GetDependencies(data, nil)
	require.NoError(t, err)
	require.Contains(t, deps.Nodes, "zl.leaf")
	require.Contains(t, deps.Graphs, "zl.store")
}

// TestSelectStartingGraphIDRejectsUnknownID checks the error-context
// contract: a failed call's message is recoverable via
// ErrorContextString.
func TestSelectStartingGraphIDRejectsUnknownID(t *testing.T) {
	c := compressor.New()
	err := c.SelectStartingGraphID(99)
	require.Error(t, err)
	require.NotEmpty(t, c.ErrorContextString(err))
}

func TestGlobalParameters(t *testing.T) {
	c := compressor.New()
	require.NoError(t, c.SetParameter(1, 100))
	require.NoError(t, c.SetParameter(2, 200))
	require.NoError(t, c.SetParameter(1, 111)) // overwrite

	v, ok := c.GetParameter(1)
	require.True(t, ok)
	require.EqualValues(t, 111, v)

	seen := map[int64]int64{}
	require.NoError(t, c.ForEachParam(func(k, v int64) error {
		seen[k] = v
		return nil
	}))
	require.Equal(t, map[int64]int64{1: 111, 2: 200}, seen)
}
