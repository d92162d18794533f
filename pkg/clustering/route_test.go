package clustering_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openzl-go/openzl/pkg/clustering"
)

// Three numeric streams tagged 1, 2, 1 at eltWidth 4; a configured
// cluster claims tag 1 and routes to successor 0, and a type default
// routes unconfigured numeric/4 streams to successor 1. Expect streams
// 0 and 2 clustered together, stream 1 alone.
func TestRouteClustersByTagWithTypeDefault(t *testing.T) {
	cfg := clustering.Config{
		Clusters: []clustering.Cluster{
			{
				TypeSuccessor: clustering.TypeSuccessor{
					Type: clustering.TypeNumeric, EltWidth: 4,
					SuccessorIdx: 0, ClusteringCodecIdx: 0,
				},
				MemberTags: []int64{1},
			},
		},
		TypeDefaults: []clustering.TypeSuccessor{
			{Type: clustering.TypeNumeric, EltWidth: 4, SuccessorIdx: 1, ClusteringCodecIdx: 0},
		},
	}
	inputs := []clustering.Input{
		{Type: clustering.TypeNumeric, EltWidth: 4, Tag: 1, TagPresent: true},
		{Type: clustering.TypeNumeric, EltWidth: 4, Tag: 2, TagPresent: true},
		{Type: clustering.TypeNumeric, EltWidth: 4, Tag: 1, TagPresent: true},
	}

	assignments, err := clustering.Route(cfg, inputs)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	require.Equal(t, []int{0, 2}, assignments[0].Members)
	require.Equal(t, clustering.SuccessorConfigured, assignments[0].Successor.Kind)
	require.EqualValues(t, 0, assignments[0].Successor.Idx)

	require.Equal(t, []int{1}, assignments[1].Members)
	require.Equal(t, clustering.SuccessorConfigured, assignments[1].Successor.Kind)
	require.EqualValues(t, 1, assignments[1].Successor.Idx)
}

func TestRouteUnconfiguredNoDefaultUsesGenericCompressor(t *testing.T) {
	cfg := clustering.Config{}
	inputs := []clustering.Input{
		{Type: clustering.TypeString, EltWidth: 1, Tag: 5, TagPresent: true},
	}
	assignments, err := clustering.Route(cfg, inputs)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, clustering.SuccessorGenericCompressor, assignments[0].Successor.Kind)
	require.Equal(t, clustering.CodecDefaultConcat, assignments[0].Codec.Kind)
	require.Equal(t, clustering.TypeString, assignments[0].Codec.Default)
}

func TestRouteMissingTagMetadataIsError(t *testing.T) {
	_, err := clustering.Route(clustering.Config{}, []clustering.Input{{}})
	require.Error(t, err)
}

func TestRouteDuplicateTagAcrossClustersIsError(t *testing.T) {
	cfg := clustering.Config{
		Clusters: []clustering.Cluster{
			{TypeSuccessor: clustering.TypeSuccessor{Type: clustering.TypeNumeric, EltWidth: 4}, MemberTags: []int64{1}},
			{TypeSuccessor: clustering.TypeSuccessor{Type: clustering.TypeNumeric, EltWidth: 4, SuccessorIdx: 1}, MemberTags: []int64{1}},
		},
	}
	_, err := clustering.Route(cfg, nil)
	require.Error(t, err)
}
