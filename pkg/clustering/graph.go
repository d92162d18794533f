package clustering

import (
	"github.com/openzl-go/openzl/pkg/arena"
	"github.com/openzl-go/openzl/pkg/graph"
	"github.com/openzl-go/openzl/pkg/localparams"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// Local-param IDs the clustering graph reads its configuration
// through.
const (
	ConfigParamID     = 315
	ConfigSizeParamID = 316
)

// RegisterGraph serializes cfg to CBOR and registers a parameterized
// clone of baseGraph carrying the document as its local-param blob,
// with successors installed as the clone's custom graphs and
// clusteringCodecs as its custom nodes. Every successorIdx and
// clusteringCodecIdx in cfg is validated against the supplied lists
// before anything is registered.
func RegisterGraph(gm *graph.GraphManager, prefix string, baseGraph graph.ID, cfg Config, successors, clusteringCodecs []graph.ID) (graph.ID, error) {
	if err := cfg.Validate(len(clusteringCodecs), len(successors)); err != nil {
		return graph.Illegal, err
	}
	data, err := Serialize(cfg)
	if err != nil {
		return graph.Illegal, err
	}
	lp := localparams.Build(localparams.LocalParams{
		Ints:  []localparams.IntParam{{ID: ConfigSizeParamID, Value: int64(len(data))}},
		Blobs: []localparams.BlobParam{{ID: ConfigParamID, Value: data}},
	})
	return gm.RegisterParameterizedGraph(prefix, baseGraph, graph.ParameterizedOverrides{
		LocalParams:  &lp,
		CustomGraphs: successors,
		CustomNodes:  clusteringCodecs,
	})
}

// ConfigFromParams extracts and deserializes the clustering
// configuration from a graph's local params. An unconfigured graph
// (no blob at ConfigParamID) is an error: unclustered default routing
// is not specified.
func ConfigFromParams(lp localparams.CanonicalParams, a arena.Arena) (Config, error) {
	blob, ok := lp.GetBlob(ConfigParamID)
	if !ok {
		return Config{}, zlerror.New(zlerror.GraphParameterInvalid,
			"clustering graph carries no configuration blob (param %d)", ConfigParamID)
	}
	if size, ok := lp.GetInt(ConfigSizeParamID); ok && int(size) != len(blob) {
		return Config{}, zlerror.New(zlerror.Corruption,
			"clustering config size param %d disagrees with blob length %d", size, len(blob))
	}
	return Deserialize(blob, a)
}

// EdgeDestination says where one of a clustering codec's output edges
// is routed.
type EdgeDestination int

const (
	// DestSuccessor routes the edge to the cluster's successor graph.
	DestSuccessor EdgeDestination = iota
	// DestFieldLZ routes the edge to the built-in field-lz graph, the
	// fixed destination of a concat codec's segment-sizes stream.
	DestFieldLZ
)

// ConcatOutputDestinations assigns a destination to each output edge a
// clustering codec emitted for one cluster: a single output is the concatenated payload and goes
// to the cluster's successor; with two outputs, the first is a numeric
// stream of per-member sizes routed to field-lz and the second is the
// payload.
func ConcatOutputDestinations(nbOutputs int) ([]EdgeDestination, error) {
	switch nbOutputs {
	case 1:
		return []EdgeDestination{DestSuccessor}, nil
	case 2:
		return []EdgeDestination{DestFieldLZ, DestSuccessor}, nil
	default:
		return nil, zlerror.New(zlerror.TransformExecutionFailure,
			"clustering codec emitted %d outputs, expected 1 or 2", nbOutputs)
	}
}
