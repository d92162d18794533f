package clustering

import "github.com/openzl-go/openzl/pkg/zlerror"

// ClusteringTagMetadataID is the integer metadata key every input
// must carry its clustering tag under.
const ClusteringTagMetadataID = 0

// Input describes one input stream as seen by the routing algorithm.
// Actually reading the metadata and type/eltWidth off a real input
// edge is the job of the embedding transform runtime; Route only consumes the already-
// extracted descriptor.
type Input struct {
	Type       StreamType
	EltWidth   int64
	Tag        int64
	TagPresent bool
}

// SuccessorKind distinguishes a cluster's successor between one named
// by the graph's configured successor list and the built-in generic-
// compressor fallback used for unconfigured tags with no type
// default.
type SuccessorKind int

const (
	SuccessorConfigured SuccessorKind = iota
	SuccessorGenericCompressor
)

// CodecKind distinguishes a cluster's clustering codec between one
// named by the graph's configured clustering-codec list and the
// built-in concat codec chosen by stream type.
type CodecKind int

const (
	CodecConfigured CodecKind = iota
	CodecDefaultConcat
)

// Successor names which downstream graph a cluster routes to.
type Successor struct {
	Kind SuccessorKind
	// Idx indexes the parameterized graph's successor list; valid only
	// when Kind == SuccessorConfigured.
	Idx int64
}

// Codec names which node concatenates a cluster's members.
type Codec struct {
	Kind CodecKind
	// Idx indexes the parameterized graph's clustering-codec list;
	// valid only when Kind == CodecConfigured.
	Idx int64
	// Default names the built-in concat codec to use when Kind ==
	// CodecDefaultConcat (serial/numeric/struct/string, per input type).
	Default StreamType
}

// ClusterAssignment is one cluster's membership and routing decision.
// Members holds input indices in the order they were encountered.
type ClusterAssignment struct {
	Successor Successor
	Codec     Codec
	Members   []int
}

type tagKey struct {
	tag      int64
	typ      StreamType
	eltWidth int64
}

type typeKey struct {
	typ      StreamType
	eltWidth int64
}

// Route runs the clustering algorithm against inputs, given that cfg
// was already validated at registration time
// (Config.Validate) with the successor/clustering-codec counts the
// graph was parameterized with. It decides, for every input, which
// cluster it belongs to and how that cluster should ultimately be
// routed; it performs no I/O and invokes no codec itself (codec
// execution is an external collaborator).
//
// Clusters holding exactly one member should be routed directly to
// their successor by the caller, skipping the clustering codec
// ; clusters with more than one member should be
// concatenated first (step 7).
func Route(cfg Config, inputs []Input) ([]ClusterAssignment, error) {
	assignments := make([]ClusterAssignment, len(cfg.Clusters))
	tagToCluster := make(map[tagKey]int, len(cfg.Clusters))

	for i, cl := range cfg.Clusters {
		assignments[i] = ClusterAssignment{
			Successor: Successor{Kind: SuccessorConfigured, Idx: cl.TypeSuccessor.SuccessorIdx},
			Codec:     Codec{Kind: CodecConfigured, Idx: cl.TypeSuccessor.ClusteringCodecIdx},
		}
		for _, tag := range cl.MemberTags {
			key := tagKey{tag: tag, typ: cl.TypeSuccessor.Type, eltWidth: cl.TypeSuccessor.EltWidth}
			if _, dup := tagToCluster[key]; dup {
				return nil, zlerror.New(zlerror.NodeInvalidInput,
					"clustering: tag %d type %d eltWidth %d is a member of more than one cluster",
					tag, cl.TypeSuccessor.Type, cl.TypeSuccessor.EltWidth)
			}
			tagToCluster[key] = i
		}
	}

	typeDefaults := make(map[typeKey]TypeSuccessor, len(cfg.TypeDefaults))
	for _, td := range cfg.TypeDefaults {
		typeDefaults[typeKey{typ: td.Type, eltWidth: td.EltWidth}] = td
	}

	for idx, in := range inputs {
		if !in.TagPresent {
			return nil, zlerror.New(zlerror.NodeInvalidInput,
				"clustering: input %d has no clustering-tag metadata", idx)
		}
		key := tagKey{tag: in.Tag, typ: in.Type, eltWidth: in.EltWidth}
		if ci, ok := tagToCluster[key]; ok {
			assignments[ci].Members = append(assignments[ci].Members, idx)
			continue
		}

		// Unconfigured tag: assign its own cluster sized 1 (step 5).
		ci := len(assignments)
		tagToCluster[key] = ci
		tk := typeKey{typ: in.Type, eltWidth: in.EltWidth}
		if td, ok := typeDefaults[tk]; ok {
			assignments = append(assignments, ClusterAssignment{
				Successor: Successor{Kind: SuccessorConfigured, Idx: td.SuccessorIdx},
				Codec:     Codec{Kind: CodecConfigured, Idx: td.ClusteringCodecIdx},
				Members:   []int{idx},
			})
			continue
		}
		assignments = append(assignments, ClusterAssignment{
			Successor: Successor{Kind: SuccessorGenericCompressor},
			Codec:     Codec{Kind: CodecDefaultConcat, Default: in.Type},
			Members:   []int{idx},
		})
	}

	return assignments, nil
}
