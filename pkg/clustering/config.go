// Package clustering implements the generic clustering graph: a
// serializable, parameterized graph whose behavior is driven entirely
// by a Config CBOR payload carried as a local param blob.
package clustering

import "github.com/openzl-go/openzl/pkg/zlerror"

// StreamType enumerates the coarse stream types the clustering config
// and routing algorithm dispatch on. Values are part of the serialized
// config and must stay stable.
type StreamType int64

const (
	TypeSerial StreamType = iota
	TypeStruct
	TypeNumeric
	TypeString
)

// TypeSuccessor names the destination node/graph for a group of
// streams sharing a (type, eltWidth): which successor index routes
// the cluster's output, and which clustering codec concatenates its
// members.
type TypeSuccessor struct {
	Type               StreamType
	EltWidth           int64
	SuccessorIdx       int64
	ClusteringCodecIdx int64
}

// Cluster is an explicitly configured group of input streams,
// identified by the caller-assigned integer tags in MemberTags.
type Cluster struct {
	TypeSuccessor TypeSuccessor
	MemberTags    []int64
}

// Config is the full clustering configuration: explicitly configured
// clusters plus per-(type,eltWidth) defaults for unconfigured tags.
type Config struct {
	Clusters     []Cluster
	TypeDefaults []TypeSuccessor
}

// Validate checks that every clusteringCodecIdx and successorIdx falls
// within the ranges available at the parameterized graph's
// registration.
func (c Config) Validate(nbClusteringCodecs, nbSuccessors int) error {
	check := func(where string, i int, ts TypeSuccessor) error {
		if ts.ClusteringCodecIdx < 0 || int(ts.ClusteringCodecIdx) >= nbClusteringCodecs {
			return zlerror.New(zlerror.GraphParameterInvalid, "%s %d has invalid clusteringCodecIdx %d (max allowed: %d)",
				where, i, ts.ClusteringCodecIdx, nbClusteringCodecs-1)
		}
		if ts.SuccessorIdx < 0 || int(ts.SuccessorIdx) >= nbSuccessors {
			return zlerror.New(zlerror.GraphParameterInvalid, "%s %d has invalid successorIdx %d (max allowed: %d)",
				where, i, ts.SuccessorIdx, nbSuccessors-1)
		}
		return nil
	}
	for i, cl := range c.Clusters {
		if err := check("cluster", i, cl.TypeSuccessor); err != nil {
			return err
		}
	}
	for i, td := range c.TypeDefaults {
		if err := check("typeDefault", i, td); err != nil {
			return err
		}
	}
	return nil
}
