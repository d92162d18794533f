package clustering

import (
	"github.com/openzl-go/openzl/pkg/a1c"
	"github.com/openzl-go/openzl/pkg/arena"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// Serialize encodes cfg to CBOR bytes with a fixed key set and
// order: a root map of "clusters"/"typeDefaults",
// each typeSuccessor a 4-key map of "type"/"eltWidth"/"successorIdx"/
// "clusteringCodecIdx".
func Serialize(cfg Config) ([]byte, error) {
	root := &a1c.Item{}
	rb := root.MapBuilder(2)

	clustersPair := rb.Add()
	clustersPair.Key.SetStringRef("clusters")
	clusterItems := clustersPair.Val.SetArray(len(cfg.Clusters))
	for i, cl := range cfg.Clusters {
		cb := clusterItems[i].MapBuilder(2)
		tsPair := cb.Add()
		tsPair.Key.SetStringRef("typeSuccessor")
		writeTypeSuccessor(&tsPair.Val, cl.TypeSuccessor)

		tagsPair := cb.Add()
		tagsPair.Key.SetStringRef("memberTags")
		tagItems := tagsPair.Val.SetArray(len(cl.MemberTags))
		for j, tag := range cl.MemberTags {
			tagItems[j].SetInt64(tag)
		}
	}

	defaultsPair := rb.Add()
	defaultsPair.Key.SetStringRef("typeDefaults")
	defaultItems := defaultsPair.Val.SetArray(len(cfg.TypeDefaults))
	for i, td := range cfg.TypeDefaults {
		writeTypeSuccessor(&defaultItems[i], td)
	}

	return a1c.Encode(root)
}

func writeTypeSuccessor(item *a1c.Item, ts TypeSuccessor) {
	b := item.MapBuilder(4)
	p := b.Add()
	p.Key.SetStringRef("type")
	p.Val.SetInt64(int64(ts.Type))

	p = b.Add()
	p.Key.SetStringRef("eltWidth")
	p.Val.SetInt64(ts.EltWidth)

	p = b.Add()
	p.Key.SetStringRef("successorIdx")
	p.Val.SetInt64(ts.SuccessorIdx)

	p = b.Add()
	p.Key.SetStringRef("clusteringCodecIdx")
	p.Val.SetInt64(ts.ClusteringCodecIdx)
}

// Deserialize parses a CBOR-encoded ClusteringConfig, as produced by
// Serialize.
func Deserialize(data []byte, a arena.Arena) (Config, error) {
	d := a1c.NewDecoder(a, a1c.DecoderConfig{})
	root, err := d.Decode(data)
	if err != nil {
		return Config{}, zlerror.Wrap(zlerror.Corruption, err, "clustering config: invalid CBOR")
	}
	if root.Type != a1c.TypeMap {
		return Config{}, zlerror.New(zlerror.Corruption, "clustering config: root must be a map")
	}

	var cfg Config
	clusters := root.MapGet("clusters")
	if clusters == nil || clusters.Type != a1c.TypeArray {
		return Config{}, zlerror.New(zlerror.Corruption, "clustering config: missing or malformed \"clusters\"")
	}
	cfg.Clusters = make([]Cluster, len(clusters.Array))
	for i := range clusters.Array {
		entry := &clusters.Array[i]
		tsItem := entry.MapGet("typeSuccessor")
		if tsItem == nil {
			return Config{}, zlerror.New(zlerror.Corruption, "clustering config: cluster %d missing typeSuccessor", i)
		}
		ts, err := readTypeSuccessor(tsItem)
		if err != nil {
			return Config{}, err
		}
		tagsItem := entry.MapGet("memberTags")
		if tagsItem == nil || tagsItem.Type != a1c.TypeArray {
			return Config{}, zlerror.New(zlerror.Corruption, "clustering config: cluster %d missing memberTags", i)
		}
		tags := make([]int64, len(tagsItem.Array))
		for j := range tagsItem.Array {
			if tagsItem.Array[j].Type != a1c.TypeInt64 {
				return Config{}, zlerror.New(zlerror.Corruption, "clustering config: cluster %d tag %d not an integer", i, j)
			}
			tags[j] = tagsItem.Array[j].Int64
		}
		cfg.Clusters[i] = Cluster{TypeSuccessor: ts, MemberTags: tags}
	}

	defaults := root.MapGet("typeDefaults")
	if defaults == nil || defaults.Type != a1c.TypeArray {
		return Config{}, zlerror.New(zlerror.Corruption, "clustering config: missing or malformed \"typeDefaults\"")
	}
	cfg.TypeDefaults = make([]TypeSuccessor, len(defaults.Array))
	for i := range defaults.Array {
		ts, err := readTypeSuccessor(&defaults.Array[i])
		if err != nil {
			return Config{}, err
		}
		cfg.TypeDefaults[i] = ts
	}

	return cfg, nil
}

func readTypeSuccessor(item *a1c.Item) (TypeSuccessor, error) {
	if item.Type != a1c.TypeMap {
		return TypeSuccessor{}, zlerror.New(zlerror.Corruption, "clustering config: typeSuccessor must be a map")
	}
	get := func(key string) (int64, error) {
		v := item.MapGet(key)
		if v == nil || v.Type != a1c.TypeInt64 {
			return 0, zlerror.New(zlerror.Corruption, "clustering config: typeSuccessor missing integer %q", key)
		}
		return v.Int64, nil
	}
	typ, err := get("type")
	if err != nil {
		return TypeSuccessor{}, err
	}
	eltWidth, err := get("eltWidth")
	if err != nil {
		return TypeSuccessor{}, err
	}
	successorIdx, err := get("successorIdx")
	if err != nil {
		return TypeSuccessor{}, err
	}
	codecIdx, err := get("clusteringCodecIdx")
	if err != nil {
		return TypeSuccessor{}, err
	}
	return TypeSuccessor{
		Type:               StreamType(typ),
		EltWidth:           eltWidth,
		SuccessorIdx:       successorIdx,
		ClusteringCodecIdx: codecIdx,
	}, nil
}
