package localparams

import (
	"github.com/openzl-go/openzl/pkg/a1c"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// ParamSetDict maps a serialized param-set name to its CBOR body, the
// lookup table the deserializer builds from the top-level "params" map
// before resolving any node or graph.
type ParamSetDict map[string]*a1c.Item

// Resolve interprets a CBOR node describing a param set — absent
// (nil), CBOR null, an inline map, or a string naming an entry in
// dict — and returns the resolved LocalParams, inheriting ref-params
// from base (ref params are never serializable and so never appear in
// value itself).
func Resolve(value *a1c.Item, base LocalParams, dict ParamSetDict) (LocalParams, error) {
	out := LocalParams{Refs: append([]RefParam(nil), base.Refs...)}

	if value == nil || value.Type == a1c.TypeNull || value.Type == a1c.TypeUndefined {
		return out, nil
	}

	if value.Type == a1c.TypeString {
		body, ok := dict[value.Str]
		if !ok {
			return LocalParams{}, zlerror.New(zlerror.Corruption, "local params reference %q not found in param set dictionary", value.Str)
		}
		return resolveInline(body, out)
	}

	return resolveInline(value, out)
}

// resolveInline parses an inline {"ints": {...}, "blobs": {...}} map
// literal, appending onto the ref-params already carried in out.
func resolveInline(value *a1c.Item, out LocalParams) (LocalParams, error) {
	if value.Type != a1c.TypeMap {
		return LocalParams{}, zlerror.New(zlerror.Corruption, "local params body must be a map, got %s", value.Type)
	}

	if ints := value.MapGet("ints"); ints != nil {
		parsed, err := parseIntParams(ints)
		if err != nil {
			return LocalParams{}, err
		}
		out.Ints = parsed
	}
	if blobs := value.MapGet("blobs"); blobs != nil {
		parsed, err := parseBlobParams(blobs)
		if err != nil {
			return LocalParams{}, err
		}
		out.Blobs = parsed
	}
	return out, nil
}

func parseIntParams(m *a1c.Item) ([]IntParam, error) {
	if m.Type != a1c.TypeMap {
		return nil, zlerror.New(zlerror.Corruption, "int params must be a map, got %s", m.Type)
	}
	out := make([]IntParam, 0, len(m.Map))
	for i := range m.Map {
		pair := &m.Map[i]
		if pair.Key.Type != a1c.TypeInt64 {
			return nil, zlerror.New(zlerror.Corruption, "int param key must be an integer, got %s", pair.Key.Type)
		}
		if pair.Val.Type != a1c.TypeInt64 {
			return nil, zlerror.New(zlerror.Corruption, "int param value must be an integer, got %s", pair.Val.Type)
		}
		out = append(out, IntParam{ID: int(pair.Key.Int64), Value: pair.Val.Int64})
	}
	return out, nil
}

func parseBlobParams(m *a1c.Item) ([]BlobParam, error) {
	if m.Type != a1c.TypeMap {
		return nil, zlerror.New(zlerror.Corruption, "blob params must be a map, got %s", m.Type)
	}
	out := make([]BlobParam, 0, len(m.Map))
	for i := range m.Map {
		pair := &m.Map[i]
		if pair.Key.Type != a1c.TypeInt64 {
			return nil, zlerror.New(zlerror.Corruption, "blob param key must be an integer, got %s", pair.Key.Type)
		}
		if pair.Val.Type != a1c.TypeBytes {
			return nil, zlerror.New(zlerror.Corruption, "blob param value must be a byte string, got %s", pair.Val.Type)
		}
		out = append(out, BlobParam{ID: int(pair.Key.Int64), Value: pair.Val.Bytes})
	}
	return out, nil
}
