package localparams

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openzl-go/openzl/pkg/a1c"
)

func intMap(pairs map[int64]int64) *a1c.Item {
	item := &a1c.Item{}
	b := item.MapBuilder(len(pairs))
	for k, v := range pairs {
		p := b.Add()
		p.Key.SetInt64(k)
		p.Val.SetInt64(v)
	}
	return item
}

func TestResolveAbsentInheritsOnlyRefs(t *testing.T) {
	base := LocalParams{
		Ints: []IntParam{{ID: 1, Value: 2}},
		Refs: []RefParam{{ID: 9, Ptr: "x", Size: 1}},
	}
	got, err := Resolve(nil, base, nil)
	require.NoError(t, err)
	require.Empty(t, got.Ints)
	require.Empty(t, got.Blobs)
	require.Equal(t, base.Refs, got.Refs)
}

func TestResolveNullInheritsOnlyRefs(t *testing.T) {
	base := LocalParams{Refs: []RefParam{{ID: 1, Ptr: 1, Size: 1}}}
	null := &a1c.Item{Type: a1c.TypeNull}
	got, err := Resolve(null, base, nil)
	require.NoError(t, err)
	require.Equal(t, base.Refs, got.Refs)
}

func TestResolveInlineMap(t *testing.T) {
	root := &a1c.Item{}
	b := root.MapBuilder(1)
	entry := b.Add()
	entry.Key.SetStringRef("ints")
	entry.Val = *intMap(map[int64]int64{1: 100, 2: 200})

	got, err := Resolve(root, LocalParams{}, nil)
	require.NoError(t, err)
	require.Len(t, got.Ints, 2)
}

func TestResolveStringReferenceLooksUpDict(t *testing.T) {
	body := &a1c.Item{}
	b := body.MapBuilder(1)
	entry := b.Add()
	entry.Key.SetStringRef("ints")
	entry.Val = *intMap(map[int64]int64{5: 50})

	dict := ParamSetDict{"paramsA": body}
	ref := &a1c.Item{}
	ref.SetStringRef("paramsA")

	got, err := Resolve(ref, LocalParams{}, dict)
	require.NoError(t, err)
	require.Len(t, got.Ints, 1)
	require.Equal(t, 5, got.Ints[0].ID)
}

func TestResolveStringReferenceMissingIsCorruption(t *testing.T) {
	ref := &a1c.Item{}
	ref.SetStringRef("missing")
	_, err := Resolve(ref, LocalParams{}, ParamSetDict{})
	require.Error(t, err)
}
