package localparams_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openzl-go/openzl/pkg/arena"
	"github.com/openzl-go/openzl/pkg/localparams"
)

func TestBuildSortsAndDeduplicates(t *testing.T) {
	c := localparams.Build(localparams.LocalParams{
		Ints: []localparams.IntParam{{ID: 2, Value: 7}, {ID: 1, Value: 5}, {ID: 1, Value: 9}},
	})
	require.Equal(t, []localparams.IntParam{{ID: 1, Value: 9}, {ID: 2, Value: 7}}, c.Ints)
}

// Duplicate identical entries do not change the canonical form.
func TestBuildIdenticalDuplicatesCollapse(t *testing.T) {
	p := localparams.Build(localparams.LocalParams{
		Ints: []localparams.IntParam{{ID: 1, Value: 5}, {ID: 2, Value: 7}, {ID: 1, Value: 5}},
	})
	q := localparams.Build(localparams.LocalParams{
		Ints: []localparams.IntParam{{ID: 2, Value: 7}, {ID: 1, Value: 5}},
	})
	require.True(t, p.Eq(q))
	require.Equal(t, p.Hash(), q.Hash())
}

func TestEqReflexiveAndHashAgrees(t *testing.T) {
	marker := new(int)
	p := localparams.Build(localparams.LocalParams{
		Ints:  []localparams.IntParam{{ID: 1, Value: 5}},
		Blobs: []localparams.BlobParam{{ID: 2, Value: []byte("abc")}},
		Refs:  []localparams.RefParam{{ID: 3, Ptr: marker, Size: 4}},
	})
	require.True(t, p.Eq(p))
	require.Equal(t, p.Hash(), p.Hash())

	other := localparams.Build(localparams.LocalParams{
		Ints: []localparams.IntParam{{ID: 1, Value: 6}},
	})
	require.False(t, p.Eq(other))
	require.NotEqual(t, p.Hash(), other.Hash())
}

func TestBlobEqualityComparesContent(t *testing.T) {
	a := localparams.Build(localparams.LocalParams{
		Blobs: []localparams.BlobParam{{ID: 1, Value: []byte{1, 2, 3}}},
	})
	b := localparams.Build(localparams.LocalParams{
		Blobs: []localparams.BlobParam{{ID: 1, Value: append([]byte(nil), 1, 2, 3)}},
	})
	require.True(t, a.Eq(b))
	require.Equal(t, a.Hash(), b.Hash())

	c := localparams.Build(localparams.LocalParams{
		Blobs: []localparams.BlobParam{{ID: 1, Value: []byte{1, 2, 4}}},
	})
	require.False(t, a.Eq(c))
}

func TestRefEqualityComparesPointerIdentity(t *testing.T) {
	m1, m2 := new(int), new(int)
	a := localparams.Build(localparams.LocalParams{
		Refs: []localparams.RefParam{{ID: 1, Ptr: m1, Size: 8}},
	})
	same := localparams.Build(localparams.LocalParams{
		Refs: []localparams.RefParam{{ID: 1, Ptr: m1, Size: 8}},
	})
	other := localparams.Build(localparams.LocalParams{
		Refs: []localparams.RefParam{{ID: 1, Ptr: m2, Size: 8}},
	})
	require.True(t, a.Eq(same))
	require.False(t, a.Eq(other))
}

func TestTransferDetachesBlobs(t *testing.T) {
	src := []byte{1, 2, 3}
	c := localparams.Build(localparams.LocalParams{
		Ints:  []localparams.IntParam{{ID: 1, Value: 5}},
		Blobs: []localparams.BlobParam{{ID: 2, Value: src}},
	})
	moved, err := localparams.Transfer(arena.NewHeap(), c)
	require.NoError(t, err)
	require.True(t, c.Eq(moved))

	src[0] = 99
	require.Equal(t, []byte{1, 2, 3}, moved.Blobs[0].Value)
}
