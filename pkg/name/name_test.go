package name_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openzl-go/openzl/pkg/name"
)

func TestNewNonAnchor(t *testing.T) {
	n, err := name.New("my.node", 42)
	require.NoError(t, err)
	require.Equal(t, "my.node", n.Prefix())
	require.Equal(t, "my.node#42", n.Unique())
	require.False(t, n.IsAnchor())
}

func TestNewUserAnchor(t *testing.T) {
	n, err := name.New("!my.anchor", 0)
	require.NoError(t, err)
	require.True(t, n.IsAnchor())
	require.Equal(t, "my.anchor", n.Unique())
	require.Equal(t, "my.anchor", n.Prefix())
}

func TestNewRejectsBangInMiddle(t *testing.T) {
	_, err := name.New("foo!bar", 1)
	require.Error(t, err)
}

func TestNewRejectsHash(t *testing.T) {
	_, err := name.New("foo#bar", 1)
	require.Error(t, err)
}

func TestNewRejectsTooLong(t *testing.T) {
	_, err := name.New(strings.Repeat("a", name.MaxPrefixLen+1), 1)
	require.Error(t, err)
}

func TestNewRejectsStandardPrefix(t *testing.T) {
	_, err := name.New("!zl.foo", 1)
	require.Error(t, err)
}

func TestWrapStandard(t *testing.T) {
	n := name.WrapStandard("!zl.store")
	require.True(t, n.IsAnchor())
	require.Equal(t, "zl.store", n.Unique())
}

func TestIsValidNonAnchorUnique(t *testing.T) {
	require.True(t, name.IsValidNonAnchorUnique("foo#42"))
	require.False(t, name.IsValidNonAnchorUnique("foo#"))
	require.False(t, name.IsValidNonAnchorUnique("foo"))
	require.False(t, name.IsValidNonAnchorUnique("foo#4a"))
}

func TestAnchorNameNeverMatchesHashDigitsSuffix(t *testing.T) {
	n := name.WrapStandard("!zl.store")
	require.False(t, name.IsValidNonAnchorUnique(n.Unique()))
}
