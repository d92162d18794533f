package a1c

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpJSONPrimitives(t *testing.T) {
	require.Equal(t, "5", DumpJSON(&Item{Type: TypeInt64, Int64: 5}))
	require.Equal(t, "true", DumpJSON(&Item{Type: TypeBoolean, Bool: true}))
	require.Equal(t, "null", DumpJSON(&Item{Type: TypeNull}))
	require.Equal(t, `{"type":"undefined"}`, DumpJSON(&Item{Type: TypeUndefined}))
}

func TestDumpJSONStringEscapesNonASCII(t *testing.T) {
	out := DumpJSON(&Item{Type: TypeString, Str: "café\n"})
	require.Equal(t, "\"caf\\u00e9\\n\"", out)
}

func TestDumpJSONStringEscapesNonBMPAsSurrogatePair(t *testing.T) {
	out := DumpJSON(&Item{Type: TypeString, Str: "a\U0001F600b"})
	require.Equal(t, `"a\ud83d\ude00b"`, out)
}

func TestDumpJSONBytesAreBase64(t *testing.T) {
	out := DumpJSON(&Item{Type: TypeBytes, Bytes: []byte{0xde, 0xad, 0xbe, 0xef}})
	require.Equal(t, `"3q2+7w=="`, out)
}

func TestDumpJSONArrayAndMap(t *testing.T) {
	item := &Item{
		Type: TypeMap,
		Map: []Pair{
			{Key: Item{Type: TypeString, Str: "a"}, Val: Item{Type: TypeArray, Array: []Item{
				{Type: TypeInt64, Int64: 1},
				{Type: TypeInt64, Int64: 2},
			}}},
		},
	}
	require.Equal(t, `{"a":[1,2]}`, DumpJSON(item))
}

func TestDumpJSONTagAndSimple(t *testing.T) {
	tag := &Item{Type: TypeTag, TagVal: Tag{Number: 9, Item: &Item{Type: TypeInt64, Int64: 1}}}
	require.Equal(t, `{"type":"tag","number":9,"value":1}`, DumpJSON(tag))

	simple := &Item{Type: TypeSimple, Simple: 200}
	require.Equal(t, `{"type":"simple","value":200}`, DumpJSON(simple))
}
