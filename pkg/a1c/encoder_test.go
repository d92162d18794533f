package a1c

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openzl-go/openzl/pkg/arena"
)

func TestEncodeShortestForm(t *testing.T) {
	cases := []struct {
		name string
		item *Item
		want []byte
	}{
		{"small-int", &Item{Type: TypeInt64, Int64: 5}, []byte{0x05}},
		{"one-byte-int", &Item{Type: TypeInt64, Int64: 255}, []byte{0x18, 0xff}},
		{"negative-int", &Item{Type: TypeInt64, Int64: -100}, []byte{0x38, 0x63}},
		{"bytes", &Item{Type: TypeBytes, Bytes: []byte{1, 2}}, []byte{0x42, 1, 2}},
		{"string", &Item{Type: TypeString, Str: "hi"}, []byte{0x62, 'h', 'i'}},
		{"bool-true", &Item{Type: TypeBoolean, Bool: true}, []byte{0xf5}},
		{"null", &Item{Type: TypeNull}, []byte{0xf6}},
		{"undefined", &Item{Type: TypeUndefined}, []byte{0xf7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.item)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	root := &Item{
		Type: TypeMap,
		Map: []Pair{
			{Key: Item{Type: TypeString, Str: "ints"}, Val: Item{
				Type: TypeArray,
				Array: []Item{
					{Type: TypeInt64, Int64: 0},
					{Type: TypeInt64, Int64: -1},
					{Type: TypeInt64, Int64: 65536},
				},
			}},
			{Key: Item{Type: TypeString, Str: "blob"}, Val: Item{Type: TypeBytes, Bytes: []byte{0xde, 0xad, 0xbe, 0xef}}},
			{Key: Item{Type: TypeString, Str: "tagged"}, Val: Item{Type: TypeTag, TagVal: Tag{Number: 7, Item: &Item{Type: TypeBoolean, Bool: true}}}},
			{Key: Item{Type: TypeString, Str: "f"}, Val: Item{Type: TypeFloat64, Float64: 3.5}},
		},
	}

	encoded, err := Encode(root)
	require.NoError(t, err)

	d := NewDecoder(arena.NewHeap(), DecoderConfig{})
	decoded, err := d.Decode(encoded)
	require.NoError(t, err)

	require.True(t, root.Eq(decoded), "decode(encode(x)) must equal x")

	reencoded, err := Encode(decoded)
	require.NoError(t, err)
	require.Equal(t, encoded, reencoded, "re-encoding a decoded tree must be byte-identical")
}

func TestEncodeIndefiniteLengthDecodesToSameTreeAsDefinite(t *testing.T) {
	indefinite := []byte{0x5f, 0x42, 1, 2, 0x41, 3, 0xff}
	d := NewDecoder(arena.NewHeap(), DecoderConfig{})
	item, err := d.Decode(indefinite)
	require.NoError(t, err)

	encoded, err := Encode(item)
	require.NoError(t, err)
	require.Equal(t, []byte{0x43, 1, 2, 3}, encoded, "encoder always emits definite-length shortest form")
}
