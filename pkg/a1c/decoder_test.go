package a1c

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/openzl-go/openzl/pkg/arena"
)

func decodeBytes(t *testing.T, data []byte, cfg DecoderConfig) *Item {
	t.Helper()
	d := NewDecoder(arena.NewHeap(), cfg)
	item, err := d.Decode(data)
	require.NoError(t, err)
	return item
}

func TestDecodeUint(t *testing.T) {
	item := decodeBytes(t, []byte{0x00}, DecoderConfig{})
	require.Equal(t, TypeInt64, item.Type)
	require.EqualValues(t, 0, item.Int64)

	item = decodeBytes(t, []byte{0x18, 0xff}, DecoderConfig{})
	require.EqualValues(t, 255, item.Int64)
}

func TestDecodeNegInt(t *testing.T) {
	item := decodeBytes(t, []byte{0x20}, DecoderConfig{}) // -1
	require.Equal(t, TypeInt64, item.Type)
	require.EqualValues(t, -1, item.Int64)

	item = decodeBytes(t, []byte{0x38, 0x63}, DecoderConfig{}) // -100
	require.EqualValues(t, -100, item.Int64)
}

func TestDecodeBytesDefiniteLength(t *testing.T) {
	item := decodeBytes(t, []byte{0x44, 1, 2, 3, 4}, DecoderConfig{})
	require.Equal(t, TypeBytes, item.Type)
	require.Equal(t, []byte{1, 2, 3, 4}, item.Bytes)
}

func TestDecodeBytesIndefiniteLength(t *testing.T) {
	data := []byte{0x5f, 0x42, 1, 2, 0x41, 3, 0xff}
	item := decodeBytes(t, data, DecoderConfig{})
	require.Equal(t, TypeBytes, item.Type)
	require.Equal(t, []byte{1, 2, 3}, item.Bytes)
}

func TestDecodeStringDefiniteLength(t *testing.T) {
	item := decodeBytes(t, []byte{0x63, 'f', 'o', 'o'}, DecoderConfig{})
	require.Equal(t, TypeString, item.Type)
	require.Equal(t, "foo", item.Str)
}

func TestDecodeStringIndefiniteLength(t *testing.T) {
	data := []byte{0x7f, 0x62, 'f', 'o', 0x61, 'o', 0xff}
	item := decodeBytes(t, data, DecoderConfig{})
	require.Equal(t, TypeString, item.Type)
	require.Equal(t, "foo", item.Str)
}

func TestDecodeArrayDefiniteLength(t *testing.T) {
	item := decodeBytes(t, []byte{0x83, 0x01, 0x02, 0x03}, DecoderConfig{})
	require.Equal(t, TypeArray, item.Type)
	require.Len(t, item.Array, 3)
	require.EqualValues(t, 2, item.Array[1].Int64)
}

func TestDecodeArrayIndefiniteLength(t *testing.T) {
	data := []byte{0x9f, 0x01, 0x02, 0xff}
	item := decodeBytes(t, data, DecoderConfig{})
	require.Equal(t, TypeArray, item.Type)
	require.Len(t, item.Array, 2)
}

func TestDecodeMapDefiniteLength(t *testing.T) {
	data := []byte{0xa1, 0x61, 'a', 0x01}
	item := decodeBytes(t, data, DecoderConfig{})
	require.Equal(t, TypeMap, item.Type)
	require.Len(t, item.Map, 1)
	require.Equal(t, "a", item.Map[0].Key.Str)
	require.EqualValues(t, 1, item.Map[0].Val.Int64)
}

func TestDecodeMapIndefiniteLength(t *testing.T) {
	data := []byte{0xbf, 0x61, 'a', 0x01, 0x61, 'b', 0x02, 0xff}
	item := decodeBytes(t, data, DecoderConfig{})
	require.Equal(t, TypeMap, item.Type)
	require.Len(t, item.Map, 2)
}

func TestDecodeTag(t *testing.T) {
	data := []byte{0xc0, 0x01} // tag 0 wrapping int 1
	item := decodeBytes(t, data, DecoderConfig{})
	require.Equal(t, TypeTag, item.Type)
	require.EqualValues(t, 0, item.TagVal.Number)
	require.EqualValues(t, 1, item.TagVal.Item.Int64)
}

func TestDecodeSimpleAndFloat(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Item
	}{
		{"false", []byte{0xf4}, Item{Type: TypeBoolean, Bool: false}},
		{"true", []byte{0xf5}, Item{Type: TypeBoolean, Bool: true}},
		{"null", []byte{0xf6}, Item{Type: TypeNull}},
		{"undefined", []byte{0xf7}, Item{Type: TypeUndefined}},
		{"float32-zero", []byte{0xfa, 0, 0, 0, 0}, Item{Type: TypeFloat32, Float32: 0}},
		{"float64-one", []byte{0xfb, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0}, Item{Type: TypeFloat64, Float64: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := decodeBytes(t, tc.data, DecoderConfig{})
			if diff := cmp.Diff(tc.want, *item, cmp.Comparer(func(a, b Item) bool { return a.Eq(&b) })); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectUnknownSimple(t *testing.T) {
	d := NewDecoder(arena.NewHeap(), DecoderConfig{RejectUnknownSimple: true})
	_, err := d.Decode([]byte{0xf8, 200}) // one-byte simple value 200, non-standard
	require.Error(t, err)
	require.Equal(t, ErrInvalidSimpleValue, d.Error().Type)
}

func TestDecodeMaxDepthExceeded(t *testing.T) {
	d := NewDecoder(arena.NewHeap(), DecoderConfig{MaxDepth: 2})
	data := []byte{0x81, 0x81, 0x81, 0x00} // nested arrays, 3 deep
	_, err := d.Decode(data)
	require.Error(t, err)
	require.Equal(t, ErrMaxDepthExceeded, d.Error().Type)
}

func TestDecodeTrailingData(t *testing.T) {
	d := NewDecoder(arena.NewHeap(), DecoderConfig{})
	_, err := d.Decode([]byte{0x01, 0x02})
	require.Error(t, err)
	require.Equal(t, ErrTrailingData, d.Error().Type)
}

func TestDecodeTruncated(t *testing.T) {
	d := NewDecoder(arena.NewHeap(), DecoderConfig{})
	_, err := d.Decode([]byte{0x44, 1, 2})
	require.Error(t, err)
	require.Equal(t, ErrTruncated, d.Error().Type)
}

func TestDecodeLimitedArenaExhausted(t *testing.T) {
	d := NewDecoder(arena.NewHeap(), DecoderConfig{LimitBytes: 2})
	_, err := d.Decode([]byte{0x44, 1, 2, 3, 4})
	require.Error(t, err)
	require.Equal(t, ErrBadAlloc, d.Error().Type)
}
