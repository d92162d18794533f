// Package a1c implements an arena-backed CBOR item graph: a compact
// CBOR value tree with a deterministic encoder, a streaming
// bounded-depth decoder, and an ASCII-only JSON debug dump.
package a1c

import (
	"math"

	"github.com/openzl-go/openzl/pkg/arena"
)

// Type enumerates the possible kinds of an Item.
type Type int

const (
	TypeUndefined Type = iota
	TypeInt64
	TypeBytes
	TypeString
	TypeArray
	TypeMap
	TypeBoolean
	TypeNull
	TypeFloat16
	TypeFloat32
	TypeFloat64
	TypeSimple
	TypeTag
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeInt64:
		return "int64"
	case TypeBytes:
		return "bytes"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeBoolean:
		return "boolean"
	case TypeNull:
		return "null"
	case TypeFloat16:
		return "float16"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeSimple:
		return "simple"
	case TypeTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Pair is a single key/value entry of a Map item.
type Pair struct {
	Key Item
	Val Item
}

// Tag is a CBOR tag number plus its tagged child item.
type Tag struct {
	Number uint64
	Item   *Item
}

// Item is the main structure used to represent a single CBOR item.
// The active field is indicated by Type.
type Item struct {
	Type    Type
	Int64   int64
	Float16 uint16 // raw half-precision bit pattern; not promoted
	Float32 float32
	Float64 float64
	Bool    bool
	Bytes   []byte
	Str     string
	Array   []Item
	Map     []Pair
	Simple  uint8
	TagVal  Tag

	Parent *Item
}

// Root allocates the root Item of a tree. Items are plain Go values
// (the arena governs the backing slices for bytes/strings/arrays/maps,
// not the Item structs themselves, since Go's GC already keeps any
// reachable struct alive).
func Root() *Item {
	return &Item{Type: TypeUndefined}
}

// SetInt64 sets item to the int64 type.
func (item *Item) SetInt64(val int64) { *item = Item{Type: TypeInt64, Int64: val, Parent: item.Parent} }

// SetFloat16 sets item to the float16 type, storing the raw bit pattern.
func (item *Item) SetFloat16(val uint16) {
	*item = Item{Type: TypeFloat16, Float16: val, Parent: item.Parent}
}

// SetFloat32 sets item to the float32 type.
func (item *Item) SetFloat32(val float32) {
	*item = Item{Type: TypeFloat32, Float32: val, Parent: item.Parent}
}

// SetFloat64 sets item to the float64 type.
func (item *Item) SetFloat64(val float64) {
	*item = Item{Type: TypeFloat64, Float64: val, Parent: item.Parent}
}

// SetBool sets item to the boolean type.
func (item *Item) SetBool(val bool) { *item = Item{Type: TypeBoolean, Bool: val, Parent: item.Parent} }

// SetNull sets the type of item to null.
func (item *Item) SetNull() { *item = Item{Type: TypeNull, Parent: item.Parent} }

// SetUndefined sets the type of item to undefined.
func (item *Item) SetUndefined() { *item = Item{Type: TypeUndefined, Parent: item.Parent} }

// SetSimple sets item to a tiny tagged-int simple value.
func (item *Item) SetSimple(val uint8) {
	*item = Item{Type: TypeSimple, Simple: val, Parent: item.Parent}
}

// SetTag sets item to the tag type with the given tag number and
// returns the child item to be filled in by the caller.
func (item *Item) SetTag(tagNum uint64) *Item {
	child := &Item{Parent: item}
	*item = Item{Type: TypeTag, TagVal: Tag{Number: tagNum, Item: child}, Parent: item.Parent}
	return item.TagVal.Item
}

// SetBytes allocates size bytes in arena, sets item to the bytes type
// referencing them, and returns the buffer for the caller to fill.
func (item *Item) SetBytes(size int, a arena.Arena) ([]byte, error) {
	buf, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}
	*item = Item{Type: TypeBytes, Bytes: buf, Parent: item.Parent}
	return buf, nil
}

// SetBytesCopy copies data into a freshly allocated buffer in arena.
func (item *Item) SetBytesCopy(data []byte, a arena.Arena) error {
	buf, err := item.SetBytes(len(data), a)
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

// SetBytesRef sets item to reference data directly, without copying.
func (item *Item) SetBytesRef(data []byte) {
	*item = Item{Type: TypeBytes, Bytes: data, Parent: item.Parent}
}

// SetStringCopy copies s into a freshly allocated arena buffer and
// sets item to the string type referencing the copy.
func (item *Item) SetStringCopy(s string, a arena.Arena) error {
	buf, err := a.Alloc(len(s))
	if err != nil {
		return err
	}
	copy(buf, s)
	*item = Item{Type: TypeString, Str: string(buf), Parent: item.Parent}
	return nil
}

// SetStringRef sets item to reference s directly, without copying.
func (item *Item) SetStringRef(s string) {
	*item = Item{Type: TypeString, Str: s, Parent: item.Parent}
}

// SetArray creates an array of the given size in item, each element
// allocated eagerly.
func (item *Item) SetArray(size int) []Item {
	arr := make([]Item, size)
	for i := range arr {
		arr[i].Parent = item
	}
	*item = Item{Type: TypeArray, Array: arr, Parent: item.Parent}
	return item.Array
}

// SetMap creates a map of the given size in item.
func (item *Item) SetMap(size int) []Pair {
	m := make([]Pair, size)
	for i := range m {
		m[i].Key.Parent = item
		m[i].Val.Parent = item
	}
	*item = Item{Type: TypeMap, Map: m, Parent: item.Parent}
	return item.Map
}

// MapBuilder constructs a fixed-capacity map incrementally.
type MapBuilder struct {
	item    *Item
	maxSize int
}

// MapBuilder creates a map in item with capacity maxSize and returns a
// builder used to push pairs one at a time.
func (item *Item) MapBuilder(maxSize int) MapBuilder {
	m := make([]Pair, 0, maxSize)
	*item = Item{Type: TypeMap, Map: m, Parent: item.Parent}
	return MapBuilder{item: item, maxSize: maxSize}
}

// Add appends a new pair to the map, returning nil if the builder's
// capacity has been exhausted; pushing past capacity never panics.
func (b MapBuilder) Add() *Pair {
	if len(b.item.Map) >= b.maxSize {
		return nil
	}
	b.item.Map = append(b.item.Map, Pair{})
	p := &b.item.Map[len(b.item.Map)-1]
	p.Key.Parent = b.item
	p.Val.Parent = b.item
	return p
}

// ArrayBuilder constructs a fixed-capacity array incrementally.
type ArrayBuilder struct {
	item    *Item
	maxSize int
}

// ArrayBuilder creates an array in item with capacity maxSize.
func (item *Item) ArrayBuilder(maxSize int) ArrayBuilder {
	arr := make([]Item, 0, maxSize)
	*item = Item{Type: TypeArray, Array: arr, Parent: item.Parent}
	return ArrayBuilder{item: item, maxSize: maxSize}
}

// Add appends a new item to the array, returning nil on overrun.
func (b ArrayBuilder) Add() *Item {
	if len(b.item.Array) >= b.maxSize {
		return nil
	}
	b.item.Array = append(b.item.Array, Item{Parent: b.item})
	return &b.item.Array[len(b.item.Array)-1]
}

// MapGet returns the value paired with a string key, or nil.
func (item *Item) MapGet(key string) *Item {
	if item.Type != TypeMap {
		return nil
	}
	for i := range item.Map {
		p := &item.Map[i]
		if p.Key.Type == TypeString && p.Key.Str == key {
			return &p.Val
		}
	}
	return nil
}

// MapGetInt returns the value paired with an int64 key, or nil.
func (item *Item) MapGetInt(key int64) *Item {
	if item.Type != TypeMap {
		return nil
	}
	for i := range item.Map {
		p := &item.Map[i]
		if p.Key.Type == TypeInt64 && p.Key.Int64 == key {
			return &p.Val
		}
	}
	return nil
}

// ArrayGet returns the item at index, or nil if out of bounds.
func (item *Item) ArrayGet(index int) *Item {
	if item.Type != TypeArray || index < 0 || index >= len(item.Array) {
		return nil
	}
	return &item.Array[index]
}

// Eq reports structural equality between two items.
func (a *Item) Eq(b *Item) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeInt64:
		return a.Int64 == b.Int64
	case TypeFloat16:
		return a.Float16 == b.Float16
	case TypeFloat32:
		return a.Float32 == b.Float32 || (math.IsNaN(float64(a.Float32)) && math.IsNaN(float64(b.Float32)))
	case TypeFloat64:
		return a.Float64 == b.Float64 || (math.IsNaN(a.Float64) && math.IsNaN(b.Float64))
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeNull, TypeUndefined:
		return true
	case TypeSimple:
		return a.Simple == b.Simple
	case TypeBytes:
		return string(a.Bytes) == string(b.Bytes)
	case TypeString:
		return a.Str == b.Str
	case TypeArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !a.Array[i].Eq(&b.Array[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for i := range a.Map {
			if !a.Map[i].Key.Eq(&b.Map[i].Key) || !a.Map[i].Val.Eq(&b.Map[i].Val) {
				return false
			}
		}
		return true
	case TypeTag:
		return a.TagVal.Number == b.TagVal.Number && a.TagVal.Item.Eq(b.TagVal.Item)
	default:
		return false
	}
}

// DeepCopy copies the contents of item into a new tree, copying bytes
// and string buffers into arena, detaching the copy from whatever
// buffer a referenceSource decode left the original aliasing.
func (item *Item) DeepCopy(a arena.Arena) (*Item, error) {
	out := &Item{Type: item.Type}
	switch item.Type {
	case TypeInt64:
		out.Int64 = item.Int64
	case TypeFloat16:
		out.Float16 = item.Float16
	case TypeFloat32:
		out.Float32 = item.Float32
	case TypeFloat64:
		out.Float64 = item.Float64
	case TypeBoolean:
		out.Bool = item.Bool
	case TypeSimple:
		out.Simple = item.Simple
	case TypeBytes:
		buf, err := a.Alloc(len(item.Bytes))
		if err != nil {
			return nil, err
		}
		copy(buf, item.Bytes)
		out.Bytes = buf
	case TypeString:
		buf, err := a.Alloc(len(item.Str))
		if err != nil {
			return nil, err
		}
		copy(buf, item.Str)
		out.Str = string(buf)
	case TypeArray:
		out.Array = make([]Item, len(item.Array))
		for i := range item.Array {
			c, err := item.Array[i].DeepCopy(a)
			if err != nil {
				return nil, err
			}
			out.Array[i] = *c
			out.Array[i].Parent = out
		}
	case TypeMap:
		out.Map = make([]Pair, len(item.Map))
		for i := range item.Map {
			k, err := item.Map[i].Key.DeepCopy(a)
			if err != nil {
				return nil, err
			}
			v, err := item.Map[i].Val.DeepCopy(a)
			if err != nil {
				return nil, err
			}
			out.Map[i] = Pair{Key: *k, Val: *v}
			out.Map[i].Key.Parent = out
			out.Map[i].Val.Parent = out
		}
	case TypeTag:
		child, err := item.TagVal.Item.DeepCopy(a)
		if err != nil {
			return nil, err
		}
		out.TagVal = Tag{Number: item.TagVal.Number, Item: child}
		child.Parent = out
	}
	return out, nil
}
