// Package localparams implements the LocalParams / CanonicalParams
// pair: a logical parameter set with three disjoint families (int,
// blob, ref), canonicalization (sort + dedup with last-write-wins),
// hashing, equality, arena transfer, and CBOR resolution.
package localparams

import (
	"bytes"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/openzl-go/openzl/pkg/arena"
)

// IntParam is a (paramId, paramValue) pair.
type IntParam struct {
	ID    int
	Value int64
}

// BlobParam is a (paramId, bytes) pair.
type BlobParam struct {
	ID    int
	Value []byte
}

// RefParam is a (paramId, pointer, size) pair. Ref params are
// non-serializable: they identify runtime values of the embedding
// program (modeled here as an opaque `any`, compared by identity via
// the pointer each caller chooses to store).
type RefParam struct {
	ID   int
	Ptr  any
	Size int
}

// LocalParams is the logical, possibly-unsorted, possibly-duplicated
// parameter bag as recorded by a caller.
type LocalParams struct {
	Ints  []IntParam
	Blobs []BlobParam
	Refs  []RefParam
}

// Clone returns a deep-enough copy: new backing slices, but blob
// bytes/ref pointers are shared (callers that need arena ownership use
// Transfer).
func (lp LocalParams) Clone() LocalParams {
	out := LocalParams{
		Ints:  append([]IntParam(nil), lp.Ints...),
		Blobs: append([]BlobParam(nil), lp.Blobs...),
		Refs:  append([]RefParam(nil), lp.Refs...),
	}
	return out
}

// CanonicalParams is the canonical form: three sorted, deduplicated
// lists used for hashing and equality.
type CanonicalParams struct {
	Ints  []IntParam
	Blobs []BlobParam
	Refs  []RefParam
}

// Build computes the canonical form of src: within each family, sort
// by ID ascending; on duplicate IDs, retain the entry recorded last in
// src's original order.
func Build(src LocalParams) CanonicalParams {
	return CanonicalParams{
		Ints:  canonicalizeInts(src.Ints),
		Blobs: canonicalizeBlobs(src.Blobs),
		Refs:  canonicalizeRefs(src.Refs),
	}
}

func canonicalizeInts(in []IntParam) []IntParam {
	lastByID := make(map[int]int64, len(in))
	order := make([]int, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, p := range in {
		if !seen[p.ID] {
			seen[p.ID] = true
			order = append(order, p.ID)
		}
		lastByID[p.ID] = p.Value
	}
	out := make([]IntParam, len(order))
	for i, id := range order {
		out[i] = IntParam{ID: id, Value: lastByID[id]}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func canonicalizeBlobs(in []BlobParam) []BlobParam {
	lastByID := make(map[int][]byte, len(in))
	order := make([]int, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, p := range in {
		if !seen[p.ID] {
			seen[p.ID] = true
			order = append(order, p.ID)
		}
		lastByID[p.ID] = p.Value
	}
	out := make([]BlobParam, len(order))
	for i, id := range order {
		out[i] = BlobParam{ID: id, Value: lastByID[id]}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func canonicalizeRefs(in []RefParam) []RefParam {
	lastByID := make(map[int]RefParam, len(in))
	order := make([]int, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, p := range in {
		if !seen[p.ID] {
			seen[p.ID] = true
			order = append(order, p.ID)
		}
		lastByID[p.ID] = p
	}
	out := make([]RefParam, len(order))
	for i, id := range order {
		out[i] = lastByID[id]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Eq reports whether two canonical param sets are logically equal:
// int params compare by value, blob params by byte content, ref
// params by pointer identity.
func (c CanonicalParams) Eq(o CanonicalParams) bool {
	if len(c.Ints) != len(o.Ints) || len(c.Blobs) != len(o.Blobs) || len(c.Refs) != len(o.Refs) {
		return false
	}
	for i := range c.Ints {
		if c.Ints[i] != o.Ints[i] {
			return false
		}
	}
	for i := range c.Blobs {
		if c.Blobs[i].ID != o.Blobs[i].ID || !bytes.Equal(c.Blobs[i].Value, o.Blobs[i].Value) {
			return false
		}
	}
	for i := range c.Refs {
		if c.Refs[i].ID != o.Refs[i].ID ||
			c.Refs[i].Ptr != o.Refs[i].Ptr ||
			c.Refs[i].Size != o.Refs[i].Size {
			return false
		}
	}
	return true
}

// Hash returns a 64-bit hash of the canonical form. Equal sets hash
// identically; unequal sets hash differently with high probability.
// Ref params are hashed by their ID and declared size only, since their
// pointer identity is not a stable hash input across processes.
func (c CanonicalParams) Hash() uint64 {
	h := xxhash.New()
	var scratch [8]byte
	writeInt64 := func(v int64) {
		for i := 0; i < 8; i++ {
			scratch[i] = byte(v >> (8 * i))
		}
		_, _ = h.Write(scratch[:])
	}
	for _, p := range c.Ints {
		writeInt64(int64(p.ID))
		writeInt64(p.Value)
	}
	for _, p := range c.Blobs {
		writeInt64(int64(p.ID))
		writeInt64(int64(len(p.Value)))
		_, _ = h.Write(p.Value)
	}
	for _, p := range c.Refs {
		writeInt64(int64(p.ID))
		writeInt64(int64(p.Size))
	}
	return h.Sum64()
}

// IsEmpty reports whether the canonical set has no entries at all.
func (c CanonicalParams) IsEmpty() bool {
	return len(c.Ints) == 0 && len(c.Blobs) == 0 && len(c.Refs) == 0
}

// GetInt returns the int param with the given id, if present.
func (c CanonicalParams) GetInt(id int) (int64, bool) {
	for _, p := range c.Ints {
		if p.ID == id {
			return p.Value, true
		}
	}
	return 0, false
}

// GetBlob returns the blob param with the given id, if present.
func (c CanonicalParams) GetBlob(id int) ([]byte, bool) {
	for _, p := range c.Blobs {
		if p.ID == id {
			return p.Value, true
		}
	}
	return nil, false
}

// Transfer deep-copies every blob array into dst and rewrites the
// returned CanonicalParams to reference the copies.
// Ref params and int params carry no arena-owned memory and pass
// through unchanged.
func Transfer(dst arena.Arena, c CanonicalParams) (CanonicalParams, error) {
	out := CanonicalParams{
		Ints: append([]IntParam(nil), c.Ints...),
		Refs: append([]RefParam(nil), c.Refs...),
	}
	out.Blobs = make([]BlobParam, len(c.Blobs))
	for i, b := range c.Blobs {
		buf, err := dst.Alloc(len(b.Value))
		if err != nil {
			return CanonicalParams{}, err
		}
		copy(buf, b.Value)
		out.Blobs[i] = BlobParam{ID: b.ID, Value: buf}
	}
	return out, nil
}
