// Package arena implements the compressor's working memory: a minimal
// {allocate(bytes) -> []byte} contract with a heap-backed
// implementation and a byte-budgeted wrapper.
//
// Go's garbage collector means the arena's job here is not to avoid
// per-object malloc overhead (the usual reason to bump-allocate in a
// systems language) but to preserve the ownership and
// byte-budget discipline: every allocation returns zeroed memory, and
// a Limited arena enforces a hard ceiling rather than letting a
// misconfigured graph or node exhaust memory silently.
package arena

import "github.com/openzl-go/openzl/pkg/zlerror"

// Arena is the lowest external allocation interface depended on by the
// rest of the core.
type Arena interface {
	// Alloc returns n freshly zeroed bytes that remain valid for the
	// lifetime of the Arena.
	Alloc(n int) ([]byte, error)
}

// Heap is an Arena backed directly by the Go allocator/GC. It fails
// only for a negative size and never frees early; its "destroy" is simply letting every
// reference to its allocations go out of scope.
type Heap struct{}

// NewHeap constructs a Heap arena.
func NewHeap() *Heap { return &Heap{} }

func (*Heap) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, zlerror.New(zlerror.Allocation, "negative allocation size %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	return make([]byte, n), nil
}

// Limited composes a backing Arena with a byte budget; allocation
// requests that would exceed the budget fail with Allocation rather
// than succeeding against the backing arena.
type Limited struct {
	backing   Arena
	limit     int
	allocated int
}

// NewLimited wraps backing with a byte budget of limitBytes. A
// limitBytes of 0 means unbounded (delegates straight to backing).
func NewLimited(backing Arena, limitBytes int) *Limited {
	return &Limited{backing: backing, limit: limitBytes}
}

func (l *Limited) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, zlerror.New(zlerror.Allocation, "negative allocation size %d", n)
	}
	if l.limit > 0 && l.allocated+n > l.limit {
		return nil, zlerror.New(
			zlerror.Allocation,
			"limited arena exhausted: %d + %d > %d", l.allocated, n, l.limit,
		)
	}
	buf, err := l.backing.Alloc(n)
	if err != nil {
		return nil, err
	}
	l.allocated += n
	return buf, nil
}

// Reset zeroes the tracked allocation count without freeing any memory
// already handed out, per the limited arena's documented
// "does not free any memory" warning.
func (l *Limited) Reset() {
	l.allocated = 0
}

// AllocatedBytes reports how many bytes have been allocated since
// construction or the last Reset.
func (l *Limited) AllocatedBytes() int { return l.allocated }
