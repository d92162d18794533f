package graph

import (
	"github.com/openzl-go/openzl/pkg/name"
	"github.com/openzl-go/openzl/pkg/zlerror"
)

// registry is the shared vector-plus-name-map bookkeeping used by both
// NodeManager and GraphManager: IDs are assigned sequentially starting
// at endOfStandard, and anchor names must be globally unique.
//
// Rather than appending first and rolling back on failure, this
// registry validates before mutating state at all: every
// registration path checks names/capacity/dependencies first and only
// calls commit once nothing can fail, so there is never a partially
// applied vector push to unwind. The net behavior (failed registration
// leaves the registry exactly as it was) is the same; see DESIGN.md.
type registry[T any] struct {
	endOfStandard ID
	items         []T
	byName        map[string]ID
	limit         int
}

func newRegistry[T any](endOfStandard ID, limit int) *registry[T] {
	return &registry[T]{endOfStandard: endOfStandard, byName: make(map[string]ID), limit: limit}
}

func (r *registry[T]) nextID() ID { return r.endOfStandard + ID(len(r.items)) }

func (r *registry[T]) checkCapacity() error {
	if r.limit > 0 && len(r.items) >= r.limit {
		return zlerror.New(zlerror.TemporaryLibraryLimitation,
			"registration limit of %d reached", r.limit)
	}
	return nil
}

// checkNameAvailable enforces anchor-name uniqueness. Non-anchor names
// always terminate in their own freshly allocated ID, so they can
// never collide.
func (r *registry[T]) checkNameAvailable(n name.Name) error {
	if !n.IsAnchor() {
		return nil
	}
	if _, exists := r.byName[n.Unique()]; exists {
		return zlerror.New(zlerror.InvalidName, "duplicate anchor name %q", n.Unique())
	}
	return nil
}

func (r *registry[T]) commit(n name.Name, item T) ID {
	id := r.nextID()
	r.items = append(r.items, item)
	r.byName[n.Unique()] = id
	return id
}

func (r *registry[T]) byIndex(id ID) (T, bool) {
	var zero T
	if id < r.endOfStandard {
		return zero, false
	}
	idx := int(id - r.endOfStandard)
	if idx < 0 || idx >= len(r.items) {
		return zero, false
	}
	return r.items[idx], true
}

func (r *registry[T]) setByIndex(id ID, item T) bool {
	if id < r.endOfStandard {
		return false
	}
	idx := int(id - r.endOfStandard)
	if idx < 0 || idx >= len(r.items) {
		return false
	}
	r.items[idx] = item
	return true
}

func (r *registry[T]) idByName(unique string) (ID, bool) {
	id, ok := r.byName[unique]
	return id, ok
}

// all returns items in registration order.
func (r *registry[T]) all() []T { return r.items }
