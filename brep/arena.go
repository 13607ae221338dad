package brep

import (
	"fmt"
	"iter"
)

// ID addresses an entity of type T inside a Store.
//
// The index is the creation order of the entity and never changes. The
// generation is bumped when the entity is killed, so a handle taken before a
// KeMr or KfMrh can never resolve to a tombstoned slot. The zero ID is nil.
type ID[T any] struct {
	index int32
	gen   uint32
}

type (
	SolidID    = ID[Solid]
	FaceID     = ID[Face]
	LoopID     = ID[Loop]
	EdgeID     = ID[Edge]
	HalfEdgeID = ID[HalfEdge]
	VertexID   = ID[Vertex]
)

// Index returns the creation-order index used by the operator log.
func (id ID[T]) Index() int {
	return int(id.index)
}

// IsNil reports whether id is the zero handle.
func (id ID[T]) IsNil() bool {
	return id.gen == 0
}

func (id ID[T]) String() string {
	if id.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d", id.index)
}

type slot[T any] struct {
	gen uint32
	val *T
}

// arena is append-only. Entities live behind pointers so they never move once
// created; killing an entity drops the pointer and bumps the generation but
// keeps the slot, so indices are never reused.
type arena[T any] struct {
	slots []slot[T]
	live  int
}

func (a *arena[T]) insert(v T) (ID[T], *T) {
	p := &v
	a.slots = append(a.slots, slot[T]{gen: 1, val: p})
	a.live++
	return ID[T]{index: int32(len(a.slots) - 1), gen: 1}, p
}

func (a *arena[T]) get(id ID[T]) *T {
	if id.gen == 0 || int(id.index) >= len(a.slots) {
		return nil
	}
	s := a.slots[id.index]
	if s.val == nil || s.gen != id.gen {
		return nil
	}
	return s.val
}

func (a *arena[T]) remove(id ID[T]) bool {
	if a.get(id) == nil {
		return false
	}
	s := &a.slots[id.index]
	s.val = nil
	s.gen++
	a.live--
	return true
}

// at resolves a creation-order index to the live handle occupying it.
func (a *arena[T]) at(i int) (ID[T], bool) {
	if i < 0 || i >= len(a.slots) {
		return ID[T]{}, false
	}
	s := a.slots[i]
	if s.val == nil {
		return ID[T]{}, false
	}
	return ID[T]{index: int32(i), gen: s.gen}, true
}

// all yields live entities in creation order.
func (a *arena[T]) all() iter.Seq2[ID[T], *T] {
	return func(yield func(ID[T], *T) bool) {
		for i, s := range a.slots {
			if s.val == nil {
				continue
			}
			if !yield(ID[T]{index: int32(i), gen: s.gen}, s.val) {
				return
			}
		}
	}
}

func (a *arena[T]) len() int {
	return a.live
}

func (a *arena[T]) cap() int {
	return len(a.slots)
}
