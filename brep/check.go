package brep

import (
	"errors"
	"fmt"
)

// Validate walks the whole store and reports every broken link it finds. It
// checks structure only: twins, loop closure, back-references and loop rings.
// Geometry is never inspected.
func (s *Store) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for id, e := range s.edges.all() {
		for i, h := range e.HalfEdges {
			he := s.halfEdges.get(h)
			if he == nil {
				fail("e%d: half-edge %d is dead", id.Index(), i)
				continue
			}
			if he.Edge != id {
				fail("e%d: half-edge %d points to e%d", id.Index(), h.Index(), he.Edge.Index())
			}
		}
	}

	for id, he := range s.halfEdges.all() {
		twin := s.halfEdges.get(he.Twin)
		switch {
		case twin == nil:
			fail("he%d: twin is dead", id.Index())
		case twin.Twin != id:
			fail("he%d: twin of twin is he%d", id.Index(), twin.Twin.Index())
		case twin.Edge != he.Edge:
			fail("he%d: twin belongs to e%d, not e%d", id.Index(), twin.Edge.Index(), he.Edge.Index())
		}
		if next := s.halfEdges.get(he.Next); next == nil || next.Prev != id {
			fail("he%d: next.prev does not lead back", id.Index())
		}
		if prev := s.halfEdges.get(he.Prev); prev == nil || prev.Next != id {
			fail("he%d: prev.next does not lead back", id.Index())
		}
		if s.vertices.get(he.Origin) == nil {
			fail("he%d: origin v%d is dead", id.Index(), he.Origin.Index())
		}
		if s.loops.get(he.Loop) == nil {
			fail("he%d: loop %d is dead", id.Index(), he.Loop.Index())
		}
	}
	if len(errs) > 0 {
		// Loop walks below would not terminate on a broken chain.
		return errors.Join(errs...)
	}

	seen := make(map[HalfEdgeID]LoopID, s.halfEdges.len())
	for id, l := range s.loops.all() {
		if s.faces.get(l.Face) == nil {
			fail("loop %d: face f%d is dead", id.Index(), l.Face.Index())
		}
		if l.HalfEdge.IsNil() {
			if s.vertices.get(l.Vertex) == nil {
				fail("loop %d: empty loop has no live vertex", id.Index())
			}
			continue
		}
		n, err := s.loopLength(id, l.HalfEdge, seen)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		back := l.HalfEdge
		for range n {
			back = s.halfEdges.get(back).Prev
		}
		if back != l.HalfEdge {
			fail("loop %d: prev walk does not close after %d steps", id.Index(), n)
		}
	}

	for id, f := range s.faces.all() {
		if s.solids.get(f.Solid) == nil {
			fail("f%d: solid %d is dead", id.Index(), f.Solid.Index())
		}
		if err := s.checkRing(id, f); err != nil {
			errs = append(errs, err)
		}
	}

	for id, sd := range s.solids.all() {
		if s.faces.get(sd.Face) == nil {
			fail("solid %d: seed face f%d is dead", id.Index(), sd.Face.Index())
		}
	}

	return errors.Join(errs...)
}

// loopLength walks next pointers from start and counts the half-edges,
// checking that each one claims loop l and belongs to no other loop.
func (s *Store) loopLength(l LoopID, start HalfEdgeID, seen map[HalfEdgeID]LoopID) (int, error) {
	limit := s.halfEdges.len()
	he := start
	for n := 1; ; n++ {
		p := s.halfEdges.get(he)
		if p.Loop != l {
			return 0, fmt.Errorf("loop %d: he%d claims loop %d", l.Index(), he.Index(), p.Loop.Index())
		}
		if other, ok := seen[he]; ok && other != l {
			return 0, fmt.Errorf("loop %d: he%d already walked by loop %d", l.Index(), he.Index(), other.Index())
		}
		seen[he] = l
		he = p.Next
		if he == start {
			return n, nil
		}
		if n > limit {
			return 0, fmt.Errorf("loop %d: next walk does not close", l.Index())
		}
	}
}

func (s *Store) checkRing(id FaceID, f *Face) error {
	limit := s.loops.len()
	l := f.Loop
	for n := 0; ; n++ {
		loop := s.loops.get(l)
		if loop == nil {
			return fmt.Errorf("f%d: loop ring reaches dead loop %d", id.Index(), l.Index())
		}
		if loop.Face != id {
			return fmt.Errorf("f%d: loop %d claims f%d", id.Index(), l.Index(), loop.Face.Index())
		}
		if next := s.loops.get(loop.Next); next == nil || next.Prev != l {
			return fmt.Errorf("f%d: loop %d next.prev does not lead back", id.Index(), l.Index())
		}
		l = loop.Next
		if l == f.Loop {
			return nil
		}
		if n > limit {
			return fmt.Errorf("f%d: loop ring does not close", id.Index())
		}
	}
}
