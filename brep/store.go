// Package brep implements a boundary-representation topology store and the
// Euler operators that mutate it.
//
// All entities are owned by a Store and referenced through generation-checked
// handles. Faces own a ring of loops whose first element is the outer
// contour; every further loop is a hole. Loops own a circular list of
// half-edges. The Store is not safe for concurrent mutation; once building is
// done it may be read from several goroutines.
package brep

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r3"
)

type (
	// Solid records its seed face, the face created by Mvfs.
	Solid struct {
		Face FaceID
	}

	// Face bounds part of a solid. Loop is the outer loop; the remaining
	// loops of the ring are holes.
	Face struct {
		Solid SolidID
		Loop  LoopID
	}

	// Loop is one closed contour of a face. HalfEdge is nil right after
	// Mvfs, before the first edge exists; Vertex is then the lone vertex
	// the loop surrounds and the only one Mve may grow from.
	Loop struct {
		Face     FaceID
		Next     LoopID
		Prev     LoopID
		HalfEdge HalfEdgeID
		Vertex   VertexID
	}

	// Edge owns its two twin half-edges.
	Edge struct {
		HalfEdges [2]HalfEdgeID
	}

	// HalfEdge is one directed side of an edge, starting at Origin.
	HalfEdge struct {
		Edge   EdgeID
		Origin VertexID
		Loop   LoopID
		Twin   HalfEdgeID
		Next   HalfEdgeID
		Prev   HalfEdgeID
	}

	// Vertex positions are fixed at creation.
	Vertex struct {
		Position r3.Vec
	}
)

// Store owns every topological entity of one build.
type Store struct {
	solids    arena[Solid]
	faces     arena[Face]
	loops     arena[Loop]
	edges     arena[Edge]
	halfEdges arena[HalfEdge]
	vertices  arena[Vertex]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Stats counts live entities.
type Stats struct {
	Solids    int
	Faces     int
	Loops     int
	Edges     int
	HalfEdges int
	Vertices  int
}

// Rings is the number of hole loops.
func (st Stats) Rings() int {
	return st.Loops - st.Faces
}

// Euler returns V - E + F.
func (st Stats) Euler() int {
	return st.Vertices - st.Edges + st.Faces
}

func (s *Store) Stats() Stats {
	return Stats{
		Solids:    s.solids.len(),
		Faces:     s.faces.len(),
		Loops:     s.loops.len(),
		Edges:     s.edges.len(),
		HalfEdges: s.halfEdges.len(),
		Vertices:  s.vertices.len(),
	}
}

// Creation-order lookups. The operator log addresses entities this way.

func (s *Store) SolidAt(i int) (SolidID, bool)   { return s.solids.at(i) }
func (s *Store) FaceAt(i int) (FaceID, bool)     { return s.faces.at(i) }
func (s *Store) EdgeAt(i int) (EdgeID, bool)     { return s.edges.at(i) }
func (s *Store) VertexAt(i int) (VertexID, bool) { return s.vertices.at(i) }

// Value lookups return copies so callers cannot corrupt the links.

func (s *Store) Solid(id SolidID) (Solid, bool)          { return lookup(&s.solids, id) }
func (s *Store) Face(id FaceID) (Face, bool)             { return lookup(&s.faces, id) }
func (s *Store) Loop(id LoopID) (Loop, bool)             { return lookup(&s.loops, id) }
func (s *Store) Edge(id EdgeID) (Edge, bool)             { return lookup(&s.edges, id) }
func (s *Store) HalfEdge(id HalfEdgeID) (HalfEdge, bool) { return lookup(&s.halfEdges, id) }
func (s *Store) Vertex(id VertexID) (Vertex, bool)       { return lookup(&s.vertices, id) }

func lookup[T any](a *arena[T], id ID[T]) (T, bool) {
	p := a.get(id)
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Position returns the position of v, or the zero vector if v is not live.
func (s *Store) Position(v VertexID) r3.Vec {
	if p := s.vertices.get(v); p != nil {
		return p.Position
	}
	return r3.Vec{}
}

// Faces yields live faces in creation order.
func (s *Store) Faces() iter.Seq[FaceID] {
	return keys(s.faces.all())
}

// Edges yields live edges in creation order.
func (s *Store) Edges() iter.Seq[EdgeID] {
	return keys(s.edges.all())
}

// HalfEdges yields live half-edges in creation order.
func (s *Store) HalfEdges() iter.Seq[HalfEdgeID] {
	return keys(s.halfEdges.all())
}

// Vertices yields live vertices in creation order.
func (s *Store) Vertices() iter.Seq[VertexID] {
	return keys(s.vertices.all())
}

// Solids yields live solids in creation order.
func (s *Store) Solids() iter.Seq[SolidID] {
	return keys(s.solids.all())
}

func keys[T any](seq iter.Seq2[ID[T], *T]) iter.Seq[ID[T]] {
	return func(yield func(ID[T]) bool) {
		for id := range seq {
			if !yield(id) {
				return
			}
		}
	}
}

// Loops yields the loop ring of f, outer loop first.
func (s *Store) Loops(f FaceID) iter.Seq[LoopID] {
	return func(yield func(LoopID) bool) {
		face := s.faces.get(f)
		if face == nil {
			return
		}
		l := face.Loop
		for {
			if !yield(l) {
				return
			}
			l = s.loops.get(l).Next
			if l == face.Loop {
				return
			}
		}
	}
}

// LoopHalfEdges walks the half-edges of l starting at its anchor half-edge.
func (s *Store) LoopHalfEdges(l LoopID) iter.Seq[HalfEdgeID] {
	return func(yield func(HalfEdgeID) bool) {
		loop := s.loops.get(l)
		if loop == nil || loop.HalfEdge.IsNil() {
			return
		}
		he := loop.HalfEdge
		for {
			if !yield(he) {
				return
			}
			he = s.halfEdges.get(he).Next
			if he == loop.HalfEdge {
				return
			}
		}
	}
}

// LoopPositions returns the origin positions of the half-edges of l in
// traversal order.
func (s *Store) LoopPositions(l LoopID) []r3.Vec {
	var out []r3.Vec
	for he := range s.LoopHalfEdges(l) {
		out = append(out, s.vertices.get(s.halfEdges.get(he).Origin).Position)
	}
	return out
}

// InLoop reports whether v is the origin of any half-edge of l, or the
// lone vertex of l while it is still empty.
func (s *Store) InLoop(v VertexID, l LoopID) bool {
	if loop := s.loops.get(l); loop != nil && loop.HalfEdge.IsNil() {
		return !v.IsNil() && loop.Vertex == v
	}
	for he := range s.LoopHalfEdges(l) {
		if s.halfEdges.get(he).Origin == v {
			return true
		}
	}
	return false
}

// FindLoop returns the first loop in the ring of f that contains v. An
// empty loop contains only the vertex made with it by Mvfs.
func (s *Store) FindLoop(f FaceID, v VertexID) (LoopID, bool) {
	if s.faces.get(f) == nil {
		return LoopID{}, false
	}
	for l := range s.Loops(f) {
		if s.InLoop(v, l) {
			return l, true
		}
	}
	return LoopID{}, false
}

// predecessor finds the half-edge of l whose successor starts at v. The scan
// is bounded by the loop length so a vertex that is not on l cannot spin
// forever.
func (s *Store) predecessor(l LoopID, v VertexID) (HalfEdgeID, bool) {
	loop := s.loops.get(l)
	if loop == nil || loop.HalfEdge.IsNil() {
		return HalfEdgeID{}, false
	}
	return s.predecessorFrom(loop.HalfEdge, v)
}

func (s *Store) predecessorFrom(start HalfEdgeID, v VertexID) (HalfEdgeID, bool) {
	he := start
	for {
		p := s.halfEdges.get(he)
		if s.halfEdges.get(p.Next).Origin == v {
			return he, true
		}
		he = p.Next
		if he == start {
			return HalfEdgeID{}, false
		}
	}
}

// addLoop splices l into the loop ring of f right after its outer loop.
func (s *Store) addLoop(f FaceID, l LoopID) {
	face := s.faces.get(f)
	l0 := s.loops.get(face.Loop)
	l1 := s.loops.get(l)

	l1.Next = l0.Next
	l1.Prev = face.Loop
	s.loops.get(l0.Next).Prev = l
	l0.Next = l
	l1.Face = f
}

// setLoop points every half-edge of the chain starting at he to l.
func (s *Store) setLoop(he HalfEdgeID, l LoopID) {
	start := he
	for {
		p := s.halfEdges.get(he)
		p.Loop = l
		he = p.Next
		if he == start {
			return
		}
	}
}

func (s *Store) newLoop(f FaceID) (LoopID, *Loop) {
	id, l := s.loops.insert(Loop{Face: f})
	l.Next = id
	l.Prev = id
	return id, l
}
