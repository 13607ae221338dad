package brep

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mvfs makes a vertex, a face, and a solid. The face gets a single empty
// loop; the first Mve on it creates the first edge.
func (s *Store) Mvfs(p r3.Vec) (SolidID, FaceID, VertexID) {
	sid, solid := s.solids.insert(Solid{})
	fid, face := s.faces.insert(Face{Solid: sid})
	vid, _ := s.vertices.insert(Vertex{Position: p})
	lid, loop := s.newLoop(fid)
	loop.Vertex = vid

	solid.Face = fid
	face.Loop = lid
	return sid, fid, vid
}

// Mve makes a new vertex at p joined to v0 by a new edge. The half-edge pair
// is spliced into l right after the occurrence of v0.
func (s *Store) Mve(p r3.Vec, v0 VertexID, l LoopID) (VertexID, EdgeID, error) {
	loop := s.loops.get(l)
	if loop == nil {
		return VertexID{}, EdgeID{}, fmt.Errorf("mve: loop %d: %w", l.Index(), ErrNoEntity)
	}
	if s.vertices.get(v0) == nil {
		return VertexID{}, EdgeID{}, fmt.Errorf("mve: v%d: %w", v0.Index(), ErrNoEntity)
	}

	var at HalfEdgeID
	if loop.HalfEdge.IsNil() {
		if loop.Vertex != v0 {
			return VertexID{}, EdgeID{}, fmt.Errorf("mve: v%d: %w", v0.Index(), ErrVertexNotOnLoop)
		}
	} else {
		var ok bool
		if at, ok = s.predecessor(l, v0); !ok {
			return VertexID{}, EdgeID{}, fmt.Errorf("mve: v%d: %w", v0.Index(), ErrVertexNotOnLoop)
		}
	}

	v1, _ := s.vertices.insert(Vertex{Position: p})
	e, edge := s.edges.insert(Edge{})
	h0, he0 := s.halfEdges.insert(HalfEdge{Edge: e, Origin: v0, Loop: l})
	h1, he1 := s.halfEdges.insert(HalfEdge{Edge: e, Origin: v1, Loop: l})

	edge.HalfEdges = [2]HalfEdgeID{h0, h1}
	he0.Twin = h1
	he1.Twin = h0

	he0.Next = h1
	he1.Prev = h0
	if loop.HalfEdge.IsNil() {
		he1.Next = h0
		he0.Prev = h1
		loop.HalfEdge = h0
		loop.Vertex = VertexID{}
	} else {
		he := s.halfEdges.get(at)
		he1.Next = he.Next
		s.halfEdges.get(he.Next).Prev = h1
		he0.Prev = at
		he.Next = h0
	}

	return v1, e, nil
}

// MveFace is Mve on the loop of f that contains v0.
func (s *Store) MveFace(p r3.Vec, v0 VertexID, f FaceID) (VertexID, EdgeID, error) {
	if s.faces.get(f) == nil {
		return VertexID{}, EdgeID{}, fmt.Errorf("mve: f%d: %w", f.Index(), ErrNoEntity)
	}
	l, ok := s.FindLoop(f, v0)
	if !ok {
		return VertexID{}, EdgeID{}, fmt.Errorf("mve: v%d on f%d: %w", v0.Index(), f.Index(), ErrVertexNotOnLoop)
	}
	return s.Mve(p, v0, l)
}

// Mef makes an edge from v0 to v1 and a face. The loop l0 is split in two:
// l0 keeps the half-edge starting at v0 and the new face's loop gets its
// twin starting at v1.
func (s *Store) Mef(v0, v1 VertexID, l0 LoopID) (FaceID, EdgeID, error) {
	loop0 := s.loops.get(l0)
	if loop0 == nil {
		return FaceID{}, EdgeID{}, fmt.Errorf("mef: loop %d: %w", l0.Index(), ErrNoEntity)
	}
	for _, v := range []VertexID{v0, v1} {
		if s.vertices.get(v) == nil {
			return FaceID{}, EdgeID{}, fmt.Errorf("mef: v%d: %w", v.Index(), ErrNoEntity)
		}
	}
	if v0 == v1 {
		return FaceID{}, EdgeID{}, fmt.Errorf("mef: v%d: %w", v0.Index(), ErrSameVertex)
	}
	if loop0.HalfEdge.IsNil() {
		return FaceID{}, EdgeID{}, fmt.Errorf("mef: loop %d: %w", l0.Index(), ErrEmptyLoop)
	}

	// Locate both splice points before touching any link.
	a, ok := s.predecessor(l0, v0)
	if !ok {
		return FaceID{}, EdgeID{}, fmt.Errorf("mef: v%d: %w", v0.Index(), ErrVertexNotOnLoop)
	}
	x := s.halfEdges.get(a).Next
	b, ok := s.predecessorFrom(x, v1)
	if !ok {
		return FaceID{}, EdgeID{}, fmt.Errorf("mef: v%d: %w", v1.Index(), ErrVertexNotOnLoop)
	}

	f0 := loop0.Face
	f1, face1 := s.faces.insert(Face{Solid: s.faces.get(f0).Solid})
	l1, loop1 := s.newLoop(f1)
	face1.Loop = l1

	e, edge := s.edges.insert(Edge{})
	h0, he0 := s.halfEdges.insert(HalfEdge{Edge: e, Origin: v0, Loop: l0})
	h1, he1 := s.halfEdges.insert(HalfEdge{Edge: e, Origin: v1, Loop: l1})
	edge.HalfEdges = [2]HalfEdgeID{h0, h1}
	he0.Twin = h1
	he1.Twin = h0

	pa := s.halfEdges.get(a)
	he1.Next = x
	s.halfEdges.get(x).Prev = h1
	he0.Prev = a
	pa.Next = h0

	pb := s.halfEdges.get(b)
	y := pb.Next
	he0.Next = y
	s.halfEdges.get(y).Prev = h0
	he1.Prev = b
	pb.Next = h1

	loop0.HalfEdge = h0
	loop1.HalfEdge = h1
	s.setLoop(h1, l1)

	return f1, e, nil
}

// MefFace is Mef on the loop of f that contains v0.
func (s *Store) MefFace(v0, v1 VertexID, f FaceID) (FaceID, EdgeID, error) {
	if s.faces.get(f) == nil {
		return FaceID{}, EdgeID{}, fmt.Errorf("mef: f%d: %w", f.Index(), ErrNoEntity)
	}
	l, ok := s.FindLoop(f, v0)
	if !ok {
		return FaceID{}, EdgeID{}, fmt.Errorf("mef: v%d on f%d: %w", v0.Index(), f.Index(), ErrVertexNotOnLoop)
	}
	return s.Mef(v0, v1, l)
}

// KeMr kills edge e and makes a ring. Both half-edges of e must lie on the
// same loop of f. The side reached through the first half-edge's predecessor
// stays in that loop; the other side becomes a new hole loop of f, which is
// returned.
func (s *Store) KeMr(e EdgeID, f FaceID) (LoopID, error) {
	edge := s.edges.get(e)
	if edge == nil {
		return LoopID{}, fmt.Errorf("kemr: e%d: %w", e.Index(), ErrNoEntity)
	}
	if s.faces.get(f) == nil {
		return LoopID{}, fmt.Errorf("kemr: f%d: %w", f.Index(), ErrNoEntity)
	}

	h0, h1 := edge.HalfEdges[0], edge.HalfEdges[1]
	he0, he1 := s.halfEdges.get(h0), s.halfEdges.get(h1)
	if he0.Loop != he1.Loop || s.loops.get(he0.Loop).Face != f {
		return LoopID{}, fmt.Errorf("kemr: e%d on f%d: %w", e.Index(), f.Index(), ErrEdgeNotOnFace)
	}
	if he0.Next == h1 || he1.Next == h0 {
		return LoopID{}, fmt.Errorf("kemr: e%d: %w", e.Index(), ErrDanglingEdge)
	}

	l0 := he0.Loop
	l1, _ := s.newLoop(f)
	s.addLoop(f, l1)

	p0, p1 := he0.Prev, he1.Prev

	s.halfEdges.get(p0).Next = he1.Next
	s.halfEdges.get(he1.Next).Prev = p0

	s.halfEdges.get(p1).Next = he0.Next
	s.halfEdges.get(he0.Next).Prev = p1

	s.loops.get(l0).HalfEdge = p0
	s.loops.get(l1).HalfEdge = p1
	s.setLoop(p1, l1)

	s.halfEdges.remove(h0)
	s.halfEdges.remove(h1)
	s.edges.remove(e)

	return l1, nil
}

// KfMrh kills face f1 and makes its only loop a hole of f0. Both faces
// must belong to the same solid.
func (s *Store) KfMrh(f0, f1 FaceID) error {
	face0 := s.faces.get(f0)
	if face0 == nil {
		return fmt.Errorf("kfmrh: f%d: %w", f0.Index(), ErrNoEntity)
	}
	face1 := s.faces.get(f1)
	if face1 == nil {
		return fmt.Errorf("kfmrh: f%d: %w", f1.Index(), ErrNoEntity)
	}
	if f0 == f1 {
		return fmt.Errorf("kfmrh: f%d: %w", f0.Index(), ErrSameFace)
	}
	if face0.Solid != face1.Solid {
		return fmt.Errorf("kfmrh: f%d and f%d: %w", f0.Index(), f1.Index(), ErrOtherSolid)
	}
	l := face1.Loop
	if s.loops.get(l).Next != l {
		return fmt.Errorf("kfmrh: f%d: %w", f1.Index(), ErrFaceHasHoles)
	}

	s.addLoop(f0, l)
	if solid := s.solids.get(face1.Solid); solid != nil && solid.Face == f1 {
		solid.Face = f0
	}
	s.faces.remove(f1)
	return nil
}
