package brep

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sweep extrudes face f along d scaled to length t. Every loop of f gets a
// ring of side faces built on the twin loop across it; the twin face ends up
// translated by the sweep vector. Side walls of hole loops are folded back
// into the face across the outer loop with KfMrh.
//
// Sweep is built from Mve, Mef and KfMrh only. An error leaves the store
// partially swept.
func (s *Store) Sweep(f FaceID, d r3.Vec, t float64) error {
	face := s.faces.get(f)
	if face == nil {
		return fmt.Errorf("sweep: f%d: %w", f.Index(), ErrNoEntity)
	}
	n := r3.Norm(d)
	if n == 0 {
		return fmt.Errorf("sweep: f%d: %w", f.Index(), ErrZeroDirection)
	}
	d = r3.Scale(t/n, d)

	outer := face.Loop
	first := s.loops.get(outer).HalfEdge
	if first.IsNil() {
		return fmt.Errorf("sweep: f%d: %w", f.Index(), ErrEmptyLoop)
	}
	fOuter := s.loops.get(s.twinLoop(first)).Face

	Logger().Debug("sweep", "face", f.Index(), "direction", d)

	l := outer
	for {
		start := s.loops.get(l).HalfEdge
		if start.IsNil() {
			return fmt.Errorf("sweep: f%d loop %d: %w", f.Index(), l.Index(), ErrEmptyLoop)
		}
		lTwin := s.twinLoop(start)

		vInit, err := s.raise(start, d, lTwin)
		if err != nil {
			return fmt.Errorf("sweep: f%d: %w", f.Index(), err)
		}
		vPrev := vInit
		for he := s.halfEdges.get(start).Next; he != start; he = s.halfEdges.get(he).Next {
			vNext, err := s.raise(he, d, lTwin)
			if err != nil {
				return fmt.Errorf("sweep: f%d: %w", f.Index(), err)
			}
			if _, _, err := s.Mef(vNext, vPrev, lTwin); err != nil {
				return fmt.Errorf("sweep: f%d: %w", f.Index(), err)
			}
			vPrev = vNext
		}
		if _, _, err := s.Mef(vInit, vPrev, lTwin); err != nil {
			return fmt.Errorf("sweep: f%d: %w", f.Index(), err)
		}

		if l != outer {
			if err := s.KfMrh(fOuter, s.loops.get(lTwin).Face); err != nil {
				return fmt.Errorf("sweep: f%d: %w", f.Index(), err)
			}
		}

		l = s.loops.get(l).Next
		if l == outer {
			return nil
		}
	}
}

// raise makes the translated copy of he's origin on loop l.
func (s *Store) raise(he HalfEdgeID, d r3.Vec, l LoopID) (VertexID, error) {
	v := s.halfEdges.get(he).Origin
	nv, _, err := s.Mve(r3.Add(s.vertices.get(v).Position, d), v, l)
	return nv, err
}

func (s *Store) twinLoop(he HalfEdgeID) LoopID {
	return s.halfEdges.get(s.halfEdges.get(he).Twin).Loop
}
