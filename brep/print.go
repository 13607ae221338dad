package brep

import (
	"fmt"
	"io"
)

// PrintFace writes one line per half-edge of f, loop by loop:
//
//	f1  l0  he0  v0 : 0 0 0
//
// Dead faces print nothing.
func (s *Store) PrintFace(w io.Writer, f FaceID) error {
	if s.faces.get(f) == nil {
		return nil
	}
	li := 0
	for l := range s.Loops(f) {
		hi := 0
		for he := range s.LoopHalfEdges(l) {
			v := s.halfEdges.get(he).Origin
			p := s.vertices.get(v).Position
			if _, err := fmt.Fprintf(w, "f%-2d l%-2d he%-2d v%-2d: %g %g %g\n", f.Index(), li, hi, v.Index(), p.X, p.Y, p.Z); err != nil {
				return err
			}
			hi++
		}
		li++
	}
	return nil
}

// Print dumps every live face.
func (s *Store) Print(w io.Writer) error {
	for f := range s.Faces() {
		if err := s.PrintFace(w, f); err != nil {
			return err
		}
	}
	return nil
}

// PrintLoop dumps a single loop.
func (s *Store) PrintLoop(w io.Writer, l LoopID) error {
	hi := 0
	for he := range s.LoopHalfEdges(l) {
		v := s.halfEdges.get(he).Origin
		p := s.vertices.get(v).Position
		if _, err := fmt.Fprintf(w, "he%-2d v%-2d: %g %g %g\n", hi, v.Index(), p.X, p.Y, p.Z); err != nil {
			return err
		}
		hi++
	}
	return nil
}
