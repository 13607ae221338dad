// Package oplog holds the replayable construction history of a solid.
//
// A Log is an ordered list of operator records. The text form puts one
// operator per line:
//
//	Mvfs (x y z)
//	Mve (x y z) v<v0> f<face>
//	Mef v<v0> v<v1> f<face>
//	KeMr e<edge> f<face>
//	KfMrh f<face0> f<face1>
//	Sweep f<face> (dx dy dz) t
//
// Indices refer to vertices, edges and faces by creation order. A '#' starts
// a comment that runs to the end of the line.
package oplog

import (
	"fmt"
	"strconv"

	"github.com/bloodmagesoftware/mesher/brep"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind names an operator.
type Kind uint8

const (
	KindMvfs Kind = iota
	KindMve
	KindMef
	KindKeMr
	KindKfMrh
	KindSweep
)

var kindNames = [...]string{
	KindMvfs:  "Mvfs",
	KindMve:   "Mve",
	KindMef:   "Mef",
	KindKeMr:  "KeMr",
	KindKfMrh: "KfMrh",
	KindSweep: "Sweep",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Op is one operator record. The set of implementations is closed: Mvfs,
// Mve, Mef, KeMr, KfMrh and Sweep.
type Op interface {
	Kind() Kind
	// Apply runs the operator against s, resolving indices by creation order.
	Apply(s *brep.Store) error
	// String renders the operator in log syntax.
	String() string
	isOp()
}

type (
	Mvfs struct {
		P r3.Vec
	}

	Mve struct {
		P  r3.Vec
		V0 int
		F  int
	}

	Mef struct {
		V0, V1 int
		F      int
	}

	KeMr struct {
		E int
		F int
	}

	KfMrh struct {
		F0, F1 int
	}

	Sweep struct {
		F int
		D r3.Vec
		T float64
	}
)

func (Mvfs) Kind() Kind  { return KindMvfs }
func (Mve) Kind() Kind   { return KindMve }
func (Mef) Kind() Kind   { return KindMef }
func (KeMr) Kind() Kind  { return KindKeMr }
func (KfMrh) Kind() Kind { return KindKfMrh }
func (Sweep) Kind() Kind { return KindSweep }

func (Mvfs) isOp()  {}
func (Mve) isOp()   {}
func (Mef) isOp()   {}
func (KeMr) isOp()  {}
func (KfMrh) isOp() {}
func (Sweep) isOp() {}

func (o Mvfs) Apply(s *brep.Store) error {
	s.Mvfs(o.P)
	return nil
}

func (o Mve) Apply(s *brep.Store) error {
	v0, err := vertex(s, o.V0)
	if err != nil {
		return err
	}
	f, err := face(s, o.F)
	if err != nil {
		return err
	}
	_, _, err = s.MveFace(o.P, v0, f)
	return err
}

func (o Mef) Apply(s *brep.Store) error {
	v0, err := vertex(s, o.V0)
	if err != nil {
		return err
	}
	v1, err := vertex(s, o.V1)
	if err != nil {
		return err
	}
	f, err := face(s, o.F)
	if err != nil {
		return err
	}
	_, _, err = s.MefFace(v0, v1, f)
	return err
}

func (o KeMr) Apply(s *brep.Store) error {
	e, ok := s.EdgeAt(o.E)
	if !ok {
		return fmt.Errorf("e%d: %w", o.E, brep.ErrNoEntity)
	}
	f, err := face(s, o.F)
	if err != nil {
		return err
	}
	_, err = s.KeMr(e, f)
	return err
}

func (o KfMrh) Apply(s *brep.Store) error {
	f0, err := face(s, o.F0)
	if err != nil {
		return err
	}
	f1, err := face(s, o.F1)
	if err != nil {
		return err
	}
	return s.KfMrh(f0, f1)
}

func (o Sweep) Apply(s *brep.Store) error {
	f, err := face(s, o.F)
	if err != nil {
		return err
	}
	return s.Sweep(f, o.D, o.T)
}

func vertex(s *brep.Store, i int) (brep.VertexID, error) {
	v, ok := s.VertexAt(i)
	if !ok {
		return v, fmt.Errorf("v%d: %w", i, brep.ErrNoEntity)
	}
	return v, nil
}

func face(s *brep.Store, i int) (brep.FaceID, error) {
	f, ok := s.FaceAt(i)
	if !ok {
		return f, fmt.Errorf("f%d: %w", i, brep.ErrNoEntity)
	}
	return f, nil
}

func (o Mvfs) String() string {
	return fmt.Sprintf("Mvfs %s", vec(o.P))
}

func (o Mve) String() string {
	return fmt.Sprintf("Mve %s v%d f%d", vec(o.P), o.V0, o.F)
}

func (o Mef) String() string {
	return fmt.Sprintf("Mef v%d v%d f%d", o.V0, o.V1, o.F)
}

func (o KeMr) String() string {
	return fmt.Sprintf("KeMr e%d f%d", o.E, o.F)
}

func (o KfMrh) String() string {
	return fmt.Sprintf("KfMrh f%d f%d", o.F0, o.F1)
}

func (o Sweep) String() string {
	return fmt.Sprintf("Sweep f%d %s %s", o.F, vec(o.D), num(o.T))
}

func vec(p r3.Vec) string {
	return "(" + num(p.X) + " " + num(p.Y) + " " + num(p.Z) + ")"
}

// num prints the shortest form that parses back to the same float64.
func num(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
