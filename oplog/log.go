package oplog

import (
	"fmt"
	"math"

	"github.com/bloodmagesoftware/mesher/brep"
	"gonum.org/v1/gonum/spatial/r3"
)

// Record is an operator together with the source line it was parsed from.
// Line is zero for records built in code.
type Record struct {
	Op   Op
	Line int
}

// Log is an ordered operator history.
type Log struct {
	Records []Record
}

// Append adds operators to the end of the log.
func (l *Log) Append(ops ...Op) {
	for _, op := range ops {
		l.Records = append(l.Records, Record{Op: op})
	}
}

func (l *Log) Len() int {
	return len(l.Records)
}

// Ops returns the operators without their line numbers.
func (l *Log) Ops() []Op {
	ops := make([]Op, len(l.Records))
	for i, r := range l.Records {
		ops[i] = r.Op
	}
	return ops
}

// InvalidTopologyOperation reports an operator whose preconditions did not
// hold against the store it was replayed on.
type InvalidTopologyOperation struct {
	Index int // position in the log
	Line  int // source line, zero if unknown
	Kind  Kind
	Err   error
}

func (e *InvalidTopologyOperation) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid topology operation #%d (%s) at line %d: %v", e.Index, e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("invalid topology operation #%d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *InvalidTopologyOperation) Unwrap() error {
	return e.Err
}

// Replay applies every record to s in order, calling step after each
// successful one when step is non-nil. It stops at the first failure.
func (l *Log) Replay(s *brep.Store, step func(i int, s *brep.Store)) error {
	logger := brep.Logger()
	for i, r := range l.Records {
		if err := r.Op.Apply(s); err != nil {
			return &InvalidTopologyOperation{Index: i, Line: r.Line, Kind: r.Op.Kind(), Err: err}
		}
		logger.Debug("applied operator", "index", i, "line", r.Line, "op", r.Op.String())
		if step != nil {
			step(i, s)
		}
	}
	return nil
}

// Build replays the log against a fresh store.
func Build(l *Log) (*brep.Store, error) {
	s := brep.NewStore()
	if err := l.Replay(s, nil); err != nil {
		return nil, err
	}
	st := s.Stats()
	brep.Logger().Info("store built",
		"operators", l.Len(),
		"solids", st.Solids,
		"faces", st.Faces,
		"edges", st.Edges,
		"vertices", st.Vertices,
	)
	return s, nil
}

// Equal compares two operator sequences. Coordinates and distances may
// differ by at most tol.
func Equal(a, b []Op, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !opEqual(a[i], b[i], tol) {
			return false
		}
	}
	return true
}

func opEqual(a, b Op, tol float64) bool {
	switch x := a.(type) {
	case Mvfs:
		y, ok := b.(Mvfs)
		return ok && vecEqual(x.P, y.P, tol)
	case Mve:
		y, ok := b.(Mve)
		return ok && vecEqual(x.P, y.P, tol) && x.V0 == y.V0 && x.F == y.F
	case Mef:
		y, ok := b.(Mef)
		return ok && x == y
	case KeMr:
		y, ok := b.(KeMr)
		return ok && x == y
	case KfMrh:
		y, ok := b.(KfMrh)
		return ok && x == y
	case Sweep:
		y, ok := b.(Sweep)
		return ok && x.F == y.F && vecEqual(x.D, y.D, tol) && math.Abs(x.T-y.T) <= tol
	}
	return false
}

func vecEqual(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
