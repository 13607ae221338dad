package brep

import "errors"

// Precondition violations reported by the Euler operators.
var (
	ErrNoEntity        = errors.New("entity does not exist")
	ErrVertexNotOnLoop = errors.New("vertex is not on loop")
	ErrEdgeNotOnFace   = errors.New("edge does not bound face")
	ErrDanglingEdge    = errors.New("edge is a dangling wire edge")
	ErrFaceHasHoles    = errors.New("face has more than one loop")
	ErrSameFace        = errors.New("faces must differ")
	ErrOtherSolid      = errors.New("faces belong to different solids")
	ErrSameVertex      = errors.New("vertices must differ")
	ErrEmptyLoop       = errors.New("loop has no half-edges")
	ErrZeroDirection   = errors.New("sweep direction is zero")
)
