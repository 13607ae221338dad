package tess

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/bloodmagesoftware/mesher/brep"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// Buffer is a flat-shaded triangle soup. Every three consecutive positions
// form a triangle and Normals[i] is the normal of the triangle holding
// Positions[i].
type Buffer struct {
	Positions []r3.Vec
	Normals   []r3.Vec
}

// Triangles returns the number of triangles in b.
func (b *Buffer) Triangles() int {
	return len(b.Positions) / 3
}

// Append adds an independent triangle list, giving each triangle its own
// normal.
func (b *Buffer) Append(tris []r3.Vec) {
	for i := 0; i+2 < len(tris); i += 3 {
		n := Normal(tris[i], tris[i+1], tris[i+2])
		b.Positions = append(b.Positions, tris[i], tris[i+1], tris[i+2])
		b.Normals = append(b.Normals, n, n, n)
	}
}

// Area is the total surface area of b.
func (b *Buffer) Area() float64 {
	var a float64
	for i := 0; i+2 < len(b.Positions); i += 3 {
		a += Area(b.Positions[i], b.Positions[i+1], b.Positions[i+2])
	}
	return a
}

// Bounds returns the axis-aligned box around every position. An empty buffer
// has empty bounds at the origin.
func (b *Buffer) Bounds() (lo, hi r3.Vec) {
	if len(b.Positions) == 0 {
		return lo, hi
	}
	lo = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range b.Positions {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}

// TriangulateFace returns the triangles covering face f: its outer loop
// minus its hole loops. A face whose outer loop is empty or degenerate
// produces no triangles.
func TriangulateFace(s *brep.Store, f brep.FaceID) ([]r3.Vec, error) {
	if _, ok := s.Face(f); !ok {
		return nil, fmt.Errorf("face %d: %w", f.Index(), brep.ErrNoEntity)
	}

	var contours [][]r3.Vec
	for l := range s.Loops(f) {
		contours = append(contours, s.LoopPositions(l))
	}
	if len(contours) == 0 || len(contours[0]) < 3 {
		return nil, nil
	}

	tris := Flatten(Polygon(contours))
	if len(tris) == 0 {
		brep.Logger().Warn("skipping degenerate face", "face", f.Index())
	}
	return tris, nil
}

// Triangulate tessellates every live face of s in parallel. The store must
// not be modified until it returns. Triangles appear grouped by face, in
// face creation order.
func Triangulate(ctx context.Context, s *brep.Store) (*Buffer, error) {
	var faces []brep.FaceID
	for f := range s.Faces() {
		faces = append(faces, f)
	}

	parts := make([][]r3.Vec, len(faces))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range faces {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tris, err := TriangulateFace(s, f)
			if err != nil {
				return err
			}
			brep.Logger().Debug("tessellated face", "face", f.Index(), "triangles", len(tris)/3)
			parts[i] = tris
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tessellating: %w", err)
	}

	b := &Buffer{}
	for _, tris := range parts {
		b.Append(tris)
	}
	brep.Logger().Info("tessellation done", "faces", len(faces), "triangles", b.Triangles())
	return b, nil
}
