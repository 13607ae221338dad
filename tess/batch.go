// Package tess turns B-rep faces into flat-shaded triangles.
//
// Polygon triangulation is a pure function from contours to primitive
// batches. Batches are normalized into independent triangles by Flatten,
// and TriangulateFace/Triangulate walk a frozen brep.Store.
package tess

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind is the primitive layout of a Batch.
type Kind uint8

const (
	// List holds independent triangles, three points each.
	List Kind = iota
	// Fan shares its first point between all triangles.
	Fan
	// Strip forms a triangle from every run of three consecutive points.
	Strip
)

func (k Kind) String() string {
	switch k {
	case List:
		return "list"
	case Fan:
		return "fan"
	case Strip:
		return "strip"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Batch is one primitive group produced by polygon triangulation.
type Batch struct {
	Kind   Kind
	Points []r3.Vec
}

// Flatten normalizes batches into an independent triangle list.
//
// A fan of n points becomes n-2 triangles around its first point. A strip of
// n points becomes n-2 triangles whose winding is flipped where needed so
// every triangle agrees with the first one. Lists are copied as they are,
// minus any trailing partial triangle.
func Flatten(batches []Batch) []r3.Vec {
	var out []r3.Vec
	for _, b := range batches {
		p := b.Points
		switch b.Kind {
		case Fan:
			for i := 1; i+1 < len(p); i++ {
				out = append(out, p[0], p[i], p[i+1])
			}
		case Strip:
			if len(p) < 3 {
				continue
			}
			out = append(out, p[0], p[1], p[2])
			ref := r3.Cross(r3.Sub(p[2], p[1]), r3.Sub(p[1], p[0]))
			for i := 1; i+2 < len(p); i++ {
				n := r3.Cross(r3.Sub(p[i+2], p[i+1]), r3.Sub(p[i+1], p[i]))
				if r3.Dot(ref, n) > 0 {
					out = append(out, p[i], p[i+1], p[i+2])
				} else {
					out = append(out, p[i], p[i+2], p[i+1])
				}
			}
		default:
			out = append(out, p[:len(p)-len(p)%3]...)
		}
	}
	return out
}

// Normal is the unit normal of triangle (a, b, c), or the zero vector when
// the triangle is degenerate.
func Normal(a, b, c r3.Vec) r3.Vec {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, b))
	if r3.Norm(n) < epsilon {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Area is the area of triangle (a, b, c).
func Area(a, b, c r3.Vec) float64 {
	return r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
}
