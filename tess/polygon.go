package tess

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

// Polygon triangulates the planar region bounded by contours[0] and
// excluding every following contour. Winding of the input does not matter
// for holes; the outer contour decides which side the triangles face.
//
// A convex polygon without holes comes back as a single Fan. Anything else
// is ear-clipped into a List after each hole has been bridged into the outer
// boundary. Degenerate input yields no batches.
func Polygon(contours [][]r3.Vec) []Batch {
	if len(contours) == 0 {
		return nil
	}
	outer := clean(contours[0])
	if len(outer) < 3 {
		return nil
	}
	n := newell(outer)
	if r3.Norm(n) < epsilon {
		return nil
	}
	u, v := basis(r3.Unit(n))

	pg := &polygon{u: u, v: v}
	ring := pg.add(outer)
	if pg.signedArea(ring) < 0 {
		slices.Reverse(ring)
	}

	var holes [][]int
	for _, c := range contours[1:] {
		c = clean(c)
		if len(c) < 3 {
			continue
		}
		h := pg.add(c)
		a := pg.signedArea(h)
		if math.Abs(a) < epsilon {
			continue
		}
		if a > 0 {
			slices.Reverse(h)
		}
		holes = append(holes, h)
	}

	if len(holes) == 0 && pg.convex(ring) {
		return []Batch{{Kind: Fan, Points: outer}}
	}

	ring = pg.bridge(ring, holes)
	tris := pg.clip(ring)
	if len(tris) == 0 {
		return nil
	}
	return []Batch{{Kind: List, Points: tris}}
}

type vec2 struct {
	x, y float64
}

func sub2(a, b vec2) vec2 {
	return vec2{a.x - b.x, a.y - b.y}
}

// orient is positive when a, b, c turn left.
func orient(a, b, c vec2) float64 {
	ab, bc := sub2(b, a), sub2(c, b)
	return ab.x*bc.y - ab.y*bc.x
}

func sign(x float64) int {
	switch {
	case x > epsilon:
		return 1
	case x < -epsilon:
		return -1
	}
	return 0
}

func same(a, b vec2) bool {
	return math.Abs(a.x-b.x) < epsilon && math.Abs(a.y-b.y) < epsilon
}

// polygon holds the points of all contours and their projection onto the
// plane spanned by u and v. Rings refer to points by index.
type polygon struct {
	u, v r3.Vec
	pts  []r3.Vec
	flat []vec2
}

func (pg *polygon) add(c []r3.Vec) []int {
	ring := make([]int, len(c))
	for i, p := range c {
		ring[i] = len(pg.pts)
		pg.pts = append(pg.pts, p)
		pg.flat = append(pg.flat, vec2{r3.Dot(p, pg.u), r3.Dot(p, pg.v)})
	}
	return ring
}

func (pg *polygon) at(ring []int, i int) vec2 {
	n := len(ring)
	return pg.flat[ring[((i%n)+n)%n]]
}

func (pg *polygon) signedArea(ring []int) float64 {
	var a float64
	for i := range ring {
		p, q := pg.at(ring, i), pg.at(ring, i+1)
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func (pg *polygon) convex(ring []int) bool {
	for i := range ring {
		if sign(orient(pg.at(ring, i-1), pg.at(ring, i), pg.at(ring, i+1))) <= 0 {
			return false
		}
	}
	return true
}

// contains reports whether q lies inside ring by crossing number.
func (pg *polygon) contains(ring []int, q vec2) bool {
	in := false
	for i := range ring {
		a, b := pg.at(ring, i), pg.at(ring, i+1)
		if (a.y > q.y) != (b.y > q.y) {
			x := a.x + (q.y-a.y)*(b.x-a.x)/(b.y-a.y)
			if q.x < x {
				in = !in
			}
		}
	}
	return in
}

// bridge merges every hole into ring through a pair of coincident cut
// edges, rightmost hole first. A hole that cannot see the boundary is
// dropped.
func (pg *polygon) bridge(ring []int, holes [][]int) []int {
	rightmost := func(h []int) int {
		best := 0
		for i := range h {
			p, b := pg.flat[h[i]], pg.flat[h[best]]
			if p.x > b.x || (p.x == b.x && p.y < b.y) {
				best = i
			}
		}
		return best
	}
	slices.SortFunc(holes, func(a, b []int) int {
		return cmp.Compare(pg.flat[b[rightmost(b)]].x, pg.flat[a[rightmost(a)]].x)
	})

	for k, hole := range holes {
		hi := rightmost(hole)
		ci, ok := pg.visible(ring, hole[hi], holes[k:])
		if !ok {
			continue
		}
		merged := make([]int, 0, len(ring)+len(hole)+2)
		merged = append(merged, ring[:ci+1]...)
		merged = append(merged, hole[hi:]...)
		merged = append(merged, hole[:hi+1]...)
		merged = append(merged, ring[ci:]...)
		ring = merged
	}
	return ring
}

// visible finds the nearest vertex of ring that hole vertex h can be joined
// to without crossing ring or any pending hole.
func (pg *polygon) visible(ring []int, h int, pending [][]int) (int, bool) {
	hp := pg.flat[h]
	order := make([]int, len(ring))
	for i := range order {
		order[i] = i
	}
	dist := func(i int) float64 {
		d := sub2(pg.flat[ring[i]], hp)
		return d.x*d.x + d.y*d.y
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(dist(a), dist(b)) })

	for _, ci := range order {
		p := pg.flat[ring[ci]]
		if same(p, hp) {
			return ci, true
		}
		if pg.blocked(ring, hp, p) {
			continue
		}
		if !pg.wedge(ring, ci, hp) {
			continue
		}
		mid := vec2{(hp.x + p.x) / 2, (hp.y + p.y) / 2}
		hidden := false
		for _, other := range pending {
			if pg.blocked(other, hp, p) || pg.contains(other, mid) {
				hidden = true
				break
			}
		}
		if !hidden {
			return ci, true
		}
	}
	return 0, false
}

// wedge reports whether q lies strictly inside the interior angle of ring
// at vertex i. Bridge copies share a position but not a wedge.
func (pg *polygon) wedge(ring []int, i int, q vec2) bool {
	a, p, b := pg.at(ring, i-1), pg.at(ring, i), pg.at(ring, i+1)
	left, right := sign(orient(a, p, q)) > 0, sign(orient(p, b, q)) > 0
	if sign(orient(a, p, b)) >= 0 {
		return left && right
	}
	return left || right
}

// blocked reports whether segment ab crosses or touches an edge of ring
// that does not end at a or b.
func (pg *polygon) blocked(ring []int, a, b vec2) bool {
	for i := range ring {
		c, d := pg.at(ring, i), pg.at(ring, i+1)
		if same(c, a) || same(c, b) || same(d, a) || same(d, b) {
			continue
		}
		d1, d2 := sign(orient(c, d, a)), sign(orient(c, d, b))
		d3, d4 := sign(orient(a, b, c)), sign(orient(a, b, d))
		if d1*d2 < 0 && d3*d4 < 0 {
			return true
		}
		if (d3 == 0 && between(a, b, c)) || (d4 == 0 && between(a, b, d)) {
			return true
		}
	}
	return false
}

// between reports whether q, known to be collinear with ab, lies within it.
func between(a, b, q vec2) bool {
	return q.x >= math.Min(a.x, b.x)-epsilon && q.x <= math.Max(a.x, b.x)+epsilon &&
		q.y >= math.Min(a.y, b.y)-epsilon && q.y <= math.Max(a.y, b.y)+epsilon
}

// clip ear-clips a counter-clockwise ring into independent triangles.
func (pg *polygon) clip(ring []int) []r3.Vec {
	ring = slices.Clone(ring)
	var tris []r3.Vec
	for len(ring) > 3 {
		i := pg.ear(ring)
		if i < 0 {
			// No clean ear: shed a collinear vertex, otherwise force the
			// first convex corner.
			if j := pg.collinear(ring); j >= 0 {
				ring = slices.Delete(ring, j, j+1)
				continue
			}
			if i = pg.corner(ring); i < 0 {
				return tris
			}
		}
		n := len(ring)
		a, b, c := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
		tris = append(tris, pg.pts[a], pg.pts[b], pg.pts[c])
		ring = slices.Delete(ring, i, i+1)
	}
	if len(ring) == 3 && sign(orient(pg.flat[ring[0]], pg.flat[ring[1]], pg.flat[ring[2]])) > 0 {
		tris = append(tris, pg.pts[ring[0]], pg.pts[ring[1]], pg.pts[ring[2]])
	}
	return tris
}

func (pg *polygon) ear(ring []int) int {
	n := len(ring)
	for i := range ring {
		a, b, c := pg.at(ring, i-1), pg.at(ring, i), pg.at(ring, i+1)
		if sign(orient(a, b, c)) <= 0 {
			continue
		}
		ok := true
		for j := 0; j < n-3 && ok; j++ {
			q := pg.at(ring, i+2+j)
			if same(q, a) || same(q, b) || same(q, c) {
				continue
			}
			// Points on the triangle's edges block it too.
			if sign(orient(a, b, q)) >= 0 && sign(orient(b, c, q)) >= 0 && sign(orient(c, a, q)) >= 0 {
				ok = false
			}
		}
		if ok && !pg.blocked(ring, c, a) {
			return i
		}
	}
	return -1
}

func (pg *polygon) collinear(ring []int) int {
	for i := range ring {
		if sign(orient(pg.at(ring, i-1), pg.at(ring, i), pg.at(ring, i+1))) == 0 {
			return i
		}
	}
	return -1
}

func (pg *polygon) corner(ring []int) int {
	for i := range ring {
		if sign(orient(pg.at(ring, i-1), pg.at(ring, i), pg.at(ring, i+1))) > 0 {
			return i
		}
	}
	return -1
}

// clean drops repeated consecutive points, including a closing repeat of
// the first point.
func clean(c []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, 0, len(c))
	for _, p := range c {
		if len(out) > 0 && r3.Norm(r3.Sub(p, out[len(out)-1])) < epsilon {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && r3.Norm(r3.Sub(out[0], out[len(out)-1])) < epsilon {
		out = out[:len(out)-1]
	}
	return out
}

// newell is the area-weighted normal of a closed contour.
func newell(c []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, p := range c {
		q := c[(i+1)%len(c)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// basis returns unit vectors u and v spanning the plane normal to n, with
// u × v = n.
func basis(n r3.Vec) (u, v r3.Vec) {
	a := r3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		a = r3.Vec{Y: 1}
	}
	u = r3.Unit(r3.Cross(n, a))
	v = r3.Cross(n, u)
	return u, v
}
