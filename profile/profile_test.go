package profile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/bloodmagesoftware/mesher/brep"
	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/bloodmagesoftware/mesher/tess"
)

func square(x0, y0, x1, y1 float64) Outline {
	return Outline{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func frame() *Profile {
	return &Profile{
		Outline: square(0, 0, 4, 4),
		Holes:   []Outline{square(1, 1, 3, 3)},
		Extrude: Extrusion{Direction: Vec3{Z: 1}, Distance: 1},
	}
}

// build compiles p and checks the resulting store is well formed.
func build(t *testing.T, p *Profile) *brep.Store {
	t.Helper()
	l, err := p.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s, err := oplog.Build(l)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, l)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return s
}

func TestCompileSquare(t *testing.T) {
	p := &Profile{
		Outline: square(0, 0, 1, 1),
		Extrude: Extrusion{Direction: Vec3{Z: 1}, Distance: 1},
	}
	l, err := p.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want, _ := oplog.LoadString(`Mvfs (0 0 0)
Mve (1 0 0) v0 f0
Mve (1 1 0) v1 f0
Mve (0 1 0) v2 f0
Mef v3 v0 f0
Sweep f1 (0 0 1) 1
`)
	if !oplog.Equal(want.Ops(), l.Ops(), 0) {
		t.Errorf("unexpected operators:\n%s", l)
	}
}

func TestCompileFrame(t *testing.T) {
	l, err := frame().Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := `Mvfs (0 0 0)
Mve (4 0 0) v0 f0
Mve (4 4 0) v1 f0
Mve (0 4 0) v2 f0
Mef v3 v0 f0
Mve (1 1 0) v0 f1
Mve (3 1 0) v4 f1
Mve (3 3 0) v5 f1
Mve (1 3 0) v6 f1
Mef v7 v4 f1
KeMr e4 f1
Sweep f1 (0 0 1) 1
`
	if got := l.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestCompiledSolids(t *testing.T) {
	testCases := []struct {
		Name     string
		Profile  *Profile
		Vertices int
		Edges    int
		Faces    int
		Rings    int
		Genus    int
		Area     float64
	}{
		{
			Name: "Clockwise square",
			Profile: &Profile{
				Outline: square(0, 0, 1, 1).reversed(),
				Extrude: Extrusion{Direction: Vec3{Z: 1}, Distance: 1},
			},
			Vertices: 8, Edges: 12, Faces: 6,
			Area: 6,
		},
		{
			Name: "Default direction",
			Profile: &Profile{
				Outline: square(0, 0, 2, 1),
				Extrude: Extrusion{Distance: 3},
			},
			Vertices: 8, Edges: 12, Faces: 6,
			Area: 2*2 + 2*3*3,
		},
		{
			Name:     "Frame extruded up",
			Profile:  frame(),
			Vertices: 16, Edges: 24, Faces: 10, Rings: 2, Genus: 1,
			Area: 48,
		},
		{
			Name: "Frame extruded down",
			Profile: func() *Profile {
				p := frame()
				p.Extrude.Direction = Vec3{Z: -1}
				return p
			}(),
			Vertices: 16, Edges: 24, Faces: 10, Rings: 2, Genus: 1,
			Area: 48,
		},
		{
			Name: "Two holes",
			Profile: &Profile{
				Outline: square(0, 0, 6, 3),
				Holes:   []Outline{square(1, 1, 2, 2), square(4, 1, 5, 2).reversed()},
				Extrude: Extrusion{Direction: Vec3{Z: 1}, Distance: 1},
			},
			Vertices: 24, Edges: 36, Faces: 14, Rings: 4, Genus: 2,
			Area: 2*16 + 18 + 8,
		},
		{
			Name: "Lamina",
			Profile: &Profile{
				Outline: square(0, 0, 1, 1),
			},
			Vertices: 4, Edges: 4, Faces: 2,
			Area: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			s := build(t, tc.Profile)
			st := s.Stats()
			if st.Vertices != tc.Vertices || st.Edges != tc.Edges || st.Faces != tc.Faces || st.Rings() != tc.Rings {
				t.Errorf("got V=%d E=%d F=%d R=%d, want V=%d E=%d F=%d R=%d",
					st.Vertices, st.Edges, st.Faces, st.Rings(),
					tc.Vertices, tc.Edges, tc.Faces, tc.Rings)
			}
			if got, want := st.Euler()-st.Rings(), 2*(st.Solids-tc.Genus); got != want {
				t.Errorf("V-E+F-R = %d, want %d", got, want)
			}

			b, err := tess.Triangulate(context.Background(), s)
			if err != nil {
				t.Fatalf("triangulate: %v", err)
			}
			if math.Abs(b.Area()-tc.Area) > 1e-9 {
				t.Errorf("surface area %g, want %g", b.Area(), tc.Area)
			}
		})
	}
}

func TestPlateSurfaceArea(t *testing.T) {
	for x0 := 1; x0 < 5; x0++ {
		for x1 := x0 + 1; x1 < 6; x1++ {
			for y0 := 1; y0 < 5; y0++ {
				for y1 := y0 + 1; y1 < 6; y1++ {
					for _, dz := range []float64{1, -1} {
						name := fmt.Sprintf("hole %d,%d-%d,%d dz %g", x0, y0, x1, y1, dz)
						t.Run(name, func(t *testing.T) {
							p := &Profile{
								Outline: square(0, 0, 6, 6),
								Holes:   []Outline{square(float64(x0), float64(y0), float64(x1), float64(y1))},
								Extrude: Extrusion{Direction: Vec3{Z: dz}, Distance: 1},
							}
							w, h := float64(x1-x0), float64(y1-y0)
							want := 2*(36-w*h) + 24 + 2*(w+h)

							b, err := tess.Triangulate(context.Background(), build(t, p))
							if err != nil {
								t.Fatalf("triangulate: %v", err)
							}
							if math.Abs(b.Area()-want) > 1e-9 {
								t.Errorf("surface area %g, want %g", b.Area(), want)
							}
						})
					}
				}
			}
		}
	}
}

func TestCompileDownwardStaysBelow(t *testing.T) {
	p := frame()
	p.Z = 2
	p.Extrude.Direction = Vec3{Z: -1}
	s := build(t, p)

	b, err := tess.Triangulate(context.Background(), s)
	if err != nil {
		t.Fatalf("triangulate: %v", err)
	}
	lo, hi := b.Bounds()
	if lo.Z != 1 || hi.Z != 2 {
		t.Errorf("z range [%g, %g], want [1, 2]", lo.Z, hi.Z)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		Name    string
		Profile Profile
		Want    error
	}{
		{
			Name:    "Too few points",
			Profile: Profile{Outline: Outline{{}, {X: 1}}},
			Want:    ErrTooFewPoints,
		},
		{
			Name:    "Collinear outline",
			Profile: Profile{Outline: Outline{{}, {X: 1}, {X: 2}}},
			Want:    ErrZeroArea,
		},
		{
			Name: "Hole outside",
			Profile: Profile{
				Outline: square(0, 0, 1, 1),
				Holes:   []Outline{square(2, 2, 3, 3)},
			},
			Want: ErrHoleOutside,
		},
		{
			Name: "Degenerate hole",
			Profile: Profile{
				Outline: square(0, 0, 4, 4),
				Holes:   []Outline{{{X: 1, Y: 1}, {X: 2, Y: 2}}},
			},
			Want: ErrTooFewPoints,
		},
		{
			Name: "Sideways extrusion",
			Profile: Profile{
				Outline: square(0, 0, 1, 1),
				Extrude: Extrusion{Direction: Vec3{X: 1}, Distance: 1},
			},
			Want: ErrFlatExtrude,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			err := tc.Profile.Validate()
			if !errors.Is(err, tc.Want) {
				t.Errorf("got %v, want %v", err, tc.Want)
			}
			if _, err := tc.Profile.Compile(); !errors.Is(err, tc.Want) {
				t.Errorf("compile: got %v, want %v", err, tc.Want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "frame.yaml")
	if err := frame().Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, _ := frame().Compile()
	b, err := p.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !oplog.Equal(a.Ops(), b.Ops(), 0) {
		t.Errorf("loaded profile compiles differently:\n%s", b)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
