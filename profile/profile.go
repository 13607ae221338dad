// Package profile describes planar shapes in YAML and compiles them into
// operator logs that build the extruded solid.
package profile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/bloodmagesoftware/mesher/brep"
	"github.com/bloodmagesoftware/mesher/oplog"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

var (
	ErrTooFewPoints = errors.New("contour needs at least 3 points")
	ErrZeroArea     = errors.New("contour has no area")
	ErrHoleOutside  = errors.New("hole is not inside the outline")
	ErrFlatExtrude  = errors.New("extrusion direction lies in the profile plane")
)

type (
	Profile struct {
		// Outline is the outer boundary in the plane z = Z. Either winding is
		// accepted.
		Outline Outline `yaml:"outline"`
		// Holes are cut out of the outline and become tunnels through the
		// extruded solid.
		Holes []Outline `yaml:"holes,omitempty"`
		// Z is the height of the profile plane.
		Z float64 `yaml:"z,omitempty"`
		// Extrude is applied to the profile face. A zero distance leaves a
		// flat lamina.
		Extrude Extrusion `yaml:"extrude"`
	}

	Outline []Vec2

	Extrusion struct {
		// Direction defaults to +z when left out.
		Direction Vec3    `yaml:"direction"`
		Distance  float64 `yaml:"distance"`
	}

	Vec2 struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	}

	Vec3 struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
		Z float64 `yaml:"z"`
	}
)

func New() *Profile {
	return &Profile{
		Outline: make(Outline, 0),
		Extrude: Extrusion{Direction: Vec3{Z: 1}, Distance: 1},
	}
}

func (p *Profile) Save(path string) error {
	_ = os.MkdirAll(filepath.Dir(path), 0755)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	encoder.SetIndent(4)

	return encoder.Encode(p)
}

func (p *Profile) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	return decoder.Decode(p)
}

// Load reads a profile file.
func Load(path string) (*Profile, error) {
	p := &Profile{}
	if err := p.Load(path); err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", path, err)
	}
	return p, nil
}

// SignedArea is positive for counter-clockwise outlines.
func (o Outline) SignedArea() float64 {
	var a float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Contains reports whether q lies strictly inside o.
func (o Outline) Contains(q Vec2) bool {
	in := false
	for i, a := range o {
		b := o[(i+1)%len(o)]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if q.X < x {
				in = !in
			}
		}
	}
	return in
}

func (o Outline) reversed() Outline {
	r := make(Outline, len(o))
	for i, p := range o {
		r[len(o)-1-i] = p
	}
	return r
}

// ccw returns o wound counter-clockwise when want is true, clockwise
// otherwise.
func (o Outline) ccw(want bool) Outline {
	if (o.SignedArea() > 0) != want {
		return o.reversed()
	}
	return o
}

func (o Outline) validate() error {
	if len(o) < 3 {
		return ErrTooFewPoints
	}
	if math.Abs(o.SignedArea()) < 1e-12 {
		return ErrZeroArea
	}
	return nil
}

func (p *Profile) direction() r3.Vec {
	d := r3.Vec{X: p.Extrude.Direction.X, Y: p.Extrude.Direction.Y, Z: p.Extrude.Direction.Z}
	if d == (r3.Vec{}) {
		return r3.Vec{Z: 1}
	}
	return d
}

// Validate checks the profile without compiling it.
func (p *Profile) Validate() error {
	if err := p.Outline.validate(); err != nil {
		return fmt.Errorf("outline: %w", err)
	}
	for i, h := range p.Holes {
		if err := h.validate(); err != nil {
			return fmt.Errorf("hole %d: %w", i, err)
		}
		for _, q := range h {
			if !p.Outline.Contains(q) {
				return fmt.Errorf("hole %d: (%g, %g): %w", i, q.X, q.Y, ErrHoleOutside)
			}
		}
	}
	if p.Extrude.Distance != 0 && math.Abs(p.direction().Z) < 1e-12 {
		return ErrFlatExtrude
	}
	return nil
}

// Compile turns the profile into an operator log.
//
// The outline is traced counter-clockwise, which leaves face 0 facing +z
// and face 1 facing -z. The face whose normal opposes the extrusion is the
// one swept. Each hole is bridged from outline vertex 0, closed into its own
// face, and turned into a ring of the swept face by killing the bridge; the
// sweep folds that face away again.
func (p *Profile) Compile() (*oplog.Log, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	d := p.direction()
	swept := 1
	if d.Z < 0 {
		swept = 0
	}

	c := &compiler{log: &oplog.Log{}, z: p.Z}
	outline := p.Outline.ccw(true)
	c.mvfs(outline[0])
	for _, q := range outline[1:] {
		c.mve(q, c.vertices-1, 0)
	}
	c.mef(c.vertices-1, 0, 0)

	for _, h := range p.Holes {
		// Holes run against the swept face's outer loop.
		h = h.ccw(swept == 1)
		first := c.vertices
		bridge := c.mve(h[0], 0, swept)
		for _, q := range h[1:] {
			c.mve(q, c.vertices-1, swept)
		}
		c.mef(c.vertices-1, first, swept)
		c.log.Append(oplog.KeMr{E: bridge, F: swept})
	}

	if p.Extrude.Distance != 0 {
		c.log.Append(oplog.Sweep{F: swept, D: d, T: p.Extrude.Distance})
	}

	brep.Logger().Debug("compiled profile",
		"points", len(p.Outline),
		"holes", len(p.Holes),
		"operators", c.log.Len(),
	)
	return c.log, nil
}

// compiler tracks creation-order indices while emitting operators.
type compiler struct {
	log      *oplog.Log
	z        float64
	vertices int
	edges    int
}

func (c *compiler) at(q Vec2) r3.Vec {
	return r3.Vec{X: q.X, Y: q.Y, Z: c.z}
}

func (c *compiler) mvfs(q Vec2) {
	c.log.Append(oplog.Mvfs{P: c.at(q)})
	c.vertices++
}

// mve returns the index of the new edge.
func (c *compiler) mve(q Vec2, v0, f int) int {
	c.log.Append(oplog.Mve{P: c.at(q), V0: v0, F: f})
	c.vertices++
	c.edges++
	return c.edges - 1
}

func (c *compiler) mef(v0, v1, f int) {
	c.log.Append(oplog.Mef{V0: v0, V1: v1, F: f})
	c.edges++
}
