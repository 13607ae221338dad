// Package preview renders tessellated solids into small flat-shaded images.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/bloodmagesoftware/mesher/tess"
	"github.com/xfmoulet/qoi"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options control the orthographic camera and colors. Yaw turns the model
// around the z axis, Pitch tilts the camera down toward it; both are in
// degrees.
type Options struct {
	Width      int
	Height     int
	Yaw        float64
	Pitch      float64
	Background color.NRGBA
	Color      color.NRGBA
}

func DefaultOptions() Options {
	return Options{
		Width:      512,
		Height:     512,
		Yaw:        35,
		Pitch:      30,
		Background: color.NRGBA{R: 0x20, G: 0x22, B: 0x28, A: 0xff},
		Color:      color.NRGBA{R: 0xd8, G: 0xa4, B: 0x5c, A: 0xff},
	}
}

// light points from the surface toward the light, in view space.
var light = r3.Unit(r3.Vec{X: -0.4, Y: -1, Z: 0.6})

const ambient = 0.25

type camera struct {
	center         r3.Vec
	cy, sy, cp, sp float64
	scale, ox, oy  float64
}

func newCamera(b *tess.Buffer, opt Options) camera {
	lo, hi := b.Bounds()
	c := camera{
		center: r3.Scale(0.5, r3.Add(lo, hi)),
		cy:     math.Cos(opt.Yaw * math.Pi / 180),
		sy:     math.Sin(opt.Yaw * math.Pi / 180),
		cp:     math.Cos(opt.Pitch * math.Pi / 180),
		sp:     math.Sin(opt.Pitch * math.Pi / 180),
		ox:     float64(opt.Width) / 2,
		oy:     float64(opt.Height) / 2,
	}
	if r := r3.Norm(r3.Sub(hi, lo)) / 2; r > 0 {
		c.scale = 0.9 * math.Min(c.ox, c.oy) / r
	}
	return c
}

// view rotates a direction into camera space: x right, y away from the
// viewer, z up.
func (c camera) view(p r3.Vec) r3.Vec {
	x := p.X*c.cy - p.Y*c.sy
	y := p.X*c.sy + p.Y*c.cy
	return r3.Vec{X: x, Y: y*c.cp - p.Z*c.sp, Z: y*c.sp + p.Z*c.cp}
}

// project maps a position to pixel coordinates plus depth.
func (c camera) project(p r3.Vec) r3.Vec {
	v := c.view(r3.Sub(p, c.center))
	return r3.Vec{X: c.ox + v.X*c.scale, Y: c.oy - v.Z*c.scale, Z: v.Y}
}

// Render draws b with a z-buffer. Triangles facing away from the camera are
// culled.
func Render(b *tess.Buffer, opt Options) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = opt.Background.R
		img.Pix[i+1] = opt.Background.G
		img.Pix[i+2] = opt.Background.B
		img.Pix[i+3] = opt.Background.A
	}

	cam := newCamera(b, opt)
	if cam.scale == 0 {
		return img
	}

	depth := make([]float64, opt.Width*opt.Height)
	for i := range depth {
		depth[i] = math.Inf(1)
	}

	for i := 0; i+2 < len(b.Positions); i += 3 {
		n := cam.view(b.Normals[i])
		if n.Y >= 0 {
			continue
		}
		shade := ambient + (1-ambient)*math.Max(0, r3.Dot(n, light))
		col := color.NRGBA{
			R: uint8(float64(opt.Color.R) * shade),
			G: uint8(float64(opt.Color.G) * shade),
			B: uint8(float64(opt.Color.B) * shade),
			A: opt.Color.A,
		}
		fill(img, depth, col,
			cam.project(b.Positions[i]),
			cam.project(b.Positions[i+1]),
			cam.project(b.Positions[i+2]),
		)
	}
	return img
}

func edge(a, b r3.Vec, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
}

// fill rasterizes one screen-space triangle, sampling pixel centers.
func fill(img *image.NRGBA, depth []float64, col color.NRGBA, a, b, c r3.Vec) {
	area := edge(a, b, c.X, c.Y)
	if area == 0 {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	x0 := max(0, int(math.Floor(min(a.X, b.X, c.X))))
	x1 := min(w-1, int(math.Ceil(max(a.X, b.X, c.X))))
	y0 := max(0, int(math.Floor(min(a.Y, b.Y, c.Y))))
	y1 := min(h-1, int(math.Ceil(max(a.Y, b.Y, c.Y))))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.Z + w1*b.Z + w2*c.Z
			k := y*w + x
			if z >= depth[k] {
				continue
			}
			depth[k] = z
			img.SetNRGBA(x, y, col)
		}
	}
}

// Encode writes img as QOI.
func Encode(w io.Writer, img image.Image) error {
	return qoi.Encode(w, img)
}

// WriteFile renders b and stores it as a QOI image at path.
func WriteFile(path string, b *tess.Buffer, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := Encode(f, Render(b, opt)); err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	return nil
}
