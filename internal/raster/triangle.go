package raster

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"soft-rasterizer/internal/mathutil"
)

// Edge is the signed area of the parallelogram spanned by a→b and a→c.
// Positive means c lies to the left of a→b in a y-down pixel space, which is
// the front-facing winding.
func Edge(a, b, c mgl32.Vec2) float32 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// ScreenTriangle is a drawable triangle: pixel-space x, y and depth z in the
// depth range, plus normals and the 1/w of each vertex for perspective-correct
// attribute interpolation.
type ScreenTriangle struct {
	Positions [3]mgl32.Vec3
	Normals   [3]mgl32.Vec3
	InvW      [3]float32
}

// Area is Edge(p0, p1, p2).
func (t *ScreenTriangle) Area() float32 {
	return Edge(t.Positions[0].Vec2(), t.Positions[1].Vec2(), t.Positions[2].Vec2())
}

// Bounds returns the pixel rows [y0, y1] and columns [x0, x1] the triangle can
// touch inside a w×h target. ok is false when nothing is on screen.
func (t *ScreenTriangle) Bounds(w, h int) (x0, y0, x1, y1 int, ok bool) {
	p := t.Positions
	minX := mathutil.Min3(p[0][0], p[1][0], p[2][0])
	maxX := mathutil.Max3(p[0][0], p[1][0], p[2][0])
	minY := mathutil.Min3(p[0][1], p[1][1], p[2][1])
	maxY := mathutil.Max3(p[0][1], p[1][1], p[2][1])
	if !finite(minX) || !finite(maxX) || !finite(minY) || !finite(maxY) {
		return 0, 0, 0, 0, false
	}

	fw, fh := float32(w), float32(h)
	if w <= 0 || h <= 0 || maxX < 0 || maxY < 0 || minX > fw || minY > fh {
		return 0, 0, 0, 0, false
	}

	// Clamp in float space first so huge coordinates never overflow int.
	x0 = int(math32.Floor(mathutil.Clamp(minX, -1, fw)))
	x1 = int(math32.Ceil(mathutil.Clamp(maxX, -1, fw)))
	y0 = int(math32.Floor(mathutil.Clamp(minY, -1, fh)))
	y1 = int(math32.Ceil(mathutil.Clamp(maxY, -1, fh)))

	x0 = mathutil.ClampInt(x0, 0, w-1)
	x1 = mathutil.ClampInt(x1, 0, w-1)
	y0 = mathutil.ClampInt(y0, 0, h-1)
	y1 = mathutil.ClampInt(y1, 0, h-1)
	return x0, y0, x1, y1, true
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// RowSpan is a half-open row interval [Min, Max) owned by one job.
type RowSpan struct {
	Min, Max int
}

// AllRows spans the whole framebuffer.
func AllRows(fb *FrameBuffer) RowSpan {
	return RowSpan{0, fb.Height}
}

// CullMode selects which winding is discarded.
type CullMode int

const (
	CullNone  CullMode = iota
	CullBack           // drop negative-area triangles
	CullFront          // drop positive-area triangles
)

func (c CullMode) String() string {
	switch c {
	case CullNone:
		return "none"
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	}
	return "unknown"
}

// ParseCullMode accepts the names returned by String.
func ParseCullMode(s string) (CullMode, error) {
	for _, c := range []CullMode{CullNone, CullBack, CullFront} {
		if c.String() == s {
			return c, nil
		}
	}
	if s == "" {
		return CullNone, nil
	}
	return CullNone, fmt.Errorf("raster: unknown cull mode %q", s)
}

// Culls reports whether a triangle of the given signed area is discarded.
func (c CullMode) Culls(area float32) bool {
	switch c {
	case CullBack:
		return area < 0
	case CullFront:
		return area > 0
	}
	return false
}

// Fragment is a pixel that passed coverage and depth tests.
type Fragment struct {
	X, Y   int
	Depth  float32
	Normal mgl32.Vec3 // interpolated, not renormalized
	Bary   [3]float32 // perspective-correct weights
}

// RasterizeTriangle draws tri into fb, restricted to rows, and returns the
// number of pixels written.
//
// Pixel centers sit at (x+0.5, y+0.5). A pixel is covered when its three edge
// values share the sign of the triangle's area; zero counts as covered, so
// pixels exactly on a shared edge go to whichever triangle reaches them first
// at equal depth. A fragment is kept when it is nearer than the stored depth,
// or the stored depth is still the clear value.
func RasterizeTriangle(fb *FrameBuffer, tri *ScreenTriangle, shader Shader, rows RowSpan, cull CullMode) int {
	area := tri.Area()
	if area == 0 || !finite(area) || cull.Culls(area) {
		return 0
	}

	x0, y0, x1, y1, ok := tri.Bounds(fb.Width, fb.Height)
	if !ok {
		return 0
	}
	if y0 < rows.Min {
		y0 = rows.Min
	}
	if y1 > rows.Max-1 {
		y1 = rows.Max - 1
	}
	if y0 > y1 {
		return 0
	}

	if shader == nil {
		shader = NormalShader{}
	}

	v0 := tri.Positions[0].Vec2()
	v1 := tri.Positions[1].Vec2()
	v2 := tri.Positions[2].Vec2()
	z0, z1, z2 := tri.Positions[0][2], tri.Positions[1][2], tri.Positions[2][2]
	invArea := 1 / area

	written := 0
	w := fb.Width
	for y := y0; y <= y1; y++ {
		py := float32(y) + 0.5
		rowOff := y * w
		for x := x0; x <= x1; x++ {
			p := mgl32.Vec2{float32(x) + 0.5, py}

			// Dividing by the area folds the sign check into u, v, w >= 0.
			u := Edge(v1, v2, p) * invArea
			v := Edge(v2, v0, p) * invArea
			t := Edge(v0, v1, p) * invArea
			if u < 0 || v < 0 || t < 0 {
				continue
			}

			z := z0 + v*(z1-z0) + t*(z2-z0)
			i := rowOff + x
			stored := fb.Depth[i]
			if !(z < stored || (stored == ClearDepthValue && z <= ClearDepthValue)) {
				continue
			}

			bary := perspectiveWeights(u, v, t, tri.InvW)
			n := tri.Normals[0].Mul(bary[0]).
				Add(tri.Normals[1].Mul(bary[1])).
				Add(tri.Normals[2].Mul(bary[2]))

			c := shader.Shade(Fragment{X: x, Y: y, Depth: z, Normal: n, Bary: bary})
			fb.Depth[i] = z
			ci := i * 3
			fb.Color[ci] = c[0]
			fb.Color[ci+1] = c[1]
			fb.Color[ci+2] = c[2]
			written++
		}
	}
	return written
}

// DrawTriangle rasterizes tri over the whole framebuffer without culling.
func DrawTriangle(fb *FrameBuffer, tri *ScreenTriangle, shader Shader) int {
	return RasterizeTriangle(fb, tri, shader, AllRows(fb), CullNone)
}

// perspectiveWeights corrects screen-space weights with 1/w. All-zero invW
// (no perspective information) keeps the screen-space weights.
func perspectiveWeights(u, v, t float32, invW [3]float32) [3]float32 {
	pu, pv, pt := u*invW[0], v*invW[1], t*invW[2]
	s := pu + pv + pt
	if s <= 0 || !finite(s) {
		return [3]float32{u, v, t}
	}
	inv := 1 / s
	return [3]float32{pu * inv, pv * inv, pt * inv}
}
