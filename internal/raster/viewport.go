package raster

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// LogicSpace is the rectangle of logical coordinates mapped onto the viewport.
// A negative Height flips the Y axis.
type LogicSpace struct {
	X, Y, Width, Height float32
}

// ViewportSpace is the destination rectangle in pixels.
type ViewportSpace struct {
	X, Y, Width, Height float32
}

// DepthRange is the interval NDC z in [-1, 1] is mapped into.
type DepthRange struct {
	Near, Far float32
}

var (
	// NDCSpace covers [-1, 1]² with +Y pointing up the viewport rows.
	NDCSpace = LogicSpace{X: -1, Y: -1, Width: 2, Height: 2}
	// NDCSpaceFlipped covers [-1, 1]² with +Y mapped to row 0, the top of an image.
	NDCSpaceFlipped = LogicSpace{X: -1, Y: 1, Width: 2, Height: -2}

	DefaultDepthRange = DepthRange{Near: 0, Far: 1}
)

var ErrEmptyLogicSpace = errors.New("raster: logic space has zero width or height")

func (l LogicSpace) Validate() error {
	if l.Width == 0 || l.Height == 0 {
		return ErrEmptyLogicSpace
	}
	return nil
}

// FullViewport returns the viewport covering a w×h target.
func FullViewport(w, h int) ViewportSpace {
	return ViewportSpace{Width: float32(w), Height: float32(h)}
}

// Viewport builds translate(viewport) × scale(viewport/logic) × translate(-logic),
// with z mapped from [-1, 1] into the depth range. Aspect differences between
// the rectangles stretch the image.
func Viewport(logic LogicSpace, vp ViewportSpace, depth DepthRange) mgl32.Mat4 {
	origin := mgl32.Translate3D(-logic.X, -logic.Y, 1)
	scale := mgl32.Scale3D(vp.Width/logic.Width, vp.Height/logic.Height, (depth.Far-depth.Near)/2)
	place := mgl32.Translate3D(vp.X, vp.Y, depth.Near)
	return place.Mul4(scale).Mul4(origin)
}

// MapPoint applies an affine viewport matrix to p.
func MapPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// MapVertices maps every point in place.
func MapVertices(m mgl32.Mat4, points []mgl32.Vec3) {
	for i, p := range points {
		points[i] = MapPoint(m, p)
	}
}
