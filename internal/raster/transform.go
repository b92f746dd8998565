package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// minW is the smallest |w| PerspectiveDivide accepts.
const minW = 1e-7

// TransformVertices returns T·[x, y, z, 1] for every position, without the
// perspective divide. out is reused when it has enough capacity.
func TransformVertices(t mgl32.Mat4, positions []mgl32.Vec3, out []mgl32.Vec4) []mgl32.Vec4 {
	if cap(out) < len(positions) {
		out = make([]mgl32.Vec4, len(positions))
	}
	out = out[:len(positions)]
	TransformRange(t, positions, out, 0, len(positions))
	return out
}

// TransformRange transforms positions[lo:hi] into out[lo:hi]. Disjoint ranges
// may run concurrently.
func TransformRange(t mgl32.Mat4, positions []mgl32.Vec3, out []mgl32.Vec4, lo, hi int) {
	for i := lo; i < hi; i++ {
		p := positions[i]
		out[i] = t.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
	}
}

// PerspectiveDivide divides x, y, z by w. It reports false when w is too close
// to zero to divide; the clipper guarantees this never happens for vertices
// that survive the near plane.
func PerspectiveDivide(v mgl32.Vec4) (mgl32.Vec3, bool) {
	if math32.Abs(v[3]) < minW {
		return mgl32.Vec3{}, false
	}
	inv := 1 / v[3]
	return mgl32.Vec3{v[0] * inv, v[1] * inv, v[2] * inv}, true
}

// ProjectVertices transforms and divides every position. Points on or behind
// the camera come out with extreme or non-finite coordinates; callers that
// need them filtered clip in homogeneous space first.
func ProjectVertices(t mgl32.Mat4, positions []mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		c := t.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
		out[i] = mgl32.Vec3{c[0] / c[3], c[1] / c[3], c[2] / c[3]}
	}
	return out
}
