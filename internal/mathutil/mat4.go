package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Perspective builds an OpenGL-style projection: eye space looks down -Z and
// visible points land in [-1, 1] on every axis after the divide.
func Perspective(fovyDeg, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(Deg2Rad(fovyDeg), aspect, near, far)
}

// View builds a view matrix from a camera position and its orthonormal basis.
// forward is the look direction; it maps to -Z in eye space.
func View(position, forward, right, up mgl32.Vec3) mgl32.Mat4 {
	// mgl32 is column-major: Mat4{c0r0, c0r1, c0r2, c0r3, c1r0, ...}
	rot := mgl32.Mat4{
		right[0], up[0], -forward[0], 0,
		right[1], up[1], -forward[1], 0,
		right[2], up[2], -forward[2], 0,
		0, 0, 0, 1,
	}
	return rot.Mul4(mgl32.Translate3D(-position[0], -position[1], -position[2]))
}

// NormalMatrix returns the inverse-transpose of the model's upper 3×3, used to
// carry normals through non-uniform scales. Singular models fall back to identity.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	m := model.Mat3()
	if m.Det() == 0 {
		return mgl32.Ident3()
	}
	return m.Inv().Transpose()
}
