package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float32) float32 {
	return mgl32.DegToRad(d)
}

// RotateAxis returns a 4×4 rotation of deg degrees around axis (right-handed).
func RotateAxis(axis mgl32.Vec3, deg float32) mgl32.Mat4 {
	if axis.Len() == 0 {
		return mgl32.Ident4()
	}
	return mgl32.HomogRotate3D(Deg2Rad(deg), axis.Normalize())
}

// RotateVec3 rotates a direction vector around axis.
func RotateVec3(v, axis mgl32.Vec3, deg float32) mgl32.Vec3 {
	return RotateAxis(axis, deg).Mul4x1(v.Vec4(0)).Vec3()
}
