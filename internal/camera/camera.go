// Package camera tracks a free-flying perspective camera and produces the
// combined projection×view transform consumed by the renderer each frame.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"soft-rasterizer/internal/mathutil"
)

const (
	DefaultAspect = 16.0 / 9.0
	DefaultNear   = 0.1
	DefaultFar    = 100
)

// Camera holds a position and an orthonormal basis. Forward is the direction
// the camera looks along.
type Camera struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
	Right    mgl32.Vec3
	Up       mgl32.Vec3

	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32
}

// New returns a camera at position looking down +Z with +Y up.
func New(position mgl32.Vec3, fovDeg float32) Camera {
	forward := mgl32.Vec3{0, 0, 1}
	up := mgl32.Vec3{0, 1, 0}
	return Camera{
		Position: position,
		Forward:  forward,
		Up:       up,
		Right:    forward.Cross(up),
		FOV:      fovDeg,
		Aspect:   DefaultAspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

// Projection returns the perspective matrix.
func (c Camera) Projection() mgl32.Mat4 {
	return mathutil.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// View returns the world-to-eye matrix.
func (c Camera) View() mgl32.Mat4 {
	return mathutil.View(c.Position, c.Forward, c.Right, c.Up)
}

// Transform returns Projection × View.
func (c Camera) Transform() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// RotateX pitches the camera around its right axis.
func (c *Camera) RotateX(deg float32) {
	c.Up = mathutil.RotateVec3(c.Up, c.Right, deg).Normalize()
	c.Forward = mathutil.RotateVec3(c.Forward, c.Right, deg).Normalize()
}

// RotateY yaws the camera around its up axis.
func (c *Camera) RotateY(deg float32) {
	c.Right = mathutil.RotateVec3(c.Right, c.Up, deg).Normalize()
	c.Forward = mathutil.RotateVec3(c.Forward, c.Up, deg).Normalize()
}

// RotateZ rolls the camera around its forward axis.
func (c *Camera) RotateZ(deg float32) {
	c.Up = mathutil.RotateVec3(c.Up, c.Forward, deg).Normalize()
	c.Right = mathutil.RotateVec3(c.Right, c.Forward, deg).Normalize()
}

func (c *Camera) Move(delta mgl32.Vec3) {
	c.Position = c.Position.Add(delta)
}

func (c *Camera) MoveForward(d float32) {
	c.Move(c.Forward.Mul(d))
}

func (c *Camera) MoveRight(d float32) {
	c.Move(c.Right.Mul(d))
}

// LookAt turns the camera toward target, keeping worldUp as the up reference.
// Does nothing when target coincides with the position or lies along worldUp.
func (c *Camera) LookAt(target, worldUp mgl32.Vec3) {
	f := target.Sub(c.Position)
	if f.Len() == 0 {
		return
	}
	f = f.Normalize()
	r := f.Cross(worldUp)
	if r.Len() < 1e-6 {
		return
	}
	r = r.Normalize()
	c.Forward = f
	c.Right = r
	c.Up = r.Cross(f)
}
