package mathutil

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lerp3 returns a + (b-a)*t.
func Lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Lerp4 returns a + (b-a)*t.
func Lerp4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

func Min3(a, b, c float32) float32 {
	return math32.Min(math32.Min(a, b), c)
}

func Max3(a, b, c float32) float32 {
	return math32.Max(math32.Max(a, b), c)
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// ClampInt restricts v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
