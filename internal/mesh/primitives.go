package mesh

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Primitives wind clockwise seen from outside: after projection into y-down
// pixel space their front faces have positive area.

// Quad returns a size×size square in the plane z, facing -Z, built from two
// triangles.
func Quad(size, z float32) *Mesh {
	h := size / 2
	n := mgl32.Vec3{0, 0, -1}
	return &Mesh{
		Positions: []mgl32.Vec3{
			{-h, -h, z},
			{-h, h, z},
			{h, h, z},
			{h, -h, z},
		},
		Normals: []mgl32.Vec3{n, n, n, n},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

// Cube returns an axis-aligned cube centered at the origin with flat per-face
// normals (24 vertices, 12 triangles).
func Cube(size float32) *Mesh {
	h := size / 2
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}

	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		for _, c := range f.corners {
			m.Positions = append(m.Positions, c)
			m.Normals = append(m.Normals, f.normal)
		}
		m.Indices = append(m.Indices, base, base+2, base+1, base, base+3, base+2)
	}
	return m
}

// UVSphere returns a latitude/longitude sphere with smooth normals.
// rings >= 2 and segments >= 3 are enforced.
func UVSphere(radius float32, rings, segments int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	m := &Mesh{}
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		sp, cp := math.Sincos(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			st, ct := math.Sincos(theta)
			n := mgl32.Vec3{float32(sp * ct), float32(cp), float32(sp * st)}
			m.Normals = append(m.Normals, n)
			m.Positions = append(m.Positions, n.Mul(radius))
		}
	}

	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			if r != 0 {
				m.Indices = append(m.Indices, a, b, a+1)
			}
			if r != rings-1 {
				m.Indices = append(m.Indices, a+1, b, b+1)
			}
		}
	}
	return m
}

// Names lists the primitives ByName understands.
var Names = []string{"quad", "cube", "sphere"}

// ByName builds a unit-scale primitive for CLI selection.
func ByName(name string) (*Mesh, error) {
	switch strings.ToLower(name) {
	case "quad":
		return Quad(1, 0), nil
	case "cube":
		return Cube(1), nil
	case "sphere":
		return UVSphere(0.75, 24, 48), nil
	}
	return nil, fmt.Errorf("mesh: unknown primitive %q (want one of %s)", name, strings.Join(Names, ", "))
}
