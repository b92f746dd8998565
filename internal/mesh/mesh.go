// Package mesh holds indexed triangle meshes and a few procedural primitives.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"soft-rasterizer/internal/mathutil"
)

var (
	ErrNormalCount = errors.New("mesh: normal count differs from position count")
	ErrIndexCount  = errors.New("mesh: index count is not a multiple of 3")
	ErrIndexRange  = errors.New("mesh: index out of range")
)

// Mesh is an indexed triangle list. Normals are index-aligned with Positions;
// each consecutive triple of Indices names one triangle.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// Validate checks the mesh invariants.
func (m *Mesh) Validate() error {
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals, %d positions", ErrNormalCount, len(m.Normals), len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrIndexCount, len(m.Indices))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d] = %d, vertex count %d", ErrIndexRange, i, idx, n)
		}
	}
	return nil
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Transformed returns a copy with positions multiplied by model and normals by
// its normal matrix. Indices are shared with the receiver.
func (m *Mesh) Transformed(model mgl32.Mat4) *Mesh {
	nm := mathutil.NormalMatrix(model)
	out := &Mesh{
		Positions: make([]mgl32.Vec3, len(m.Positions)),
		Normals:   make([]mgl32.Vec3, len(m.Normals)),
		Indices:   m.Indices,
	}
	for i, p := range m.Positions {
		out.Positions[i] = model.Mul4x1(p.Vec4(1)).Vec3()
	}
	for i, n := range m.Normals {
		out.Normals[i] = nm.Mul3x1(n).Normalize()
	}
	return out
}

// Append merges other into m, rebasing other's indices.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Positions))
	m.Positions = append(m.Positions, other.Positions...)
	m.Normals = append(m.Normals, other.Normals...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
}
