package raster

import (
	"github.com/go-gl/mathgl/mgl32"

	"soft-rasterizer/internal/mathutil"
)

// Plane is one face of the canonical view volume.
type Plane int

const (
	Near Plane = iota
	Far
	Right
	Left
	Top
	Bottom
)

// Planes lists the view-volume planes in clipping order.
var Planes = [...]Plane{Near, Far, Right, Left, Top, Bottom}

func (p Plane) String() string {
	switch p {
	case Near:
		return "near"
	case Far:
		return "far"
	case Right:
		return "right"
	case Left:
		return "left"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	}
	return "unknown"
}

// Distance is the signed distance of a homogeneous point to the plane,
// positive inside. With w = 1 it reduces to the NDC distances z+1, 1-z, 1-x,
// x+1, 1-y and y+1.
func (p Plane) Distance(v mgl32.Vec4) float32 {
	switch p {
	case Near:
		return v[3] + v[2]
	case Far:
		return v[3] - v[2]
	case Right:
		return v[3] - v[0]
	case Left:
		return v[3] + v[0]
	case Top:
		return v[3] - v[1]
	case Bottom:
		return v[3] + v[1]
	}
	return 0
}

// snap moves v exactly onto the plane after interpolation.
func (p Plane) snap(v mgl32.Vec4) mgl32.Vec4 {
	switch p {
	case Near:
		v[2] = -v[3]
	case Far:
		v[2] = v[3]
	case Right:
		v[0] = v[3]
	case Left:
		v[0] = -v[3]
	case Top:
		v[1] = v[3]
	case Bottom:
		v[1] = -v[3]
	}
	return v
}

// ClipVertex is a homogeneous position plus the attributes carried through
// clipping.
type ClipVertex struct {
	Position mgl32.Vec4
	Normal   mgl32.Vec3
}

// Geometry is an indexed triangle list over clip vertices.
type Geometry struct {
	Vertices []ClipVertex
	Indices  []uint32
}

func (g Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Compact returns a copy holding only referenced vertices, renumbered in
// order of first use.
func (g Geometry) Compact() Geometry {
	remap := make(map[uint32]uint32, len(g.Vertices))
	out := Geometry{Indices: make([]uint32, len(g.Indices))}
	for i, idx := range g.Indices {
		n, ok := remap[idx]
		if !ok {
			n = uint32(len(out.Vertices))
			remap[idx] = n
			out.Vertices = append(out.Vertices, g.Vertices[idx])
		}
		out.Indices[i] = n
	}
	return out
}

// Classification describes how a triangle sits against one plane.
type Classification int

const (
	Inside  Classification = iota // all three vertices inside
	Outside                       // all three outside
	OneIn                         // one inside, becomes one triangle
	TwoIn                         // two inside, becomes two triangles
)

func (c Classification) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case OneIn:
		return "one-in"
	case TwoIn:
		return "two-in"
	}
	return "unknown"
}

// ClassifyTriangle classifies signed distances. Zero counts as inside.
func ClassifyTriangle(d0, d1, d2 float32) Classification {
	in := 0
	for _, d := range [3]float32{d0, d1, d2} {
		if d >= 0 {
			in++
		}
	}
	switch in {
	case 3:
		return Inside
	case 2:
		return TwoIn
	case 1:
		return OneIn
	}
	return Outside
}

type edgeKey struct {
	in, out uint32
}

// Clipper clips geometry against the view volume. Its buffers are reused
// across calls; a Geometry returned by a Clipper is valid until the next call.
type Clipper struct {
	verts []ClipVertex
	src   []uint32
	dst   []uint32
	edges map[edgeKey]uint32
}

// Clip runs all six planes in order. The input is not modified.
func (c *Clipper) Clip(g Geometry) Geometry {
	c.load(g)
	for _, p := range Planes {
		c.pass(p)
		if len(c.src) == 0 {
			break
		}
	}
	return Geometry{Vertices: c.verts, Indices: c.src}
}

// ClipPlane runs a single plane pass. The input is not modified.
func (c *Clipper) ClipPlane(p Plane, g Geometry) Geometry {
	c.load(g)
	c.pass(p)
	return Geometry{Vertices: c.verts, Indices: c.src}
}

func (c *Clipper) load(g Geometry) {
	c.verts = append(c.verts[:0], g.Vertices...)
	n := len(g.Indices) - len(g.Indices)%3
	c.src = append(c.src[:0], g.Indices[:n]...)
	if c.edges == nil {
		c.edges = make(map[edgeKey]uint32)
	}
}

// pass clips c.src against p into c.dst, then swaps them. Pass-through
// triangles keep their original indices; new vertices are appended.
func (c *Clipper) pass(p Plane) {
	clear(c.edges)
	c.dst = c.dst[:0]

	for i := 0; i+2 < len(c.src); i += 3 {
		tri := [3]uint32{c.src[i], c.src[i+1], c.src[i+2]}
		var d [3]float32
		for k, idx := range tri {
			d[k] = p.Distance(c.verts[idx].Position)
		}

		switch ClassifyTriangle(d[0], d[1], d[2]) {
		case Inside:
			c.dst = append(c.dst, tri[0], tri[1], tri[2])

		case Outside:

		case OneIn:
			k := 0
			for d[k] < 0 {
				k++
			}
			o1, o2 := (k+1)%3, (k+2)%3
			// Replacing in place keeps the winding.
			a := c.split(p, tri[k], tri[o1], d[k], d[o1])
			b := c.split(p, tri[k], tri[o2], d[k], d[o2])
			tri[o1], tri[o2] = a, b
			c.dst = append(c.dst, tri[0], tri[1], tri[2])

		case TwoIn:
			k := 0
			for d[k] >= 0 {
				k++
			}
			i1, i2 := (k+1)%3, (k+2)%3
			// Cyclic order k, i1, i2 becomes the quad p1, i1, i2, p2.
			p1 := c.split(p, tri[i1], tri[k], d[i1], d[k])
			p2 := c.split(p, tri[i2], tri[k], d[i2], d[k])
			c.dst = append(c.dst,
				p1, tri[i1], tri[i2],
				p1, tri[i2], p2,
			)
		}
	}
	c.src, c.dst = c.dst, c.src
}

// split returns the index of the point where edge in→out crosses p, creating
// it on first use. Adjacent triangles sharing the edge get the same vertex.
func (c *Clipper) split(p Plane, in, out uint32, dIn, dOut float32) uint32 {
	key := edgeKey{in, out}
	if idx, ok := c.edges[key]; ok {
		return idx
	}
	a, b := c.verts[in], c.verts[out]
	t := dIn / (dIn - dOut)
	v := ClipVertex{
		Position: p.snap(mathutil.Lerp4(a.Position, b.Position, t)),
		Normal:   mathutil.Lerp3(a.Normal, b.Normal, t),
	}
	idx := uint32(len(c.verts))
	c.verts = append(c.verts, v)
	c.edges[key] = idx
	return idx
}

// Clip clips g against all six planes into freshly allocated geometry.
func Clip(g Geometry) Geometry {
	var c Clipper
	return c.Clip(g)
}

// ClipNDC clips triangles whose positions are already divided (w = 1).
func ClipNDC(indices []uint32, positions, normals []mgl32.Vec3) Geometry {
	g := Geometry{
		Vertices: make([]ClipVertex, len(positions)),
		Indices:  indices,
	}
	for i, p := range positions {
		g.Vertices[i].Position = mgl32.Vec4{p[0], p[1], p[2], 1}
		if i < len(normals) {
			g.Vertices[i].Normal = normals[i]
		}
	}
	return Clip(g)
}
