package raster

import (
	"slices"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func ndcTriangle(a, b, c mgl32.Vec3) Geometry {
	return Geometry{
		Vertices: []ClipVertex{
			{Position: a.Vec4(1), Normal: mgl32.Vec3{1, 0, 0}},
			{Position: b.Vec4(1), Normal: mgl32.Vec3{0, 1, 0}},
			{Position: c.Vec4(1), Normal: mgl32.Vec3{0, 0, 1}},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// signedArea2D is the xy cross product of a divided triangle.
func signedArea2D(g Geometry, tri int) float32 {
	p := func(k int) mgl32.Vec2 {
		v := g.Vertices[g.Indices[tri*3+k]].Position
		return mgl32.Vec2{v[0] / v[3], v[1] / v[3]}
	}
	return Edge(p(0), p(1), p(2))
}

func TestPlaneDistanceMatchesNDC(t *testing.T) {
	v := mgl32.Vec3{0.25, -0.5, 0.75}
	tests := []struct {
		plane Plane
		want  float32
	}{
		{Near, v[2] + 1},
		{Far, -v[2] + 1},
		{Right, -v[0] + 1},
		{Left, v[0] + 1},
		{Top, -v[1] + 1},
		{Bottom, v[1] + 1},
	}
	for _, tc := range tests {
		t.Run(tc.plane.String(), func(t *testing.T) {
			if got := tc.plane.Distance(v.Vec4(1)); math32.Abs(got-tc.want) > 1e-6 {
				t.Errorf("Distance() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlaneOrder(t *testing.T) {
	want := []Plane{Near, Far, Right, Left, Top, Bottom}
	if !slices.Equal(Planes[:], want) {
		t.Errorf("Planes = %v, want %v", Planes, want)
	}
}

func TestClassifyTriangle(t *testing.T) {
	tests := []struct {
		name       string
		d0, d1, d2 float32
		want       Classification
	}{
		{"all inside", 1, 2, 3, Inside},
		{"zero is inside", 0, 0, 0, Inside},
		{"all outside", -1, -2, -3, Outside},
		{"one in", 1, -1, -1, OneIn},
		{"one in last", -1, -1, 0.5, OneIn},
		{"two in", 1, 1, -1, TwoIn},
		{"two in with zero", 0, -1, 1, TwoIn},
		// A "d2 < 2" typo would discard these as all-outside.
		{"d2 between 0 and 2", -1, -1, 1.5, OneIn},
		{"d2 exactly 0", -1, -1, 0, OneIn},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyTriangle(tc.d0, tc.d1, tc.d2); got != tc.want {
				t.Errorf("ClassifyTriangle(%v, %v, %v) = %v, want %v", tc.d0, tc.d1, tc.d2, got, tc.want)
			}
		})
	}
}

func TestClipInsideIsNoop(t *testing.T) {
	in := Geometry{
		Vertices: []ClipVertex{
			{Position: mgl32.Vec4{-0.5, -0.5, 0, 1}},
			{Position: mgl32.Vec4{0.5, -0.5, 0.2, 1}},
			{Position: mgl32.Vec4{0.5, 0.5, -0.3, 1}},
			{Position: mgl32.Vec4{-0.5, 0.5, 0.9, 1}},
			{Position: mgl32.Vec4{1, 1, 1, 1}}, // on the boundary counts as inside
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3, 2, 3, 4},
	}
	out := Clip(in)
	if !slices.Equal(out.Indices, in.Indices) {
		t.Errorf("Indices = %v, want %v", out.Indices, in.Indices)
	}
	if !slices.Equal(out.Vertices, in.Vertices) {
		t.Errorf("Vertices = %v, want %v", out.Vertices, in.Vertices)
	}
}

func TestClipOutsideAnyPlaneIsEmpty(t *testing.T) {
	offsets := map[Plane]mgl32.Vec3{
		Near:   {0, 0, -3},
		Far:    {0, 0, 3},
		Right:  {3, 0, 0},
		Left:   {-3, 0, 0},
		Top:    {0, 3, 0},
		Bottom: {0, -3, 0},
	}
	for plane, off := range offsets {
		t.Run(plane.String(), func(t *testing.T) {
			g := ndcTriangle(
				mgl32.Vec3{-0.5, -0.5, 0}.Add(off),
				mgl32.Vec3{0.5, -0.5, 0}.Add(off),
				mgl32.Vec3{0, 0.5, 0}.Add(off),
			)
			var c Clipper
			if got := c.ClipPlane(plane, g).TriangleCount(); got != 0 {
				t.Errorf("ClipPlane(%v) triangles = %d, want 0", plane, got)
			}
			if got := Clip(g).TriangleCount(); got != 0 {
				t.Errorf("Clip() triangles = %d, want 0", got)
			}
		})
	}
}

func TestClipOneInProducesOneTriangleOnPlane(t *testing.T) {
	// Only vertex 0 is left of x = 1.
	g := ndcTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{3, -0.5, 0},
		mgl32.Vec3{3, 0.5, 0},
	)
	var c Clipper
	out := c.ClipPlane(Right, g)
	if got := out.TriangleCount(); got != 1 {
		t.Fatalf("triangles = %d, want 1", got)
	}
	if out.Indices[0] != 0 {
		t.Errorf("inside vertex moved: Indices = %v", out.Indices)
	}
	for _, idx := range out.Indices[1:] {
		v := out.Vertices[idx].Position
		if d := Right.Distance(v); math32.Abs(d) > 1e-6 {
			t.Errorf("new vertex %v distance = %v, want 0", v, d)
		}
	}
	if signedArea2D(out, 0)*signedArea2D(g, 0) <= 0 {
		t.Error("winding flipped")
	}

	// Doubled area of the kept tip (0,0),(1,-1/6),(1,1/6).
	want := float32(1.0 / 3.0)
	if got := math32.Abs(signedArea2D(out, 0)); math32.Abs(got-want) > 1e-5 {
		t.Errorf("area = %v, want %v", got, want)
	}
}

func TestClipTwoInProducesTwoTriangles(t *testing.T) {
	// Vertex 2 pokes above y = 1.
	g := ndcTriangle(
		mgl32.Vec3{-0.5, 0, 0},
		mgl32.Vec3{0.5, 0, 0},
		mgl32.Vec3{0, 2, 0},
	)
	var c Clipper
	out := c.ClipPlane(Top, g)
	if got := out.TriangleCount(); got != 2 {
		t.Fatalf("triangles = %d, want 2", got)
	}

	orig := signedArea2D(g, 0)
	var total float32
	for i := 0; i < 2; i++ {
		a := signedArea2D(out, i)
		if a*orig <= 0 {
			t.Errorf("triangle %d winding flipped", i)
		}
		total += math32.Abs(a)
		for k := 0; k < 3; k++ {
			v := out.Vertices[out.Indices[i*3+k]].Position
			if Top.Distance(v) < -1e-6 {
				t.Errorf("triangle %d vertex %v outside", i, v)
			}
		}
	}
	// Original area 2 (doubled); the cut-off tip above y = 1 is a quarter of it.
	want := math32.Abs(orig) * 0.75
	if math32.Abs(total-want) > 1e-5 {
		t.Errorf("covered area = %v, want %v", total, want)
	}

	// Exactly two new vertices, both on the plane.
	if got := len(out.Vertices); got != 5 {
		t.Errorf("vertex count = %d, want 5", got)
	}
	for _, v := range out.Vertices[3:] {
		if d := Top.Distance(v.Position); d != 0 {
			t.Errorf("new vertex distance = %v, want exactly 0", d)
		}
	}
}

func TestClipInterpolatesNormals(t *testing.T) {
	g := ndcTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{2, 0, 0},
		mgl32.Vec3{0, 0.5, 0},
	)
	var c Clipper
	out := c.ClipPlane(Right, g)
	// Edge 0→1 crosses x = 1 halfway.
	var found bool
	for _, v := range out.Vertices[3:] {
		if v.Position[1] == 0 {
			found = true
			want := mgl32.Vec3{0.5, 0.5, 0}
			if v.Normal.Sub(want).Len() > 1e-6 {
				t.Errorf("normal = %v, want %v", v.Normal, want)
			}
		}
	}
	if !found {
		t.Fatal("no intersection on edge 0→1")
	}
}

func TestClipSharedEdgeReusesVertex(t *testing.T) {
	// Two triangles share edge 0–1, which crosses the left plane.
	g := Geometry{
		Vertices: []ClipVertex{
			{Position: mgl32.Vec4{0, 0, 0, 1}},
			{Position: mgl32.Vec4{-2, 0, 0, 1}},
			{Position: mgl32.Vec4{0, 0.5, 0, 1}},
			{Position: mgl32.Vec4{0, -0.5, 0, 1}},
		},
		Indices: []uint32{0, 1, 2, 1, 0, 3},
	}
	var c Clipper
	out := c.ClipPlane(Left, g)
	// Both triangles are two-in against x = -1; edge 0–1 is split once.
	splits := 0
	for _, v := range out.Vertices[4:] {
		if v.Position[1] == 0 {
			splits++
		}
	}
	if splits != 1 {
		t.Errorf("shared edge split %d times, want 1", splits)
	}
}

func TestClipBehindCameraInHomogeneousSpace(t *testing.T) {
	// w < 0 marks a point behind the eye; dividing first would mirror it
	// into view.
	g := Geometry{
		Vertices: []ClipVertex{
			{Position: mgl32.Vec4{0, 0, 0.5, 1}},
			{Position: mgl32.Vec4{0.5, 0, 0.5, 1}},
			{Position: mgl32.Vec4{0, 0.5, -2.2, -2}},
		},
		Indices: []uint32{0, 1, 2},
	}
	var c Clipper
	out := c.ClipPlane(Near, g)
	if got := out.TriangleCount(); got != 2 {
		t.Fatalf("triangles = %d, want 2", got)
	}
	for _, idx := range out.Indices {
		if w := out.Vertices[idx].Position[3]; w <= 0 {
			t.Errorf("surviving vertex has w = %v", w)
		}
	}
}

func TestClipDegenerateThroughVertex(t *testing.T) {
	// Vertex 1 sits exactly on the right plane; the rest is inside.
	g := ndcTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{0, 0.5, 0},
	)
	if got := Clip(g).TriangleCount(); got != 1 {
		t.Errorf("triangles = %d, want 1", got)
	}

	// Only the on-plane vertex touches the inside: a zero-area sliver.
	g = ndcTriangle(
		mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{2, -0.5, 0},
		mgl32.Vec3{2, 0.5, 0},
	)
	var c Clipper
	out := c.ClipPlane(Right, g)
	if out.TriangleCount() != 1 {
		t.Fatalf("triangles = %d, want 1", out.TriangleCount())
	}
	if a := signedArea2D(out, 0); math32.Abs(a) > 1e-6 {
		t.Errorf("area = %v, want 0", a)
	}
}

func TestClipCornerAgainstSeveralPlanes(t *testing.T) {
	// A big triangle covering the whole [-1,1]² square stays inside after
	// every side plane clips it.
	g := ndcTriangle(
		mgl32.Vec3{-10, -10, 0},
		mgl32.Vec3{10, -10, 0},
		mgl32.Vec3{0, 10, 0},
	)
	out := Clip(g)
	if out.TriangleCount() == 0 {
		t.Fatal("clipped to nothing")
	}
	var area float32
	for i := 0; i < out.TriangleCount(); i++ {
		area += math32.Abs(signedArea2D(out, i))
		for k := 0; k < 3; k++ {
			v := out.Vertices[out.Indices[i*3+k]].Position
			for _, p := range Planes {
				if p.Distance(v) < -1e-5 {
					t.Errorf("vertex %v outside %v", v, p)
				}
			}
		}
	}
	// The triangle contains the whole 2×2 square, doubled area 8.
	if math32.Abs(area-8) > 1e-3 {
		t.Errorf("doubled area = %v, want 8", area)
	}
}

func TestClipNDCMatchesClip(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {3, -0.5, 0}, {3, 0.5, 0}}
	normals := []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	out := ClipNDC([]uint32{0, 1, 2}, positions, normals)
	if got := out.TriangleCount(); got != 1 {
		t.Fatalf("triangles = %d, want 1", got)
	}
	for _, idx := range out.Indices {
		if out.Vertices[idx].Position[3] != 1 {
			t.Errorf("w = %v, want 1", out.Vertices[idx].Position[3])
		}
	}
}

func TestClipperDoesNotModifyInput(t *testing.T) {
	g := ndcTriangle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 0, 0}, mgl32.Vec3{0, 3, 0})
	before := slices.Clone(g.Vertices)
	idx := slices.Clone(g.Indices)
	var c Clipper
	c.Clip(g)
	c.Clip(g)
	if !slices.Equal(g.Vertices, before) || !slices.Equal(g.Indices, idx) {
		t.Error("Clip modified its input")
	}
}

func TestCompact(t *testing.T) {
	g := Geometry{
		Vertices: []ClipVertex{
			{Position: mgl32.Vec4{9, 9, 9, 1}},
			{Position: mgl32.Vec4{0, 0, 0, 1}},
			{Position: mgl32.Vec4{1, 0, 0, 1}},
			{Position: mgl32.Vec4{0, 1, 0, 1}},
		},
		Indices: []uint32{1, 2, 3, 3, 2, 1},
	}
	out := g.Compact()
	if len(out.Vertices) != 3 {
		t.Fatalf("vertex count = %d, want 3", len(out.Vertices))
	}
	if want := []uint32{0, 1, 2, 2, 1, 0}; !slices.Equal(out.Indices, want) {
		t.Errorf("Indices = %v, want %v", out.Indices, want)
	}
}
