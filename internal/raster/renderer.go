// Package raster is the CPU triangle pipeline: clip-space transform, frustum
// clipping, viewport mapping and parallel scan conversion into a FrameBuffer.
package raster

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"soft-rasterizer/internal/logging"
	"soft-rasterizer/internal/mesh"
	"soft-rasterizer/internal/pool"
)

const (
	DefaultBandHeight  = 8
	DefaultVertexChunk = 4096
)

var ErrPoolClosed = errors.New("raster: worker pool refused jobs")

// Options configures a Renderer. Zero fields take defaults.
type Options struct {
	Logic      LogicSpace
	Viewport   ViewportSpace // zero: the whole framebuffer
	Depth      DepthRange    // zero: [0, 1]
	BandHeight int           // rows per raster job; 1 is one job per scanline
	Cull       CullMode
	Shader     Shader
	ClearColor RGB

	// VertexChunk is the number of vertices per transform job.
	VertexChunk int
}

// DefaultOptions maps NDC onto the full target with row 0 at the top.
func DefaultOptions() Options {
	return Options{
		Logic:       NDCSpaceFlipped,
		Depth:       DefaultDepthRange,
		BandHeight:  DefaultBandHeight,
		Shader:      NormalShader{},
		VertexChunk: DefaultVertexChunk,
	}
}

func (o *Options) fill() {
	if o.Logic == (LogicSpace{}) {
		o.Logic = NDCSpaceFlipped
	}
	if o.Depth == (DepthRange{}) {
		o.Depth = DefaultDepthRange
	}
	if o.BandHeight <= 0 {
		o.BandHeight = DefaultBandHeight
	}
	if o.Shader == nil {
		o.Shader = NormalShader{}
	}
	if o.VertexChunk <= 0 {
		o.VertexChunk = DefaultVertexChunk
	}
}

// Stats describes one Render call.
type Stats struct {
	Vertices  int   // mesh vertices transformed
	Triangles int   // mesh triangles submitted
	Clipped   int   // triangles left after clipping
	Culled    int   // clipped triangles dropped for winding or zero area
	Drawn     int   // triangles handed to raster jobs
	Pixels    int64 // pixels written
	Jobs      int   // raster jobs submitted
	Elapsed   time.Duration
}

type screenVertex struct {
	pos  mgl32.Vec3
	invW float32
}

// Renderer owns a FrameBuffer and the per-frame scratch buffers. It borrows
// the pool. A Renderer is not safe for concurrent Render calls.
type Renderer struct {
	fb   *FrameBuffer
	pool *pool.Pool
	opts Options
	log  *slog.Logger

	clip    []mgl32.Vec4
	geom    Geometry
	clipper Clipper
	used    []bool
	screen  []screenVertex
	tris    []ScreenTriangle
	bands   [][]int32
}

// NewRenderer binds a framebuffer and a pool.
func NewRenderer(fb *FrameBuffer, p *pool.Pool, opts Options) (*Renderer, error) {
	if fb == nil {
		return nil, errors.New("raster: nil framebuffer")
	}
	if p == nil {
		return nil, errors.New("raster: nil pool")
	}
	opts.fill()
	if err := opts.Logic.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		fb:   fb,
		pool: p,
		opts: opts,
		log:  logging.Logger(),
	}, nil
}

func (r *Renderer) Frame() *FrameBuffer { return r.fb }
func (r *Renderer) Options() Options    { return r.opts }

// SetShader swaps the shading policy between frames.
func (r *Renderer) SetShader(s Shader) {
	if s == nil {
		s = NormalShader{}
	}
	r.opts.Shader = s
}

// Resize changes the render target size. Call between frames only.
func (r *Renderer) Resize(w, h int) {
	if r.fb.Resize(w, h) {
		r.log.Debug("framebuffer resized", "width", w, "height", h)
	}
}

func (r *Renderer) viewport() ViewportSpace {
	if r.opts.Viewport == (ViewportSpace{}) {
		return FullViewport(r.fb.Width, r.fb.Height)
	}
	return r.opts.Viewport
}

// Begin clears color and depth, one job per row band, and waits for it.
func (r *Renderer) Begin() error {
	b := r.pool.NewBatch()
	bh := r.opts.BandHeight
	refused := 0
	for y := 0; y < r.fb.Height; y += bh {
		y0, y1 := y, y+bh
		if !b.Submit(func() { r.fb.ClearRows(y0, y1, r.opts.ClearColor, ClearDepthValue) }) {
			refused++
		}
	}
	b.Wait()
	if refused > 0 {
		return fmt.Errorf("%w: %d clear jobs", ErrPoolClosed, refused)
	}
	return nil
}

// Render draws m under the combined projection×view(×model) transform t. It
// returns after every raster job of the frame has finished, so the
// framebuffer may be read or cleared as soon as it returns.
func (r *Renderer) Render(m *mesh.Mesh, t mgl32.Mat4) (Stats, error) {
	start := time.Now()
	if err := m.Validate(); err != nil {
		r.log.Warn("mesh rejected", "err", err)
		return Stats{}, err
	}
	st := Stats{Vertices: m.VertexCount(), Triangles: m.TriangleCount()}
	if st.Triangles == 0 || r.fb.Width == 0 || r.fb.Height == 0 {
		st.Elapsed = time.Since(start)
		return st, nil
	}

	if err := r.transform(m, t); err != nil {
		return st, err
	}

	clipped := r.clipper.Clip(r.geom)
	st.Clipped = clipped.TriangleCount()

	if err := r.project(clipped); err != nil {
		return st, err
	}

	st.Culled = r.assemble(clipped)
	st.Drawn = len(r.tris)

	jobs, pixels, err := r.rasterize()
	st.Jobs = jobs
	st.Pixels = pixels
	st.Elapsed = time.Since(start)

	r.log.Debug("frame rendered",
		"triangles", st.Triangles,
		"clipped", st.Clipped,
		"culled", st.Culled,
		"jobs", st.Jobs,
		"pixels", st.Pixels,
		"elapsed", st.Elapsed,
	)
	return st, err
}

// transform fills r.geom with clip-space vertices, one job per vertex chunk.
func (r *Renderer) transform(m *mesh.Mesh, t mgl32.Mat4) error {
	n := len(m.Positions)
	if cap(r.geom.Vertices) < n {
		r.geom.Vertices = make([]ClipVertex, n)
	}
	r.geom.Vertices = r.geom.Vertices[:n]
	r.geom.Indices = m.Indices

	if cap(r.clip) < n {
		r.clip = make([]mgl32.Vec4, n)
	}
	r.clip = r.clip[:n]

	verts, clip := r.geom.Vertices, r.clip
	return r.parallel(n, r.opts.VertexChunk, func(lo, hi int) {
		TransformRange(t, m.Positions, clip, lo, hi)
		for i := lo; i < hi; i++ {
			verts[i] = ClipVertex{Position: clip[i], Normal: m.Normals[i]}
		}
	})
}

// project divides and viewport-maps every vertex referenced by g. Unused
// vertices may sit behind the camera and are never divided.
func (r *Renderer) project(g Geometry) error {
	n := len(g.Vertices)
	if cap(r.used) < n {
		r.used = make([]bool, n)
		r.screen = make([]screenVertex, n)
	}
	r.used = r.used[:n]
	r.screen = r.screen[:n]
	clear(r.used)
	for _, idx := range g.Indices {
		r.used[idx] = true
	}

	vp := Viewport(r.opts.Logic, r.viewport(), r.opts.Depth)
	used, screen := r.used, r.screen
	return r.parallel(n, r.opts.VertexChunk, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if !used[i] {
				continue
			}
			c := g.Vertices[i].Position
			ndc, ok := PerspectiveDivide(c)
			if !ok {
				// Only reachable for vertices exactly at the eye, which the
				// near plane removes; keep them harmless.
				screen[i] = screenVertex{}
				continue
			}
			screen[i] = screenVertex{pos: MapPoint(vp, ndc), invW: 1 / c[3]}
		}
	})
}

// assemble builds screen triangles, drops culled and degenerate ones and bins
// the rest into row bands. It returns the number dropped.
func (r *Renderer) assemble(g Geometry) int {
	r.tris = r.tris[:0]
	bh := r.opts.BandHeight
	nb := (r.fb.Height + bh - 1) / bh
	if len(r.bands) < nb {
		r.bands = append(r.bands, make([][]int32, nb-len(r.bands))...)
	}
	r.bands = r.bands[:nb]
	for i := range r.bands {
		r.bands[i] = r.bands[i][:0]
	}

	dropped := 0
	for i := 0; i+2 < len(g.Indices); i += 3 {
		var tri ScreenTriangle
		for k := 0; k < 3; k++ {
			idx := g.Indices[i+k]
			sv := r.screen[idx]
			tri.Positions[k] = sv.pos
			tri.InvW[k] = sv.invW
			tri.Normals[k] = g.Vertices[idx].Normal
		}
		area := tri.Area()
		if area == 0 || !finite(area) || r.opts.Cull.Culls(area) {
			dropped++
			continue
		}
		_, y0, _, y1, ok := tri.Bounds(r.fb.Width, r.fb.Height)
		if !ok {
			dropped++
			continue
		}

		ti := int32(len(r.tris))
		r.tris = append(r.tris, tri)
		for b := y0 / bh; b <= y1/bh; b++ {
			r.bands[b] = append(r.bands[b], ti)
		}
	}
	return dropped
}

// rasterize submits one job per non-empty band. Each job owns its rows, so no
// two jobs touch the same pixel, and triangles within a band are drawn in
// submission order.
func (r *Renderer) rasterize() (int, int64, error) {
	var pixels atomic.Int64
	b := r.pool.NewBatch()
	bh := r.opts.BandHeight
	jobs, refused := 0, 0

	for band, list := range r.bands {
		if len(list) == 0 {
			continue
		}
		rows := RowSpan{Min: band * bh, Max: min((band+1)*bh, r.fb.Height)}
		list := list
		jobs++
		if !b.Submit(func() {
			n := 0
			for _, ti := range list {
				n += RasterizeTriangle(r.fb, &r.tris[ti], r.opts.Shader, rows, CullNone)
			}
			pixels.Add(int64(n))
		}) {
			refused++
		}
	}
	b.Wait()
	if refused > 0 {
		return jobs, pixels.Load(), fmt.Errorf("%w: %d raster jobs", ErrPoolClosed, refused)
	}
	return jobs, pixels.Load(), nil
}

// parallel splits [0, n) into chunks and runs fn on the pool, waiting for all.
func (r *Renderer) parallel(n, chunk int, fn func(lo, hi int)) error {
	if n <= chunk {
		fn(0, n)
		return nil
	}
	b := r.pool.NewBatch()
	refused := 0
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		if !b.Submit(func() { fn(lo, hi) }) {
			refused++
		}
	}
	b.Wait()
	if refused > 0 {
		return fmt.Errorf("%w: %d vertex jobs", ErrPoolClosed, refused)
	}
	return nil
}
