package raster

// ClearDepthValue is the depth written by Clear: the far plane.
const ClearDepthValue float32 = 1

// RGB is an 8-bit color sample stored positionally.
type RGB [3]uint8

func (c RGB) R() uint8 { return c[0] }
func (c RGB) G() uint8 { return c[1] }
func (c RGB) B() uint8 { return c[2] }

// FrameBuffer holds the rendering target as flat slices for cache locality.
// Row 0 is the top of the image.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGB interleaved, len = W*H*3
	Depth  []float32 // depth per pixel, len = W*H, smaller is nearer
}

// NewFrameBuffer allocates a black color buffer and a far-cleared depth buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates the buffers when the dimensions change and clears them.
// It reports whether a reallocation happened.
func (fb *FrameBuffer) Resize(w, h int) bool {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if w == fb.Width && h == fb.Height && fb.Color != nil {
		return false
	}
	n := w * h
	fb.Width = w
	fb.Height = h
	fb.Color = make([]uint8, n*3)
	fb.Depth = make([]float32, n)
	fb.ClearDepth(ClearDepthValue)
	return true
}

// Clear resets color to c and depth to the far plane.
func (fb *FrameBuffer) Clear(c RGB) {
	fb.ClearRows(0, fb.Height, c, ClearDepthValue)
}

func (fb *FrameBuffer) ClearColor(c RGB) {
	for i := 0; i < len(fb.Color); i += 3 {
		fb.Color[i] = c[0]
		fb.Color[i+1] = c[1]
		fb.Color[i+2] = c[2]
	}
}

func (fb *FrameBuffer) ClearDepth(d float32) {
	for i := range fb.Depth {
		fb.Depth[i] = d
	}
}

// ClearRows clears rows [y0, y1) only, so row bands can be cleared in parallel.
func (fb *FrameBuffer) ClearRows(y0, y1 int, c RGB, d float32) {
	if y0 < 0 {
		y0 = 0
	}
	if y1 > fb.Height {
		y1 = fb.Height
	}
	if y0 >= y1 {
		return
	}
	depth := fb.Depth[y0*fb.Width : y1*fb.Width]
	for i := range depth {
		depth[i] = d
	}
	color := fb.Color[y0*fb.Width*3 : y1*fb.Width*3]
	if c == (RGB{}) {
		clear(color)
		return
	}
	for i := 0; i < len(color); i += 3 {
		color[i] = c[0]
		color[i+1] = c[1]
		color[i+2] = c[2]
	}
}

func (fb *FrameBuffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < fb.Width && y < fb.Height
}

// At returns the color at (x, y), or black outside the buffer.
func (fb *FrameBuffer) At(x, y int) RGB {
	if !fb.InBounds(x, y) {
		return RGB{}
	}
	i := (y*fb.Width + x) * 3
	return RGB{fb.Color[i], fb.Color[i+1], fb.Color[i+2]}
}

// Set writes the color at (x, y). Out-of-range writes are ignored.
func (fb *FrameBuffer) Set(x, y int, c RGB) {
	if !fb.InBounds(x, y) {
		return
	}
	i := (y*fb.Width + x) * 3
	fb.Color[i] = c[0]
	fb.Color[i+1] = c[1]
	fb.Color[i+2] = c[2]
}

// DepthAt returns the depth at (x, y), or the far plane outside the buffer.
func (fb *FrameBuffer) DepthAt(x, y int) float32 {
	if !fb.InBounds(x, y) {
		return ClearDepthValue
	}
	return fb.Depth[y*fb.Width+x]
}

// SetDepth writes the depth at (x, y). Out-of-range writes are ignored.
func (fb *FrameBuffer) SetDepth(x, y int, d float32) {
	if !fb.InBounds(x, y) {
		return
	}
	fb.Depth[y*fb.Width+x] = d
}

// Covered counts pixels whose depth differs from the clear value.
func (fb *FrameBuffer) Covered() int {
	n := 0
	for _, d := range fb.Depth {
		if d != ClearDepthValue {
			n++
		}
	}
	return n
}
