package raster

import "testing"

func TestNewFrameBuffer(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	if len(fb.Color) != 4*3*3 {
		t.Errorf("len(Color) = %d, want %d", len(fb.Color), 36)
	}
	if len(fb.Depth) != 12 {
		t.Errorf("len(Depth) = %d, want 12", len(fb.Depth))
	}
	for i, d := range fb.Depth {
		if d != ClearDepthValue {
			t.Fatalf("Depth[%d] = %v, want %v", i, d, ClearDepthValue)
		}
	}
	if got := fb.Covered(); got != 0 {
		t.Errorf("Covered() = %d, want 0", got)
	}
}

func TestSetAt(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	c := RGB{10, 20, 30}
	fb.Set(3, 2, c)
	fb.SetDepth(3, 2, 0.25)
	if got := fb.At(3, 2); got != c {
		t.Errorf("At(3, 2) = %v, want %v", got, c)
	}
	if got := fb.At(3, 2).G(); got != 20 {
		t.Errorf("G() = %d, want 20", got)
	}
	if got := fb.DepthAt(3, 2); got != 0.25 {
		t.Errorf("DepthAt(3, 2) = %v, want 0.25", got)
	}
	// Row-major layout.
	if i := (2*4 + 3) * 3; fb.Color[i] != 10 {
		t.Errorf("Color[%d] = %d, want 10", i, fb.Color[i])
	}
	if fb.Covered() != 1 {
		t.Errorf("Covered() = %d, want 1", fb.Covered())
	}
}

func TestOutOfBoundsAccess(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		fb.Set(p[0], p[1], RGB{255, 255, 255})
		fb.SetDepth(p[0], p[1], 0)
		if got := fb.At(p[0], p[1]); got != (RGB{}) {
			t.Errorf("At(%d, %d) = %v, want black", p[0], p[1], got)
		}
		if got := fb.DepthAt(p[0], p[1]); got != ClearDepthValue {
			t.Errorf("DepthAt(%d, %d) = %v, want %v", p[0], p[1], got, ClearDepthValue)
		}
	}
	if fb.Covered() != 0 {
		t.Error("out-of-bounds writes landed in the buffer")
	}
}

func TestClearRows(t *testing.T) {
	fb := NewFrameBuffer(3, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 3; x++ {
			fb.Set(x, y, RGB{1, 1, 1})
			fb.SetDepth(x, y, 0.5)
		}
	}
	bg := RGB{9, 8, 7}
	fb.ClearRows(1, 3, bg, ClearDepthValue)
	for y := 0; y < 4; y++ {
		cleared := y == 1 || y == 2
		for x := 0; x < 3; x++ {
			wantC, wantD := RGB{1, 1, 1}, float32(0.5)
			if cleared {
				wantC, wantD = bg, ClearDepthValue
			}
			if got := fb.At(x, y); got != wantC {
				t.Errorf("At(%d, %d) = %v, want %v", x, y, got, wantC)
			}
			if got := fb.DepthAt(x, y); got != wantD {
				t.Errorf("DepthAt(%d, %d) = %v, want %v", x, y, got, wantD)
			}
		}
	}

	// Out-of-range rows are clamped.
	fb.ClearRows(-5, 50, RGB{}, ClearDepthValue)
	if fb.Covered() != 0 {
		t.Errorf("Covered() = %d after full clear", fb.Covered())
	}
}

func TestResize(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.SetDepth(0, 0, 0.1)
	if fb.Resize(2, 2) {
		t.Error("Resize to same size reallocated")
	}
	if fb.DepthAt(0, 0) != 0.1 {
		t.Error("Resize to same size cleared the buffer")
	}
	if !fb.Resize(5, 1) {
		t.Error("Resize to new size did not reallocate")
	}
	if fb.Width != 5 || fb.Height != 1 || len(fb.Depth) != 5 || len(fb.Color) != 15 {
		t.Errorf("after Resize: %dx%d, depth %d, color %d", fb.Width, fb.Height, len(fb.Depth), len(fb.Color))
	}
	if fb.Covered() != 0 {
		t.Error("Resize did not clear depth")
	}
	fb.Resize(-1, -1)
	if fb.Width != 0 || fb.Height != 0 {
		t.Errorf("negative Resize gave %dx%d", fb.Width, fb.Height)
	}
}
