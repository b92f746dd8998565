// Package present turns a finished frame into images and files.
package present

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"soft-rasterizer/internal/logging"
	"soft-rasterizer/internal/raster"
)

// Format is an output image encoding.
type Format int

const (
	PNG Format = iota
	WebP
	TGA
	BMP
)

// Formats lists every supported format.
var Formats = []Format{PNG, WebP, TGA, BMP}

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case WebP:
		return "webp"
	case TGA:
		return "tga"
	case BMP:
		return "bmp"
	}
	return "unknown"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat accepts a format name or extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	name := strings.TrimPrefix(strings.ToLower(s), ".")
	for _, f := range Formats {
		if f.String() == name {
			return f, nil
		}
	}
	return PNG, fmt.Errorf("present: unknown format %q", s)
}

// Snapshot copies the color buffer into an opaque RGBA image. Call it only
// after the frame's raster jobs have finished.
func Snapshot(fb *raster.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		src := fb.Color[y*fb.Width*3 : (y+1)*fb.Width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+fb.Width*4]
		for x := 0; x < fb.Width; x++ {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 255
		}
	}
	return img
}

// DepthImage renders the depth buffer as grayscale, white at the near plane.
// Cleared pixels come out black.
func DepthImage(fb *raster.FrameBuffer) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			d := fb.Depth[y*fb.Width+x]
			if d >= raster.ClearDepthValue {
				continue
			}
			if d < 0 {
				d = 0
			}
			img.Pix[y*img.Stride+x] = uint8((1-d)*255 + 0.5)
		}
	}
	return img
}

// Downsample scales img to w×h with Catmull-Rom filtering. Images already at
// or below the target size are returned unchanged.
func Downsample(img *image.RGBA, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case TGA:
		err = tga.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("present: encode: unknown format %d", int(f))
	}
	if err != nil {
		return fmt.Errorf("present: %s encode: %w", f, err)
	}
	return nil
}

// WriteFile encodes img to path, creating parent directories.
func WriteFile(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("present: %w", err)
	}

	bw := bufio.NewWriter(out)
	if err := Encode(bw, img, f); err != nil {
		out.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("present: write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("present: close %s: %w", path, err)
	}
	logging.Logger().Debug("image written", "path", path, "format", f.String())
	return nil
}
