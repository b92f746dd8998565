// Package sequence renders a turntable of frames and writes them to disk.
package sequence

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"soft-rasterizer/internal/camera"
	"soft-rasterizer/internal/logging"
	"soft-rasterizer/internal/mathutil"
	"soft-rasterizer/internal/mesh"
	"soft-rasterizer/internal/present"
	"soft-rasterizer/internal/raster"
)

// Config describes one run.
type Config struct {
	OutputDir   string
	Format      present.Format
	Frames      int
	Width       int // output size; the framebuffer is Supersample times larger
	Height      int
	Supersample int
	Encoders    int // concurrent encodes, at least 1
	Progress    bool
}

// errNotRendered marks frames a cancelled or failed run never reached.
const errNotRendered = "not rendered"

// Result holds the outcome of one frame.
type Result struct {
	Index     int     `json:"index"`
	Path      string  `json:"path"`
	Angle     float32 `json:"angle"`
	Triangles int     `json:"triangles"`
	Pixels    int64   `json:"pixels"`
	RenderMS  float64 `json:"render_ms"`
	Success   bool    `json:"success"`
	Error     string  `json:"error,omitempty"`

	Stats raster.Stats `json:"-"`
}

// FramePath returns the output path of frame i.
func (c Config) FramePath(i int) string {
	return filepath.Join(c.OutputDir, fmt.Sprintf("frame_%04d%s", i, c.Format.Ext()))
}

// Run renders cfg.Frames frames of m turning once around +Y in front of cam.
// Frames are rendered one at a time; encoding and file writes overlap with
// the next frame. A frame whose file cannot be written is reported in its
// Result and does not stop the run. There is always one Result per frame;
// frames never written carry an Error. Run returns early with the context error
// when ctx is cancelled, or with the renderer error when a frame cannot be
// drawn.
func Run(ctx context.Context, cfg Config, r *raster.Renderer, m *mesh.Mesh, cam camera.Camera) ([]Result, error) {
	if cfg.Frames <= 0 {
		cfg.Frames = 1
	}
	if cfg.Supersample <= 0 {
		cfg.Supersample = 1
	}
	if cfg.Encoders <= 0 {
		cfg.Encoders = 1
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	log := logging.Logger()
	r.Resize(cfg.Width*cfg.Supersample, cfg.Height*cfg.Supersample)

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.Default(int64(cfg.Frames), "rendering")
	}

	results := make([]Result, cfg.Frames)
	for i := range results {
		results[i] = Result{
			Index: i,
			Path:  cfg.FramePath(i),
			Angle: frameAngle(i, cfg.Frames),
			Error: errNotRendered,
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Encoders)

	transform := cam.Transform()
	var renderErr error
	for i := 0; i < cfg.Frames; i++ {
		if err := gctx.Err(); err != nil {
			break
		}

		angle := frameAngle(i, cfg.Frames)
		model := mathutil.RotateAxis(mgl32.Vec3{0, 1, 0}, angle)

		start := time.Now()
		if err := r.Begin(); err != nil {
			renderErr = err
			results[i].Error = err.Error()
			break
		}
		st, err := r.Render(m.Transformed(model), transform)
		if err != nil {
			renderErr = fmt.Errorf("sequence: frame %d: %w", i, err)
			results[i].Error = err.Error()
			break
		}
		img := present.Snapshot(r.Frame())
		elapsed := time.Since(start)

		res := Result{
			Index:     i,
			Path:      cfg.FramePath(i),
			Angle:     angle,
			Triangles: st.Triangles,
			Pixels:    st.Pixels,
			RenderMS:  float64(elapsed.Microseconds()) / 1000,
			Stats:     st,
		}
		// Blocks while cfg.Encoders writes are in flight.
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[res.Index] = encodeFrame(cfg, res, img)
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}

	waitErr := g.Wait()
	if bar != nil {
		bar.Finish()
	}
	if renderErr != nil {
		return results, renderErr
	}
	if waitErr != nil {
		return results, waitErr
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	log.Info("sequence finished", "frames", cfg.Frames, "dir", cfg.OutputDir)
	return results, nil
}

func frameAngle(i, frames int) float32 {
	return 360 * float32(i) / float32(frames)
}

func encodeFrame(cfg Config, res Result, img *image.RGBA) Result {
	if cfg.Supersample > 1 {
		img = present.Downsample(img, cfg.Width, cfg.Height)
	}
	if err := present.WriteFile(res.Path, img, cfg.Format); err != nil {
		res.Error = err.Error()
		logging.Logger().Warn("frame not written", "index", res.Index, "err", err)
		return res
	}
	res.Success = true
	return res
}
