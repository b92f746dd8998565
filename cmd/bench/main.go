package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"soft-rasterizer/internal/camera"
	"soft-rasterizer/internal/logging"
	"soft-rasterizer/internal/mathutil"
	"soft-rasterizer/internal/mesh"
	"soft-rasterizer/internal/pool"
	"soft-rasterizer/internal/raster"
)

func main() {
	frames := flag.Int("frames", 60, "Frames per pool size")
	width := flag.Int("width", 1280, "Framebuffer width")
	height := flag.Int("height", 720, "Framebuffer height")
	band := flag.Int("band", raster.DefaultBandHeight, "Rows per raster job")
	rings := flag.Int("rings", 64, "Sphere rings (triangle count scales with rings*segments)")
	verbose := flag.Bool("v", false, "Log per-frame pipeline statistics")
	flag.Parse()

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(*verbose)})))

	// A sphere crossing the near plane, in front of a cube.
	m := mesh.UVSphere(1.2, *rings, *rings*2)
	m.Append(mesh.Cube(2).Transformed(mgl32.Translate3D(0, 0, 1.5)))
	cam := camera.New(mgl32.Vec3{0, 0, -1.25}, 70)
	cam.Aspect = float32(*width) / float32(*height)

	sizes := []int{1, 4, runtime.NumCPU()}
	slices.Sort(sizes)
	sizes = slices.Compact(sizes)

	fmt.Printf("Scene: %d triangles, %dx%d, band %d rows, %d frames\n", m.TriangleCount(), *width, *height, *band, *frames)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("%8s %12s %14s %10s\n", "workers", "ms/frame", "pixels/frame", "jobs")

	for _, n := range sizes {
		p := pool.New(n)
		opts := raster.DefaultOptions()
		opts.BandHeight = *band
		r, err := raster.NewRenderer(raster.NewFrameBuffer(*width, *height), p, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var pixels int64
		var jobs int
		start := time.Now()
		for i := 0; i < *frames; i++ {
			model := mathutil.RotateAxis(mgl32.Vec3{0, 1, 0}, float32(i)*360/float32(*frames))
			if err := r.Begin(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			st, err := r.Render(m, cam.Transform().Mul4(model))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			pixels += st.Pixels
			jobs += st.Jobs
		}
		elapsed := time.Since(start)
		p.Close()

		f := max(*frames, 1)
		fmt.Printf("%8d %12.2f %14d %10d\n", n, elapsed.Seconds()*1000/float64(f), pixels/int64(f), jobs/f)
	}
}
