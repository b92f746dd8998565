package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"soft-rasterizer/internal/camera"
	"soft-rasterizer/internal/config"
	"soft-rasterizer/internal/logging"
	"soft-rasterizer/internal/mesh"
	"soft-rasterizer/internal/pool"
	"soft-rasterizer/internal/present"
	"soft-rasterizer/internal/raster"
	"soft-rasterizer/internal/sequence"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json or .yaml config file")
	width := flag.Int("width", 0, "Output width in pixels (default: 1280)")
	height := flag.Int("height", 0, "Output height in pixels (default: 720)")
	frames := flag.Int("frames", 0, "Number of turntable frames (default: 1)")
	meshName := flag.String("mesh", "", "Primitive to render: quad, cube, sphere (default: cube)")
	shader := flag.String("shader", "", "Shader: normal, depth, lambert (default: normal)")
	format := flag.String("format", "", "Output format: png, webp, tga, bmp (default: png)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	workers := flag.Int("workers", 0, "Worker goroutines (default: NumCPU, at most 32)")
	band := flag.Int("band", 0, "Rows per raster job (default: 8)")
	supersample := flag.Int("supersample", 0, "Render at N times the size and downsample (default: 1)")
	fov := flag.Float64("fov", 0, "Vertical field of view in degrees (default: 60)")
	cull := flag.String("cull", "", "Face culling: none, back, front (default: none)")
	verbose := flag.Bool("v", false, "Log per-frame pipeline statistics")

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(*verbose)}))
	logging.SetLogger(logger)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		Format:      *format,
		Frames:      *frames,
		Supersample: *supersample,
		Width:       *width,
		Height:      *height,
		Workers:     *workers,
		BandHeight:  *band,
		Cull:        *cull,
		Mesh:        *meshName,
		Shader:      *shader,
		FOV:         *fov,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Validate accepted every name, so these cannot fail.
	outFormat, _ := present.ParseFormat(cfg.Format)
	shade, _ := raster.ParseShader(cfg.Shader)
	cullMode, _ := raster.ParseCullMode(cfg.Cull)
	shutdown, _ := pool.ParseShutdownMode(cfg.Shutdown)
	m, _ := mesh.ByName(cfg.Mesh)

	p := pool.New(cfg.Workers, pool.WithShutdownMode(shutdown), pool.WithLogger(logger))
	defer p.Close()

	opts := raster.DefaultOptions()
	opts.BandHeight = cfg.BandHeight
	opts.Cull = cullMode
	opts.Shader = shade
	opts.ClearColor = raster.RGB(cfg.ClearColor)
	r, err := raster.NewRenderer(raster.NewFrameBuffer(cfg.Width, cfg.Height), p, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cam := camera.New(cfg.CameraPosition(), cfg.FOV)
	cam.Aspect = float32(cfg.Width) / float32(cfg.Height)
	cam.Near, cam.Far = cfg.Near, cfg.Far

	// Print summary
	fmt.Printf("Software rasterizer → %s\n", outFormat)
	fmt.Printf("Mesh: %s (%d triangles), Shader: %s, Cull: %s\n", cfg.Mesh, m.TriangleCount(), cfg.Shader, cullMode)
	fmt.Printf("Frames: %d at %dx%d (supersample %d), Workers: %d, Band: %d rows\n",
		cfg.Frames, cfg.Width, cfg.Height, cfg.Supersample, p.Size(), cfg.BandHeight)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := sequence.Run(ctx, sequence.Config{
		OutputDir:   cfg.OutputDir,
		Format:      outFormat,
		Frames:      cfg.Frames,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Encoders:    p.Size(),
		Progress:    cfg.Frames > 1,
	}, r, m, cam)
	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	// Count results
	success, failed := 0, 0
	var pixels int64
	var errors []sequence.Result
	for _, res := range results {
		switch {
		case res.Success:
			success++
			pixels += res.Pixels
		case res.Error != "":
			failed++
			errors = append(errors, res)
		}
	}

	fmt.Printf("Rendered: %d/%d", success, cfg.Frames)
	if success > 0 {
		fmt.Printf(", %.1f ms/frame, %d pixels/frame", elapsed.Seconds()*1000/float64(success), pixels/int64(success))
	}
	fmt.Println()

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Printf("  frame %d: %s\n", e.Index, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err == nil {
		if err := sequence.WriteManifest(manifestPath, sequence.Config{Format: outFormat, Width: cfg.Width, Height: cfg.Height}, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if failed > 0 || err != nil {
		os.Exit(1)
	}
}
