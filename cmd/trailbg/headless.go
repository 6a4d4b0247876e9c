package main

import (
	"context"
	"fmt"
	"image/png"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/gogpu/trailbg"
	"github.com/gogpu/trailbg/accum"
)

// wander is the synthetic cursor of headless renders: two Perlin noise
// channels drive a slow drift around the centre of the viewport.
type wander struct {
	x, y *perlin.Perlin
}

func newWander(seed int64) *wander {
	return &wander{
		x: perlin.NewPerlin(2, 2, 3, seed),
		y: perlin.NewPerlin(2, 2, 3, seed+1),
	}
}

// at returns the cursor position at time t. It stays within 0.35 of the centre.
func (w *wander) at(t float64) accum.Point {
	const speed, reach = 0.35, 0.35
	nx := math.Max(-1, math.Min(1, w.x.Noise1D(t*speed+0.5)))
	ny := math.Max(-1, math.Min(1, w.y.Noise1D(t*speed+0.5)))
	return accum.Pt(float32(0.5+reach*nx), float32(0.5+reach*ny))
}

// runHeadless renders cfg.frames frames (or until interrupted) and writes
// the last one to cfg.out.
func runHeadless(r *trailbg.Renderer, cfg config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var interval time.Duration
	if cfg.hz > 0 {
		interval = time.Duration(float64(time.Second) / cfg.hz)
	}

	path := newWander(int64(cfg.seed)) //nolint:gosec // any bit pattern is a valid seed
	start := time.Now()
	r.SetPointer(path.at(0))
	err := r.Run(ctx, interval, func(*trailbg.Pixmap) error {
		if cfg.frames > 0 && r.Frames() >= uint64(cfg.frames) {
			cancel()
			return nil
		}
		r.SetPointer(path.at(r.Time() * 10))
		return nil
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if r.Frames() == 0 {
		return fmt.Errorf("no frame rendered")
	}
	if err := savePNG(r, cfg, elapsed); err != nil {
		return err
	}
	log.Print(printer.Sprintf("saved %s: %d frames in %v", cfg.out, r.Frames(), elapsed.Round(time.Millisecond)))
	return nil
}

func savePNG(r *trailbg.Renderer, cfg config, elapsed time.Duration) error {
	if !cfg.hud {
		return r.Frame().SavePNG(cfg.out)
	}
	img := r.Frame().ToImage()
	drawHUD(img, hudLines(r, elapsed))

	f, err := os.Create(filepath.Clean(cfg.out))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode PNG: %w", err)
	}
	return f.Close()
}
