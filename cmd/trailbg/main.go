// Command trailbg renders the animated trail background.
//
// By default it opens a window that follows the cursor. With -headless it
// renders a fixed number of frames off screen and saves the last one:
//
//	trailbg -headless -frames 300 -out trail.png -hud
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/gogpu/trailbg"
	"github.com/gogpu/trailbg/gpu"
)

type config struct {
	width, height int
	headless      bool
	frames        int
	hz            float64
	out           string
	normal        string
	albedo        string
	profile       string
	paramsPath    string
	useGPU        bool
	seed          uint64
	feed          string
	verbose       bool
	hud           bool
}

func parseFlags() config {
	var c config
	flag.IntVar(&c.width, "width", 800, "viewport width")
	flag.IntVar(&c.height, "height", 600, "viewport height")
	flag.BoolVar(&c.headless, "headless", false, "render off screen and save the last frame")
	flag.IntVar(&c.frames, "frames", 300, "frames to render in headless mode (0 = until interrupted)")
	flag.Float64Var(&c.hz, "hz", 0, "headless frame rate (0 = as fast as possible); window tick rate")
	flag.StringVar(&c.out, "out", "trail.png", "headless output PNG")
	flag.StringVar(&c.normal, "normal", "", "normal map image")
	flag.StringVar(&c.albedo, "albedo", "", "albedo image")
	flag.StringVar(&c.profile, "profile", "soft", "lighting profile (soft, original, tinted)")
	flag.StringVar(&c.paramsPath, "config", "", "JSON parameter file")
	flag.BoolVar(&c.useGPU, "gpu", false, "accumulate on the GPU (falls back to CPU)")
	flag.Uint64Var(&c.seed, "seed", 0, "trail seed (0 = random)")
	flag.StringVar(&c.feed, "feed", "cycle", "feed policy (cycle, blend)")
	flag.BoolVar(&c.verbose, "v", false, "debug logging to stderr")
	flag.BoolVar(&c.hud, "hud", false, "draw frame statistics")
	flag.Parse()
	return c
}

func main() {
	cfg := parseFlags()
	if cfg.verbose {
		trailbg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	r, err := newRenderer(cfg)
	if err != nil {
		log.Fatalf("trailbg: %v", err)
	}

	if cfg.normal != "" || cfg.albedo != "" {
		loaded := r.LoadMaterial(context.Background(), cfg.normal, cfg.albedo)
		if cfg.headless {
			// Headless output should include the material.
			if err := <-loaded; err != nil {
				log.Printf("trailbg: %v", err)
			}
		}
	}

	if cfg.headless {
		err = runHeadless(r, cfg)
	} else {
		err = runWindow(r, cfg)
	}
	r.Close()
	if err != nil {
		log.Fatalf("trailbg: %v", err)
	}
}

func newRenderer(cfg config) (*trailbg.Renderer, error) {
	policy, ok := trailbg.ParseFeedPolicy(cfg.feed)
	if !ok {
		return nil, fmt.Errorf("unknown feed policy %q", cfg.feed)
	}
	opts := []trailbg.Option{trailbg.WithFeedPolicy(policy)}

	if cfg.paramsPath != "" {
		p, err := trailbg.LoadParams(cfg.paramsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, trailbg.WithParams(p))
	} else {
		p, err := trailbg.ParseProfile(cfg.profile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, trailbg.WithProfile(p))
	}

	seed := cfg.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	opts = append(opts, trailbg.WithSeed(seed))

	if cfg.useGPU {
		opts = append(opts, trailbg.WithAccumulator(gpu.New(0, 0)))
	}

	r, err := trailbg.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Resize(cfg.width, cfg.height); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}
