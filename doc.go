// Package trailbg renders an animated full-viewport background: a
// normal-mapped plane lit by a point light, displaced by a fading trail that
// follows the pointer or a few autonomous wandering points.
//
// # Overview
//
// Every frame runs two passes. The accumulation pass decays a floating-point
// trail buffer and adds a noisy, swirling blob at the feed point. The
// composition pass reads the buffer just written, displaces and tilts the
// surface around the feed, and shades it with wrap-lit Blinn-Phong.
//
// # Quick Start
//
//	import "github.com/gogpu/trailbg"
//
//	r, err := trailbg.New(trailbg.WithProfile(trailbg.ProfileSoft))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	_ = r.Resize(800, 600)
//	r.PointerMove(400, 300)
//	if err := r.Tick(1.0 / 60); err != nil {
//	    log.Fatal(err)
//	}
//	_ = r.Frame().SavePNG("frame.png")
//
// # Accumulators
//
// The accumulation pass runs on the CPU by default. The gpu sub-package runs
// it as a WebGPU compute shader and falls back to the CPU when no adapter is
// available:
//
//	acc := gpu.New(0, 0)
//	r, err := trailbg.New(trailbg.WithAccumulator(acc))
//
// # Configuration
//
// [Params] holds every adjustable uniform with its documented range. Values
// are clamped, never rejected. [Profile] bundles lighting coefficients and a
// tint. Parameters can be changed from any goroutine and apply on the next
// frame.
//
// # Architecture
//
//   - accum: buffers, ping-pong pair, accumulation kernel, CPU accumulator
//   - gpu: WebGPU compute accumulator
//   - internal/pointer: trail points and feed selection
//   - internal/shade: composition pass
//   - internal/texture: material maps
//   - internal/parallel: row-banded worker pool
package trailbg
