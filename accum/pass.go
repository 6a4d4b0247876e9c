// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

import (
	"fmt"
	"math"

	"github.com/gogpu/trailbg/internal/parallel"
)

// Strength is the peak contribution a single feed adds per frame.
const Strength = 0.1

// Config holds the uniforms of the accumulation pass.
type Config struct {
	// Decay multiplies the previous frame. 1 keeps everything, 0 keeps nothing.
	Decay float32

	// TurbulenceScale is the spatial frequency of the edge noise.
	TurbulenceScale float32

	// TurbulenceStrength scales how much the noise distorts the blob radius.
	TurbulenceStrength float32

	// EdgeSharpness is the falloff radius of a single contribution.
	EdgeSharpness float32

	// SwirlStrength controls the time-varying rotation around the feed.
	SwirlStrength float32
}

// DefaultConfig returns the accumulation uniforms of the default look.
func DefaultConfig() Config {
	return Config{
		Decay:              0.98,
		TurbulenceScale:    8,
		TurbulenceStrength: 0.15,
		EdgeSharpness:      0.15,
		SwirlStrength:      0.02,
	}
}

// Contribution returns the additive term a single feed injects at uv.
// aspect is width/height of the buffer; it keeps blobs round on wide viewports.
// A feed outside the unit square contributes nothing.
func Contribution(uv, feed Point, aspect, time float32, cfg Config) float32 {
	if !feed.Inside() {
		return 0
	}
	dx := float64(uv.X-feed.X) * float64(aspect)
	dy := float64(uv.Y - feed.Y)
	dist := math.Hypot(dx, dy)

	theta := float64(cfg.SwirlStrength) * 10 * math.Sin(2*float64(time)+20*dist)
	sin, cos := math.Sincos(theta)
	qx := float64(feed.X) + cos*dx - sin*dy
	qy := float64(feed.Y) + sin*dx + cos*dy

	scale := float64(cfg.TurbulenceScale)
	n := valueNoise(qx*scale+float64(time), qy*scale+float64(time))
	r := dist * (1 + float64(cfg.TurbulenceStrength)*n)

	return float32(Strength * (1 - smoothstep(0, float64(cfg.EdgeSharpness), r)))
}

// Texel is the accumulation kernel for one texel: the decayed previous value
// plus the contribution of every feed, written to all four channels.
// The result is not clamped.
func Texel(prev [4]float32, uv Point, aspect float32, feeds []Point, time float32, cfg Config) [4]float32 {
	var c float32
	for _, f := range feeds {
		c += Contribution(uv, f, aspect, time, cfg)
	}
	return [4]float32{
		prev[0]*cfg.Decay + c,
		prev[1]*cfg.Decay + c,
		prev[2]*cfg.Decay + c,
		prev[3]*cfg.Decay + c,
	}
}

// Pass runs the accumulation kernel over a whole buffer.
type Pass struct {
	pool *parallel.Pool
}

// NewPass creates a pass that spreads rows over the given number of workers.
// workers <= 0 uses GOMAXPROCS; 1 runs on the calling goroutine.
func NewPass(workers int) *Pass {
	if workers == 1 {
		return &Pass{}
	}
	return &Pass{pool: parallel.NewPool(workers)}
}

// Run writes Texel(src, ...) into dst for every texel.
// dst and src must be distinct buffers of equal size.
func (p *Pass) Run(dst, src *Buffer, feeds []Point, time float32, cfg Config) error {
	if dst == nil || src == nil {
		return ErrNotAllocated
	}
	if dst == src {
		return ErrAliasedBuffers
	}
	if !dst.SameSize(src) {
		return fmt.Errorf("%w: dst %dx%d, src %dx%d",
			ErrSizeMismatch, dst.width, dst.height, src.width, src.height)
	}

	live := make([]Point, 0, len(feeds))
	for _, f := range feeds {
		if f.Inside() {
			live = append(live, f)
		}
	}

	w, h := dst.width, dst.height
	aspect := float32(w) / float32(h)

	p.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w * 4
			for x := range w {
				i := row + x*4
				prev := [4]float32{src.pix[i], src.pix[i+1], src.pix[i+2], src.pix[i+3]}
				out := Texel(prev, dst.TexelCenter(x, y), aspect, live, time, cfg)
				dst.pix[i], dst.pix[i+1], dst.pix[i+2], dst.pix[i+3] = out[0], out[1], out[2], out[3]
			}
		}
	})
	return nil
}

// Close stops the pass's workers. Close is idempotent.
func (p *Pass) Close() {
	if p == nil {
		return
	}
	p.pool.Close()
}
