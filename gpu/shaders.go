// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/gogpu/trailbg/accum"
)

//go:embed shaders/accumulate.wgsl
var accumulateShaderSource string

// MaxFeeds is the number of feed points one dispatch can inject.
// It covers the pointer plus every autonomous trail.
const MaxFeeds = 4

// paramsSize is the byte size of the Params uniform in accumulate.wgsl:
// a 48-byte header followed by MaxFeeds vec4<f32> slots.
const paramsSize = 48 + MaxFeeds*16

// texelSize is the byte size of one vec4<f32> texel.
const texelSize = 16

// packParams serializes the accumulation uniforms in the layout of the WGSL
// Params struct. Feeds outside the unit square are skipped; feeds beyond
// MaxFeeds are dropped. The returned count is the number of feeds packed.
func packParams(width, height int, time float32, feeds []accum.Point, cfg accum.Config) ([]byte, int) {
	buf := make([]byte, paramsSize)
	le := binary.LittleEndian

	le.PutUint32(buf[0:], uint32(width))  //nolint:gosec // bounded by max dimension
	le.PutUint32(buf[4:], uint32(height)) //nolint:gosec // bounded by max dimension
	le.PutUint32(buf[8:], math.Float32bits(time))

	le.PutUint32(buf[16:], math.Float32bits(cfg.Decay))
	le.PutUint32(buf[20:], math.Float32bits(cfg.TurbulenceScale))
	le.PutUint32(buf[24:], math.Float32bits(cfg.TurbulenceStrength))
	le.PutUint32(buf[28:], math.Float32bits(cfg.EdgeSharpness))
	le.PutUint32(buf[32:], math.Float32bits(cfg.SwirlStrength))

	n := 0
	for _, f := range feeds {
		if n == MaxFeeds {
			break
		}
		if !f.Inside() {
			continue
		}
		off := 48 + n*16
		le.PutUint32(buf[off:], math.Float32bits(f.X))
		le.PutUint32(buf[off+4:], math.Float32bits(f.Y))
		n++
	}
	le.PutUint32(buf[12:], uint32(n)) //nolint:gosec // n <= MaxFeeds
	return buf, n
}

// unpackTexels decodes little-endian f32 texels into dst.
func unpackTexels(src []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
