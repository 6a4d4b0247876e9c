// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// bytesPerTexel is the size of one RGBA32Float texel.
const bytesPerTexel = 16

// Buffer is a float32 RGBA texel grid. Row 0 is the bottom row, matching the
// Y-up orientation of normalized pointer coordinates.
type Buffer struct {
	width  int
	height int
	pix    []float32 // 4 floats per texel, row-major
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Buffer{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}, nil
}

// Width returns the buffer width in texels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in texels.
func (b *Buffer) Height() int { return b.height }

// Pix returns the raw texel data (RGBA, 4 floats per texel).
func (b *Buffer) Pix() []float32 { return b.pix }

// Format returns the GPU texture format equivalent to the buffer layout.
func (b *Buffer) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA32Float
}

// ByteSize returns the size of the texel data in bytes.
func (b *Buffer) ByteSize() int {
	return b.width * b.height * bytesPerTexel
}

// SameSize reports whether b and o have identical dimensions.
func (b *Buffer) SameSize(o *Buffer) bool {
	return b.width == o.width && b.height == o.height
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.width + x) * 4
}

// At returns the texel at (x, y). Out-of-bounds reads return zero.
func (b *Buffer) At(x, y int) [4]float32 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return [4]float32{}
	}
	i := b.offset(x, y)
	return [4]float32{b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]}
}

// Set stores v at (x, y). Out-of-bounds writes are ignored.
func (b *Buffer) Set(x, y int, v [4]float32) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := b.offset(x, y)
	b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = v[0], v[1], v[2], v[3]
}

// Intensity returns the trail intensity (red channel) at (x, y), clamping
// coordinates to the edge.
func (b *Buffer) Intensity(x, y int) float32 {
	x = clampInt(x, 0, b.width-1)
	y = clampInt(y, 0, b.height-1)
	return b.pix[b.offset(x, y)]
}

// NearestTexel returns the texel containing the normalized point (u, v),
// clamped to the buffer.
func (b *Buffer) NearestTexel(u, v float32) (x, y int) {
	x = clampInt(int(math.Floor(float64(u)*float64(b.width))), 0, b.width-1)
	y = clampInt(int(math.Floor(float64(v)*float64(b.height))), 0, b.height-1)
	return x, y
}

// TexelCenter returns the normalized coordinates of the center of texel (x, y).
func (b *Buffer) TexelCenter(x, y int) Point {
	return Point{
		X: (float32(x) + 0.5) / float32(b.width),
		Y: (float32(y) + 0.5) / float32(b.height),
	}
}

// Fill sets every texel to v.
func (b *Buffer) Fill(v [4]float32) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = v[0], v[1], v[2], v[3]
	}
}

// Clear zeroes every texel.
func (b *Buffer) Clear() {
	clear(b.pix)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
