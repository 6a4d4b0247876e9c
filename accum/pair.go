// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// DefaultMaxDimension returns the largest buffer side accepted by default,
// taken from the WebGPU default limits.
func DefaultMaxDimension() int {
	return int(gputypes.DefaultLimits().MaxTextureDimension2D)
}

// Pair is the ping-pong pair of accumulation buffers.
//
// The buffers live in a fixed two-slot array; Swap only flips the parity, so
// Current and Previous are always distinct buffers once allocated.
type Pair struct {
	slots  [2]*Buffer
	parity int

	// MaxDimension bounds both sides on Resize. Zero means DefaultMaxDimension.
	MaxDimension int
}

// NewPair returns an unallocated pair. Call Resize before use.
func NewPair(maxDimension int) *Pair {
	return &Pair{MaxDimension: maxDimension}
}

func (p *Pair) limit() int {
	if p.MaxDimension > 0 {
		return p.MaxDimension
	}
	return DefaultMaxDimension()
}

// Resize reallocates both buffers at width x height, discarding their
// contents. Resizing to the current dimensions is a no-op.
//
// On error the pair keeps its previous buffers.
func (p *Pair) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if limit := p.limit(); width > limit || height > limit {
		return fmt.Errorf("%w: %dx%d (max %d)", ErrBufferTooLarge, width, height, limit)
	}
	if w, h := p.Size(); w == width && h == height {
		return nil
	}

	a, err := NewBuffer(width, height)
	if err != nil {
		return err
	}
	b, err := NewBuffer(width, height)
	if err != nil {
		return err
	}
	p.slots = [2]*Buffer{a, b}
	p.parity = 0
	slogger().Debug("accum: buffers resized", "width", width, "height", height)
	return nil
}

// Size returns the buffer dimensions, or 0, 0 before the first Resize.
func (p *Pair) Size() (width, height int) {
	if p.slots[0] == nil {
		return 0, 0
	}
	return p.slots[0].width, p.slots[0].height
}

// Allocated reports whether both buffers exist.
func (p *Pair) Allocated() bool {
	return p.slots[0] != nil && p.slots[1] != nil
}

// Current returns the write target of the current frame.
func (p *Pair) Current() *Buffer {
	return p.slots[p.parity]
}

// Previous returns the read source of the current frame.
func (p *Pair) Previous() *Buffer {
	return p.slots[p.parity^1]
}

// Parity returns the slot index of Current (0 or 1).
func (p *Pair) Parity() int {
	return p.parity
}

// Swap exchanges the roles of the two buffers.
func (p *Pair) Swap() {
	p.parity ^= 1
}

// Clear zeroes both buffers.
func (p *Pair) Clear() {
	for _, b := range p.slots {
		if b != nil {
			b.Clear()
		}
	}
}

// Release drops both buffers. Release is idempotent.
func (p *Pair) Release() {
	p.slots = [2]*Buffer{}
	p.parity = 0
}
