// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

// CPU is the software accumulator: a Pair driven by a row-parallel Pass.
//
// CPU is not safe for concurrent use; the frame driver owns it.
type CPU struct {
	pair   *Pair
	pass   *Pass
	closed bool
}

// NewCPU creates a CPU accumulator. workers follows NewPass; maxDimension
// follows Pair.MaxDimension.
func NewCPU(workers, maxDimension int) *CPU {
	return &CPU{
		pair: NewPair(maxDimension),
		pass: NewPass(workers),
	}
}

// Name identifies the accumulator in logs.
func (c *CPU) Name() string { return "cpu" }

// Pair exposes the underlying buffer pair.
func (c *CPU) Pair() *Pair { return c.pair }

// Resize reallocates the buffer pair. See Pair.Resize.
func (c *CPU) Resize(width, height int) error {
	return c.pair.Resize(width, height)
}

// Clear zeroes both buffers.
func (c *CPU) Clear() {
	c.pair.Clear()
}

// Accumulate runs one pass from Previous into Current, swaps, and returns the
// buffer just written. The returned buffer stays valid until the next call.
func (c *CPU) Accumulate(feeds []Point, time float32, cfg Config) (*Buffer, error) {
	if c.closed || !c.pair.Allocated() {
		return nil, ErrNotAllocated
	}
	dst := c.pair.Current()
	if err := c.pass.Run(dst, c.pair.Previous(), feeds, time, cfg); err != nil {
		return nil, err
	}
	c.pair.Swap()
	return dst, nil
}

// Close releases the buffers and stops the workers. Close is idempotent.
func (c *CPU) Close() {
	if c == nil || c.closed {
		return
	}
	c.closed = true
	c.pair.Release()
	c.pass.Close()
}
