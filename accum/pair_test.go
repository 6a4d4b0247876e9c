// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

import (
	"errors"
	"testing"
)

// =============================================================================
// Buffer Tests
// =============================================================================

func TestNewBuffer_InvalidSize(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBuffer(tt.w, tt.h); !errors.Is(err, ErrInvalidSize) {
				t.Errorf("NewBuffer(%d, %d) err = %v, want ErrInvalidSize", tt.w, tt.h, err)
			}
		})
	}
}

func TestBuffer_SetAt(t *testing.T) {
	b, err := NewBuffer(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	b.Set(2, 1, [4]float32{1, 2, 3, 4})
	if got := b.At(2, 1); got != [4]float32{1, 2, 3, 4} {
		t.Errorf("At(2,1) = %v", got)
	}
	if got := b.Intensity(2, 1); got != 1 {
		t.Errorf("Intensity(2,1) = %v, want 1", got)
	}

	// Out of bounds is silent.
	b.Set(-1, 0, [4]float32{9, 9, 9, 9})
	if got := b.At(10, 10); got != ([4]float32{}) {
		t.Errorf("At out of bounds = %v, want zero", got)
	}
}

func TestBuffer_TexelCenterRoundTrip(t *testing.T) {
	b, _ := NewBuffer(8, 6)
	for _, c := range [][2]int{{0, 0}, {3, 5}, {7, 2}} {
		p := b.TexelCenter(c[0], c[1])
		if !p.Inside() {
			t.Errorf("TexelCenter%v = %v, want inside", c, p)
		}
		if x, y := b.NearestTexel(p.X, p.Y); x != c[0] || y != c[1] {
			t.Errorf("NearestTexel(TexelCenter%v) = (%d,%d)", c, x, y)
		}
	}
	if p := b.TexelCenter(0, 0); p != Pt(1.0/16, 1.0/12) {
		t.Errorf("TexelCenter(0,0) = %v, want (1/16, 1/12)", p)
	}
}

// =============================================================================
// Pair Tests
// =============================================================================

func newTestPair(t *testing.T, w, h int) *Pair {
	t.Helper()
	p := NewPair(0)
	if err := p.Resize(w, h); err != nil {
		t.Fatalf("Resize(%d, %d): %v", w, h, err)
	}
	return p
}

func TestPair_RoleSwap(t *testing.T) {
	p := newTestPair(t, 16, 8)
	cur, prev := p.Current(), p.Previous()
	if cur == prev {
		t.Fatal("Current and Previous alias the same buffer")
	}

	p.Swap()
	if p.Current() != prev || p.Previous() != cur {
		t.Error("Swap did not exchange roles")
	}
	p.Swap()
	if p.Current() != cur || p.Previous() != prev {
		t.Error("two swaps should restore the original roles")
	}
}

func TestPair_ResizeSameIsNoop(t *testing.T) {
	p := newTestPair(t, 32, 16)
	p.Current().Set(1, 1, [4]float32{7, 7, 7, 7})
	p.Swap()
	cur, prev := p.Current(), p.Previous()

	if err := p.Resize(32, 16); err != nil {
		t.Fatalf("Resize same: %v", err)
	}
	if p.Current() != cur || p.Previous() != prev {
		t.Error("Resize to same dimensions replaced buffers")
	}
	if got := p.Previous().At(1, 1)[0]; got != 7 {
		t.Errorf("contents lost on no-op resize: %v", got)
	}
	if w, h := p.Size(); w != 32 || h != 16 {
		t.Errorf("Size = %dx%d, want 32x16", w, h)
	}
}

func TestPair_ResizeReallocates(t *testing.T) {
	p := newTestPair(t, 800, 600)
	p.Current().Fill([4]float32{1, 1, 1, 1})

	if err := p.Resize(1600, 1200); err != nil {
		t.Fatal(err)
	}
	if w, h := p.Size(); w != 1600 || h != 1200 {
		t.Errorf("Size = %dx%d, want 1600x1200", w, h)
	}
	if p.Current().At(0, 0)[0] != 0 {
		t.Error("resize should discard contents")
	}
	if p.Current() == p.Previous() {
		t.Error("buffers alias after resize")
	}
}

func TestPair_ResizeErrors(t *testing.T) {
	p := NewPair(64)
	if err := p.Resize(64, 64); err != nil {
		t.Fatalf("Resize at limit: %v", err)
	}
	cur := p.Current()

	tests := []struct {
		name string
		w, h int
		want error
	}{
		{"too wide", 65, 10, ErrBufferTooLarge},
		{"too tall", 10, 1000, ErrBufferTooLarge},
		{"zero", 0, 10, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Resize(tt.w, tt.h); !errors.Is(err, tt.want) {
				t.Errorf("Resize(%d, %d) err = %v, want %v", tt.w, tt.h, err, tt.want)
			}
			if p.Current() != cur {
				t.Error("failed resize replaced buffers")
			}
		})
	}
}

func TestPair_ReleaseIdempotent(t *testing.T) {
	p := newTestPair(t, 4, 4)
	p.Release()
	p.Release()
	if p.Allocated() {
		t.Error("pair still allocated after Release")
	}
	if w, h := p.Size(); w != 0 || h != 0 {
		t.Errorf("Size after Release = %dx%d", w, h)
	}
}
