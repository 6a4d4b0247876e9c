// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

import "math"

// Point is a position in normalized viewport space: (0,0) is the bottom-left
// corner and (1,1) the top-right.
type Point struct {
	X, Y float32
}

// Offscreen is the feed used when nothing should be injected.
var Offscreen = Point{X: -1, Y: -1}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Inside reports whether p lies strictly inside the unit square.
// Points on the boundary are outside.
func (p Point) Inside() bool {
	return p.X > 0 && p.X < 1 && p.Y > 0 && p.Y < 1
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float32 {
	return float32(math.Hypot(float64(p.X), float64(p.Y)))
}
