// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

import "math"

// hash2 maps a lattice point to a pseudo-random value in [0, 1).
// The constants match the WGSL kernel so CPU and GPU produce the same field.
func hash2(x, y float64) float64 {
	h := math.Sin(x*127.1+y*311.7) * 43758.5453
	return h - math.Floor(h)
}

// valueNoise returns smoothly interpolated lattice noise in [-1, 1].
func valueNoise(x, y float64) float64 {
	ix, iy := math.Floor(x), math.Floor(y)
	fx, fy := x-ix, y-iy

	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)

	a := hash2(ix, iy)
	b := hash2(ix+1, iy)
	c := hash2(ix, iy+1)
	d := hash2(ix+1, iy+1)

	v := a + (b-a)*ux + (c-a)*uy + (a-b-c+d)*ux*uy
	return v*2 - 1
}

// smoothstep is the GLSL/WGSL smoothstep: 0 at e0, 1 at e1, Hermite between.
func smoothstep(e0, e1, x float64) float64 {
	if e1 == e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// Smoothstep is exported for the composition pass, which gates displacement
// with the same falloff.
func Smoothstep(e0, e1, x float32) float32 {
	return float32(smoothstep(float64(e0), float64(e1), float64(x)))
}
