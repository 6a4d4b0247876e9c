// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package accum implements the trail accumulation stage of trailbg.
//
// # Buffers
//
// A [Buffer] is a grid of float32 RGBA texels sized to the viewport. Float
// storage keeps repeated decay from quantizing small values to zero and lets
// additive injection exceed 1.0 without clipping.
//
// A [Pair] holds two buffers in a two-slot array plus a parity index:
//
//	slot[parity]   -> Current  (write target of this frame)
//	slot[parity^1] -> Previous (read source of this frame)
//
// Swap flips the parity after every pass. Buffer identities never move between
// slots, so ownership and release stay unambiguous.
//
// # Pass
//
// The accumulation pass is a pure per-texel function, [Texel]:
//
//	out = previous * Decay + contribution(feeds, time, config)
//
// A contribution injected at frame 0 has weight Decay^n at frame n. Feeds
// outside the unit square contribute nothing. [Pass.Run] applies the kernel to
// every texel with rows spread across a worker pool.
//
// # Accumulators
//
// [CPU] combines a Pair and a Pass. The gpu package provides the same contract
// backed by WebGPU compute, falling back to CPU when no adapter is available.
package accum
