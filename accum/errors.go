// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package accum

import "errors"

var (
	// ErrInvalidSize is returned for non-positive buffer dimensions.
	ErrInvalidSize = errors.New("accum: invalid buffer size")

	// ErrBufferTooLarge is returned when a dimension exceeds the device limit.
	// There is no smaller-size fallback; callers must treat it as fatal.
	ErrBufferTooLarge = errors.New("accum: buffer exceeds device limits")

	// ErrAliasedBuffers is returned when a pass would read and write the same buffer.
	ErrAliasedBuffers = errors.New("accum: source and destination are the same buffer")

	// ErrSizeMismatch is returned when source and destination dimensions differ.
	ErrSizeMismatch = errors.New("accum: buffer dimensions differ")

	// ErrNotAllocated is returned when accumulating before the first resize.
	ErrNotAllocated = errors.New("accum: buffers not allocated")
)
