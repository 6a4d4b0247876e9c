// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

// Package gpu is built without GPU support; Accumulator always runs the
// software pass.
package gpu

import (
	"errors"

	"github.com/gogpu/trailbg/accum"
)

// Accumulator is the CPU accumulator under the nogpu build tag.
type Accumulator struct {
	*accum.CPU
}

// New returns a CPU accumulator.
func New(workers, maxDimension int) *Accumulator {
	return &Accumulator{CPU: accum.NewCPU(workers, maxDimension)}
}

// Ready always reports false.
func (a *Accumulator) Ready() bool { return false }

// SetDeviceProvider always fails: the binary was built with -tags nogpu.
func (a *Accumulator) SetDeviceProvider(any) error {
	return errors.New("gpu: built with nogpu tag")
}
