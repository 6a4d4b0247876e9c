package trailbg

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/trailbg/accum"
)

// Accumulator runs the accumulation pass over a ping-pong buffer pair.
//
// The default is the software accumulator from package accum. The gpu
// package provides a WebGPU compute implementation:
//
//	acc := gpu.New(0, 0)
//	r, err := trailbg.New(trailbg.WithAccumulator(acc))
type Accumulator interface {
	// Name identifies the implementation in logs (e.g. "cpu", "wgpu").
	Name() string

	// Resize reallocates both buffers, discarding their contents.
	// Resizing to the current size is a no-op. Errors are fatal to the renderer.
	Resize(width, height int) error

	// Clear zeroes both buffers.
	Clear()

	// Accumulate reads the previous buffer, writes the current one, swaps,
	// and returns the buffer just written. The buffer stays valid until the
	// next call.
	Accumulate(feeds []accum.Point, time float32, cfg accum.Config) (*accum.Buffer, error)

	// Close releases every buffer and pipeline. Close must be idempotent.
	Close()
}

// DeviceProviderAware is an optional interface for accumulators that can share
// a GPU device with an external provider (e.g., a gogpu window).
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var _ Accumulator = (*accum.CPU)(nil)

// SetDeviceProvider passes a device provider, typically a gogpu window's
// GPUContextProvider, to the accumulator so it shares that window's device.
// If the accumulator doesn't support device sharing, this is a no-op.
//
// The accumulation buffers are recreated on the new device and start empty.
// Call it from the rendering goroutine.
func (r *Renderer) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return ErrClosed
	}
	dpa, ok := r.acc.(DeviceProviderAware)
	if !ok {
		return nil
	}
	if err := dpa.SetDeviceProvider(provider); err != nil {
		return err
	}
	r.trail = nil
	Logger().Info("trailbg: accumulator device shared", "accumulator", r.acc.Name())
	return nil
}
