// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu provides a WebGPU compute implementation of the trail
// accumulator.
//
// The two accumulation buffers live in GPU storage buffers and are bound
// through two bind groups, one per parity, so a swap never touches the
// pipeline. After every dispatch the written buffer is copied to a staging
// buffer and read back into a host accum.Buffer, which the CPU composition
// pass samples.
//
// If no GPU is available the accumulator logs a warning and runs the
// software pass from package accum instead:
//
//	acc := gpu.New(0, 0)
//	r, err := trailbg.New(trailbg.WithAccumulator(acc))
package gpu

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trailbg"
	"github.com/gogpu/trailbg/accum"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// fenceTimeout bounds the wait for one accumulation dispatch.
const fenceTimeout = 5 * time.Second

// Accumulator runs the accumulation pass as a wgpu/hal compute shader.
// It implements trailbg.Accumulator and trailbg.DeviceProviderAware.
type Accumulator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
	uniform    hal.Buffer

	bufs     *buffers
	parity   int
	host     *accum.Buffer
	readback []byte

	width, height int
	maxDimension  int

	cpuFallback    *accum.CPU
	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
	closed         bool
}

var (
	_ trailbg.Accumulator         = (*Accumulator)(nil)
	_ trailbg.DeviceProviderAware = (*Accumulator)(nil)
)

// buffers is the size-dependent GPU state: the ping-pong storage pair, the
// readback staging buffer and one bind group per parity.
//
// groups[p] reads storage[p^1] and writes storage[p].
type buffers struct {
	storage [2]hal.Buffer
	staging hal.Buffer
	groups  [2]hal.BindGroup
	size    uint64
}

// New creates an accumulator on the first discrete or integrated GPU.
// workers and maxDimension configure the CPU fallback and the resize limit
// as in accum.NewCPU. New never fails: without a usable GPU it logs a
// warning and accumulates on the CPU.
func New(workers, maxDimension int) *Accumulator {
	a := newAccumulator(workers, maxDimension)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("gpu: init failed, using CPU fallback", "err", err)
		a.releaseDevice()
	}
	return a
}

func newAccumulator(workers, maxDimension int) *Accumulator {
	return &Accumulator{
		maxDimension: maxDimension,
		cpuFallback:  accum.NewCPU(workers, maxDimension),
	}
}

// Name reports "wgpu" while the compute pipeline is live and "cpu" when
// running the fallback.
func (a *Accumulator) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gpuReady {
		return "wgpu"
	}
	return a.cpuFallback.Name()
}

// Ready reports whether accumulation runs on the GPU.
func (a *Accumulator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// Parity returns which storage buffer the next dispatch writes.
func (a *Accumulator) Parity() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return a.cpuFallback.Pair().Parity()
	}
	return a.parity
}

// SetLogger forwards the trailbg logger to this package.
func (a *Accumulator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

func (a *Accumulator) limit() int {
	if a.maxDimension > 0 {
		return a.maxDimension
	}
	return accum.DefaultMaxDimension()
}

// Resize reallocates both storage buffers, the staging buffer and the host
// mirror. Resizing to the current size is a no-op. On error the previous
// buffers are kept.
func (a *Accumulator) Resize(width, height int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return accum.ErrNotAllocated
	}
	if !a.gpuReady {
		if err := a.cpuFallback.Resize(width, height); err != nil {
			return err
		}
		a.width, a.height = width, height
		return nil
	}

	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", accum.ErrInvalidSize, width, height)
	}
	if limit := a.limit(); width > limit || height > limit {
		return fmt.Errorf("%w: %dx%d (max %d)", accum.ErrBufferTooLarge, width, height, limit)
	}
	size := uint64(width) * uint64(height) * texelSize //nolint:gosec // both sides validated positive
	if maxSize := maxStorageSize(); size > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", accum.ErrBufferTooLarge, size, maxSize)
	}
	if a.bufs != nil && a.width == width && a.height == height {
		return nil
	}
	return a.allocate(width, height, size)
}

// maxStorageSize is the largest storage buffer that can be both created and
// bound to the accumulation pipeline.
func maxStorageSize() uint64 {
	l := gputypes.DefaultLimits()
	return min(l.MaxBufferSize, l.MaxStorageBufferBindingSize)
}

// allocate builds a fresh buffer set and swaps it in. Callers hold a.mu.
func (a *Accumulator) allocate(width, height int, size uint64) error {
	host, err := accum.NewBuffer(width, height)
	if err != nil {
		return err
	}
	bufs, err := a.createBuffers(size)
	if err != nil {
		return err
	}

	a.destroyBuffers()
	a.bufs = bufs
	a.host = host
	a.readback = make([]byte, size)
	a.width, a.height = width, height
	a.parity = 0
	a.zeroStorage()
	slogger().Debug("gpu: buffers resized", "width", width, "height", height, "bytes", size)
	return nil
}

func (a *Accumulator) createBuffers(size uint64) (*buffers, error) {
	b := &buffers{size: size}
	for i := range b.storage {
		buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("trail_storage_%d", i), Size: size,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			a.destroy(b)
			return nil, fmt.Errorf("create storage buffer %d: %w", i, err)
		}
		b.storage[i] = buf
	}

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		a.destroy(b)
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	b.staging = staging

	for p := range b.groups {
		bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: fmt.Sprintf("trail_bind_%d", p), Layout: a.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: a.uniform.NativeHandle(), Offset: 0, Size: paramsSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: b.storage[p^1].NativeHandle(), Offset: 0, Size: size}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: b.storage[p].NativeHandle(), Offset: 0, Size: size}},
			},
		})
		if err != nil {
			a.destroy(b)
			return nil, fmt.Errorf("create bind group %d: %w", p, err)
		}
		b.groups[p] = bg
	}
	return b, nil
}

func (a *Accumulator) destroy(b *buffers) {
	if b == nil || a.device == nil {
		return
	}
	for _, bg := range b.groups {
		if bg != nil {
			a.device.DestroyBindGroup(bg)
		}
	}
	if b.staging != nil {
		a.device.DestroyBuffer(b.staging)
	}
	for _, buf := range b.storage {
		if buf != nil {
			a.device.DestroyBuffer(buf)
		}
	}
}

func (a *Accumulator) destroyBuffers() {
	a.destroy(a.bufs)
	a.bufs = nil
}

// zeroStorage clears both storage buffers and the host mirror.
// Callers hold a.mu and a.bufs is set.
func (a *Accumulator) zeroStorage() {
	clear(a.readback)
	for _, buf := range a.bufs.storage {
		a.queue.WriteBuffer(buf, 0, a.readback)
	}
	a.host.Clear()
}

// Clear zeroes both buffers.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		a.cpuFallback.Clear()
		return
	}
	if a.bufs != nil {
		a.zeroStorage()
	}
}

// Accumulate dispatches one accumulation pass, reads the written buffer back
// into the host mirror, swaps parity and returns the mirror. The mirror is
// overwritten by the next call.
//
// A failed dispatch drops the GPU for good; this and every later frame run on
// the CPU, starting from empty buffers.
//
// At most MaxFeeds feeds inside the unit square are injected.
func (a *Accumulator) Accumulate(feeds []accum.Point, t float32, cfg accum.Config) (*accum.Buffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, accum.ErrNotAllocated
	}
	if !a.gpuReady {
		return a.cpuFallback.Accumulate(feeds, t, cfg)
	}
	if a.bufs == nil {
		return nil, accum.ErrNotAllocated
	}

	params, n := packParams(a.width, a.height, t, feeds, cfg)
	if dropped := countInside(feeds) - n; dropped > 0 {
		slogger().Debug("gpu: feeds dropped", "dropped", dropped)
	}
	a.queue.WriteBuffer(a.uniform, 0, params)

	if err := a.dispatch(); err != nil {
		slogger().Warn("gpu: accumulation dispatch failed", "err", err)
		a.fallBack()
		return a.cpuFallback.Accumulate(feeds, t, cfg)
	}
	unpackTexels(a.readback, a.host.Pix())
	a.parity ^= 1
	return a.host, nil
}

func countInside(feeds []accum.Point) int {
	n := 0
	for _, f := range feeds {
		if f.Inside() {
			n++
		}
	}
	return n
}

// dispatch encodes the compute pass plus the staging copy, submits them and
// waits for the readback. Callers hold a.mu.
func (a *Accumulator) dispatch() error {
	w, h := uint32(a.width), uint32(a.height) //nolint:gosec // bounded by max dimension
	b := a.bufs

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "trail_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("trail_accumulate"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "trail_pass"})
	computePass.SetPipeline(a.pipeline)
	computePass.SetBindGroup(0, b.groups[a.parity], nil)
	computePass.Dispatch((w+7)/8, (h+7)/8, 1)
	computePass.End()

	encoder.CopyBufferToBuffer(b.storage[a.parity], b.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: b.size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	if err := a.queue.ReadBuffer(b.staging, 0, a.readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}

// Close destroys every buffer and pipeline, then the device unless it is
// shared. Close is idempotent.
func (a *Accumulator) Close() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.releaseDevice()
	a.host = nil
	a.readback = nil
	a.cpuFallback.Close()
}

// releaseDevice tears down all GPU state. Callers hold a.mu.
func (a *Accumulator) releaseDevice() {
	a.destroyBuffers()
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// fallBack drops the GPU and sizes the CPU pair to the current viewport.
// Callers hold a.mu.
func (a *Accumulator) fallBack() {
	a.releaseDevice()
	if a.width > 0 && a.height > 0 {
		if err := a.cpuFallback.Resize(a.width, a.height); err != nil {
			slogger().Warn("gpu: resize CPU fallback", "err", err)
		}
		a.cpuFallback.Clear()
	}
	slogger().Warn("gpu: using CPU fallback")
}

// SetDeviceProvider switches the accumulator to a shared GPU device from an
// external provider, such as the gpucontext.DeviceProvider of a gogpu window.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
//
// Buffers are recreated at the current size; their contents are lost.
func (a *Accumulator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return accum.ErrNotAllocated
	}

	a.releaseDevice()
	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createPipelines(); err != nil {
		a.fallBack()
		return fmt.Errorf("gpu: create pipelines with shared device: %w", err)
	}
	a.gpuReady = true

	if a.width > 0 && a.height > 0 {
		size := uint64(a.width) * uint64(a.height) * texelSize //nolint:gosec // validated on Resize
		if err := a.allocate(a.width, a.height, size); err != nil {
			a.fallBack()
			return fmt.Errorf("gpu: reallocate buffers: %w", err)
		}
	}
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

func (a *Accumulator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipelines(); err != nil {
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.gpuReady = true
	slogger().Info("gpu: accumulator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *Accumulator) createPipelines() error {
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "trail_accumulate",
		Source: hal.ShaderSource{WGSL: accumulateShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile accumulate shader: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "trail_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "trail_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "trail_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline

	uniform, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "trail_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	a.uniform = uniform
	return nil
}

func (a *Accumulator) destroyPipelines() {
	if a.device == nil {
		return
	}
	if a.uniform != nil {
		a.device.DestroyBuffer(a.uniform)
		a.uniform = nil
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}
