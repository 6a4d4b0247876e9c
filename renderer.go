package trailbg

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/trailbg/accum"
	"github.com/gogpu/trailbg/internal/pointer"
	"github.com/gogpu/trailbg/internal/shade"
	"github.com/gogpu/trailbg/internal/texture"
)

// TimeStep is how far the shader clock advances per frame.
const TimeStep = 0.01

var (
	// ErrClosed is returned when using a Renderer after Close.
	ErrClosed = errors.New("trailbg: renderer closed")

	// ErrInvalidSize is returned by Resize for non-positive dimensions.
	ErrInvalidSize = errors.New("trailbg: invalid viewport size")

	// ErrInvalidOption is returned by New for out-of-range options.
	ErrInvalidOption = errors.New("trailbg: invalid option")
)

// Trail is an autonomous feed point, as reported by Renderer.Trails.
type Trail = pointer.Trail

// material is a pending hand-off of decoded maps. Nil fields keep the
// current map.
type material struct {
	normal *texture.Texture
	albedo *texture.Texture
}

// Renderer is the frame driver. Each Tick runs one full cycle:
//
//	resize -> assets -> time -> feed selection -> trails -> accumulate -> swap -> compose
//
// Tick, Close and the frame accessors belong to one rendering goroutine.
// PointerMove, Resize, SetParams, SetParam, ApplyProfile and LoadMaterial may
// be called from any goroutine; their effect is picked up at the start of the
// next Tick, with the latest value winning.
type Renderer struct {
	acc      Accumulator
	composer *shade.Composer
	source   *pointer.Source
	policy   FeedPolicy

	// Cross-goroutine single-slot hand-offs.
	pointer  atomic.Pointer[accum.Point]
	viewport atomic.Uint64 // latest requested size, packed w<<32 | h
	resize   atomic.Uint64 // pending size, 0 when none
	params   atomic.Pointer[Params]
	pending  atomic.Pointer[material]

	mu          sync.Mutex
	closed      atomic.Bool
	fatal       error
	width       int
	height      int
	time        float64
	frames      uint64
	frame       *Pixmap
	trail       *accum.Buffer
	feeds       []accum.Point
	gates       []accum.Point
	normal      *texture.Texture
	albedo      *texture.Texture
	planeAspect float64
}

// New creates a Renderer. Call Resize before the first Tick.
func New(opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 0 {
		return nil, fmt.Errorf("%w: workers %d", ErrInvalidOption, o.workers)
	}
	if o.maxDimension < 0 {
		return nil, fmt.Errorf("%w: max dimension %d", ErrInvalidOption, o.maxDimension)
	}

	acc := o.accumulator
	if acc == nil {
		acc = accum.NewCPU(o.workers, o.maxDimension)
	}

	r := &Renderer{
		acc:      acc,
		composer: shade.NewComposer(o.workers),
		source:   pointer.NewSource(o.rng),
		policy:   o.policy,
		frame:    NewPixmap(0, 0),
		feeds:    make([]accum.Point, 0, pointer.MaxTrails+1),
		gates:    make([]accum.Point, 0, pointer.MaxTrails+1),
	}
	off := accum.Offscreen
	r.pointer.Store(&off)
	p := o.params.Clamp()
	r.params.Store(&p)

	live.Store(acc, struct{}{})
	propagateLogger(acc, Logger())
	Logger().Info("trailbg: renderer created", "accumulator", acc.Name(), "feed", r.policy.String())
	return r, nil
}

func packSize(w, h int) uint64 { return uint64(uint32(w))<<32 | uint64(uint32(h)) }

func unpackSize(v uint64) (w, h int) { return int(v >> 32), int(uint32(v)) }

// Resize records a new viewport size. The buffers are reallocated at the
// start of the next Tick, before the accumulation pass runs.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	v := packSize(width, height)
	r.viewport.Store(v)
	r.resize.Store(v)
	return nil
}

// PointerMove records a pointer position in client pixels (origin top-left)
// against the latest viewport size.
func (r *Renderer) PointerMove(clientX, clientY float64) {
	w, h := unpackSize(r.viewport.Load())
	r.SetPointer(pointer.Normalize(clientX, clientY, float64(w), float64(h)))
}

// SetPointer records a pointer position in normalized coordinates.
// Positions outside the open unit square disable the pointer.
func (r *Renderer) SetPointer(p accum.Point) {
	r.pointer.Store(&p)
}

// PointerLeave disables the pointer until the next move.
func (r *Renderer) PointerLeave() {
	r.SetPointer(accum.Offscreen)
}

// Pointer returns the latest recorded pointer position.
func (r *Renderer) Pointer() accum.Point {
	return *r.pointer.Load()
}

// Params returns a copy of the live parameters.
func (r *Renderer) Params() Params {
	return *r.params.Load()
}

// SetParams replaces every parameter. Values are clamped.
func (r *Renderer) SetParams(p Params) {
	c := p.Clamp()
	r.params.Store(&c)
}

// SetParam assigns one named parameter. Values are clamped.
func (r *Renderer) SetParam(name string, value float64) error {
	for {
		old := r.params.Load()
		next := *old
		if err := next.Set(name, value); err != nil {
			return err
		}
		if r.params.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

// ApplyProfile replaces the lighting parameters with the profile's bundle in
// one step.
func (r *Renderer) ApplyProfile(p Profile) {
	for {
		old := r.params.Load()
		next := old.WithLighting(p.Lighting())
		if r.params.CompareAndSwap(old, &next) {
			Logger().Debug("trailbg: profile applied", "profile", p.String())
			return
		}
	}
}

// setMaterial queues decoded maps for the next frame, merging with any
// hand-off not yet applied.
func (r *Renderer) setMaterial(m material) {
	for {
		old := r.pending.Load()
		next := m
		if old != nil {
			if next.normal == nil {
				next.normal = old.normal
			}
			if next.albedo == nil {
				next.albedo = old.albedo
			}
		}
		if r.pending.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Tick runs one frame. dt is the wall-clock time since the previous frame in
// seconds; it drives trail spawning only. The shader clock advances by
// TimeStep per frame.
//
// Tick is a no-op until the first Resize. A failed buffer reallocation is
// fatal: Tick returns the error and keeps returning it.
func (r *Renderer) Tick(dt float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return ErrClosed
	}
	if r.fatal != nil {
		return r.fatal
	}

	if v := r.resize.Swap(0); v != 0 {
		w, h := unpackSize(v)
		if err := r.acc.Resize(w, h); err != nil {
			r.fatal = fmt.Errorf("trailbg: resize to %dx%d: %w", w, h, err)
			Logger().Error("trailbg: buffer reallocation failed", "width", w, "height", h, "err", err)
			return r.fatal
		}
		r.width, r.height = w, h
		r.frame.resize(w, h)
		r.trail = nil
		Logger().Debug("trailbg: viewport resized", "width", w, "height", h)
	}
	if r.width == 0 {
		return nil
	}

	if m := r.pending.Swap(nil); m != nil {
		if m.normal != nil {
			r.normal = m.normal
			r.planeAspect = m.normal.Aspect()
		}
		if m.albedo != nil {
			r.albedo = m.albedo
		}
	}

	r.time += TimeStep
	r.source.Tick(dt)

	params := r.Params()
	ptr := r.Pointer()
	r.feeds = r.source.Collect(r.policy, ptr, r.time, r.feeds[:0])
	// Displacement follows every live point regardless of which one was fed.
	r.gates = r.source.Feeds(ptr, r.gates[:0])
	r.source.Advance()

	trail, err := r.acc.Accumulate(r.feeds, float32(r.time), params.Accumulation())
	if err != nil {
		return fmt.Errorf("trailbg: accumulate: %w", err)
	}
	r.trail = trail

	err = r.composer.Shade(r.frame.data, r.frame.Stride(), r.width, r.height, shade.Input{
		Trail:        trail,
		Gates:        r.gates,
		Normal:       r.normal,
		Albedo:       r.albedo,
		PlaneAspect:  r.planeAspect,
		Displacement: params.Displacement,
		Radius:       params.Radius,
		ScaleX:       params.ScaleX,
		ScaleY:       params.ScaleY,
		Lighting:     params.lighting(),
	})
	if err != nil {
		return fmt.Errorf("trailbg: compose: %w", err)
	}
	r.frames++
	return nil
}

// Clear wipes the trail buffers and removes every autonomous trail.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return
	}
	r.acc.Clear()
	r.source.Reset()
}

// Frame returns the last composed frame. It is overwritten by the next Tick.
func (r *Renderer) Frame() *Pixmap { return r.frame }

// Trail returns the accumulation buffer written by the last Tick, or nil.
func (r *Renderer) Trail() *accum.Buffer { return r.trail }

// Feed returns the first point injected by the last Tick, or accum.Offscreen.
func (r *Renderer) Feed() accum.Point {
	if len(r.feeds) == 0 {
		return accum.Offscreen
	}
	return r.feeds[0]
}

// Feeds returns every point injected by the last Tick.
func (r *Renderer) Feeds() []accum.Point {
	return append([]accum.Point(nil), r.feeds...)
}

// Gates returns the points the last Tick centred displacement on: the
// pointer when inside plus every trail live at that frame.
func (r *Renderer) Gates() []accum.Point {
	return append([]accum.Point(nil), r.gates...)
}

// Trails returns the live autonomous trails in insertion order.
func (r *Renderer) Trails() []Trail { return r.source.Active(nil) }

// Size returns the applied viewport size.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Time returns the shader clock.
func (r *Renderer) Time() float64 { return r.time }

// Frames returns the number of frames rendered.
func (r *Renderer) Frames() uint64 { return r.frames }

// Accumulator returns the accumulation backend name.
func (r *Renderer) Accumulator() string { return r.acc.Name() }

// Close releases the buffers, pipelines and worker goroutines.
// Close is idempotent and safe on a partially constructed Renderer.
func (r *Renderer) Close() {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.acc != nil {
		live.Delete(r.acc)
		r.acc.Close()
	}
	if r.composer != nil {
		r.composer.Close()
	}
	r.trail = nil
	r.normal, r.albedo = nil, nil
	Logger().Info("trailbg: renderer closed", "frames", r.frames)
}
