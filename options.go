package trailbg

import (
	"math/rand/v2"

	"github.com/gogpu/trailbg/internal/pointer"
)

// FeedPolicy chooses which points are injected into the accumulation pass.
type FeedPolicy = pointer.Policy

const (
	// FeedCycle injects one point per frame, rotating through the pointer and
	// the live trails as time advances.
	FeedCycle FeedPolicy = pointer.Cycle

	// FeedBlend injects the pointer and every live trail in the same frame.
	FeedBlend FeedPolicy = pointer.Blend
)

// ParseFeedPolicy maps "cycle" or "blend" to a FeedPolicy.
func ParseFeedPolicy(s string) (FeedPolicy, bool) {
	return pointer.ParsePolicy(s)
}

// Option configures a Renderer during creation.
// Use functional options to customize Renderer behavior.
//
// Example:
//
//	// Default software renderer
//	r, err := trailbg.New()
//
//	// GPU accumulation with the tinted profile
//	r, err := trailbg.New(trailbg.WithAccumulator(acc), trailbg.WithProfile(trailbg.ProfileTinted))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	accumulator  Accumulator
	workers      int
	rng          *rand.Rand
	policy       FeedPolicy
	maxDimension int
	params       Params
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		accumulator: nil, // accum.CPU is created if nil
		workers:     0,   // GOMAXPROCS
		policy:      FeedCycle,
		params:      DefaultParams(),
	}
}

// WithAccumulator sets the accumulation backend. The renderer takes ownership
// and closes it in Close.
func WithAccumulator(a Accumulator) Option {
	return func(o *options) {
		o.accumulator = a
	}
}

// WithWorkers sets how many goroutines share each pass. 1 renders on the
// calling goroutine; 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSeed makes trail spawning deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	}
}

// WithRand sets the random source used for trail spawning.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithFeedPolicy selects how the pointer and trails feed the accumulation pass.
func WithFeedPolicy(p FeedPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithMaxDimension bounds the buffer size accepted by Resize. Zero uses the
// WebGPU default texture limit. It applies to the default CPU accumulator only.
func WithMaxDimension(n int) Option {
	return func(o *options) {
		o.maxDimension = n
	}
}

// WithParams sets the initial parameters. They are clamped.
func WithParams(p Params) Option {
	return func(o *options) {
		o.params = p.Clamp()
	}
}

// WithProfile applies a lighting profile on top of the initial parameters.
func WithProfile(p Profile) Option {
	return func(o *options) {
		o.params = o.params.WithLighting(p.Lighting())
	}
}
