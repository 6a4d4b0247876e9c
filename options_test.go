package trailbg

import (
	"math/rand/v2"
	"testing"

	"github.com/gogpu/trailbg/accum"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.accumulator != nil {
		t.Error("default accumulator should be nil (CPU created lazily)")
	}
	if o.policy != FeedCycle {
		t.Errorf("default policy = %v, want cycle", o.policy)
	}
	if o.params != DefaultParams() {
		t.Error("default params mismatch")
	}
}

func TestWithAccumulator(t *testing.T) {
	acc := accum.NewCPU(1, 0)
	r, err := New(WithAccumulator(acc))
	if err != nil {
		t.Fatal(err)
	}
	_ = r.Resize(4, 4)
	if err := r.Tick(frameDT); err != nil {
		t.Fatal(err)
	}
	if r.Trail() == nil || r.Trail() != acc.Pair().Previous() {
		t.Error("renderer did not use the injected accumulator")
	}
	r.Close()
	if _, err := acc.Accumulate(nil, 0, accum.DefaultConfig()); err == nil {
		t.Error("renderer Close should close the injected accumulator")
	}
}

func TestWithParamsClamps(t *testing.T) {
	p := DefaultParams()
	p.Radius = 3
	var o options
	WithParams(p)(&o)
	if o.params.Radius != 0.5 {
		t.Errorf("Radius = %v, want 0.5", o.params.Radius)
	}
}

func TestWithSeedIsDeterministic(t *testing.T) {
	feedsAfterSpawn := func(opt Option) []accum.Point {
		r, err := New(WithWorkers(1), WithFeedPolicy(FeedBlend), opt)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		_ = r.Resize(8, 8)
		if err := r.Tick(2); err != nil {
			t.Fatal(err)
		}
		return r.Feeds()
	}
	a := feedsAfterSpawn(WithSeed(99))
	b := feedsAfterSpawn(WithSeed(99))
	c := feedsAfterSpawn(WithRand(rand.New(rand.NewPCG(1, 1))))
	if len(a) != 1 || len(b) != 1 || a[0] != b[0] {
		t.Errorf("same seed gave %v and %v", a, b)
	}
	if len(c) == 1 && c[0] == a[0] {
		t.Error("different source produced an identical trail")
	}
}

func TestParseFeedPolicy(t *testing.T) {
	if p, ok := ParseFeedPolicy("blend"); !ok || p != FeedBlend {
		t.Errorf("ParseFeedPolicy(blend) = %v, %v", p, ok)
	}
	if _, ok := ParseFeedPolicy("nope"); ok {
		t.Error("accepted unknown policy")
	}
}
