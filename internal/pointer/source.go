// Package pointer tracks the pointer position and the autonomous trail points
// that wander across the viewport when the pointer is idle or outside.
package pointer

import (
	"math"
	"math/rand/v2"

	"github.com/gogpu/trailbg/accum"
)

const (
	// MaxTrails is the number of trail points alive at once.
	MaxTrails = 3

	// SpawnInterval is the time between spawn attempts, in seconds.
	SpawnInterval = 2.0

	// Speed is the distance a trail moves per frame in normalized units.
	Speed = 0.005

	// LifeStep is the life a trail loses per frame.
	LifeStep = 0.001
)

// Normalize converts client pixel coordinates (origin top-left, Y down) to a
// normalized Point (origin bottom-left, Y up). No clamping is applied, so a
// pointer outside the viewport maps outside the unit square.
func Normalize(clientX, clientY, width, height float64) accum.Point {
	if width <= 0 || height <= 0 {
		return accum.Offscreen
	}
	return accum.Point{
		X: float32(clientX / width),
		Y: float32(1 - clientY/height),
	}
}

// Trail is an autonomous moving feed.
type Trail struct {
	Pos   accum.Point
	Angle float32 // heading in radians
	Life  float32 // 1 at spawn, removed at or below 0
}

type slot struct {
	trail Trail
	seq   uint64
	used  bool
}

// Source owns the trail set and the spawn clock.
//
// Trails live in a fixed arena of MaxTrails slots; Active reports them in
// insertion order. Source is not safe for concurrent use.
type Source struct {
	slots   [MaxTrails]slot
	nextSeq uint64
	elapsed float64
	rng     *rand.Rand
}

// NewSource creates a Source whose spawns draw from rng.
// A nil rng uses a fixed seed.
func NewSource(rng *rand.Rand) *Source {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Source{rng: rng}
}

// NewSeeded creates a Source with a PCG generator seeded from seed.
func NewSeeded(seed uint64) *Source {
	return NewSource(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Len returns the number of live trails.
func (s *Source) Len() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].used {
			n++
		}
	}
	return n
}

// Tick advances the spawn clock by dt seconds. Each time a full SpawnInterval
// elapses one trail is spawned, unless MaxTrails are already alive. It returns
// the number of trails spawned.
func (s *Source) Tick(dt float64) int {
	if dt <= 0 {
		return 0
	}
	s.elapsed += dt
	spawned := 0
	for s.elapsed >= SpawnInterval {
		s.elapsed -= SpawnInterval
		if s.Spawn() {
			spawned++
		}
	}
	return spawned
}

// Spawn adds a trail at a uniformly random position with a random heading.
// It reports false when the arena is full.
func (s *Source) Spawn() bool {
	for i := range s.slots {
		if s.slots[i].used {
			continue
		}
		s.slots[i] = slot{
			trail: Trail{
				Pos:   accum.Point{X: s.rng.Float32(), Y: s.rng.Float32()},
				Angle: s.rng.Float32() * 2 * math.Pi,
				Life:  1,
			},
			seq:  s.nextSeq,
			used: true,
		}
		s.nextSeq++
		return true
	}
	return false
}

// Add inserts t directly. It reports false when the arena is full.
func (s *Source) Add(t Trail) bool {
	for i := range s.slots {
		if !s.slots[i].used {
			s.slots[i] = slot{trail: t, seq: s.nextSeq, used: true}
			s.nextSeq++
			return true
		}
	}
	return false
}

// Advance moves every trail one frame along its heading, ages it, and removes
// trails whose life ran out or that left the open unit square.
func (s *Source) Advance() {
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.used {
			continue
		}
		sin, cos := math.Sincos(float64(sl.trail.Angle))
		sl.trail.Pos.X += float32(Speed * cos)
		sl.trail.Pos.Y += float32(Speed * sin)
		sl.trail.Life -= LifeStep
		if sl.trail.Life <= 0 || !sl.trail.Pos.Inside() {
			*sl = slot{}
		}
	}
}

// Active appends the live trails to dst in insertion order and returns it.
func (s *Source) Active(dst []Trail) []Trail {
	var order [MaxTrails]int
	n := 0
	for i := range s.slots {
		if !s.slots[i].used {
			continue
		}
		j := n
		for j > 0 && s.slots[order[j-1]].seq > s.slots[i].seq {
			order[j] = order[j-1]
			j--
		}
		order[j] = i
		n++
	}
	for _, i := range order[:n] {
		dst = append(dst, s.slots[i].trail)
	}
	return dst
}

// Reset removes every trail and restarts the spawn clock.
func (s *Source) Reset() {
	s.slots = [MaxTrails]slot{}
	s.elapsed = 0
}
