package pointer

import (
	"math"

	"github.com/gogpu/trailbg/accum"
)

// Policy chooses which feeds reach the accumulation pass each frame.
type Policy int

const (
	// Cycle feeds a single point per frame, rotating through the pointer and
	// the live trails as time advances.
	Cycle Policy = iota

	// Blend feeds the pointer and every live trail in the same frame.
	Blend
)

// String returns the policy name as accepted by ParsePolicy.
func (p Policy) String() string {
	switch p {
	case Cycle:
		return "cycle"
	case Blend:
		return "blend"
	default:
		return "unknown"
	}
}

// ParsePolicy maps "cycle" or "blend" to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "cycle", "":
		return Cycle, true
	case "blend":
		return Blend, true
	}
	return Cycle, false
}

// Primary returns the point that stands for the user: the pointer when it is
// strictly inside the viewport, otherwise the oldest live trail, otherwise
// accum.Offscreen.
func (s *Source) Primary(ptr accum.Point) accum.Point {
	if ptr.Inside() {
		return ptr
	}
	var buf [MaxTrails]Trail
	if active := s.Active(buf[:0]); len(active) > 0 {
		return active[0].Pos
	}
	return accum.Offscreen
}

// Select returns the single feed for this frame under the Cycle policy.
//
// With n live trails the frame index is floor(time*100) mod (n+1); index 0
// selects Primary and index i selects the i-th live trail in insertion order.
// Selection must run before Advance so it sees this frame's positions.
func (s *Source) Select(ptr accum.Point, time float64) accum.Point {
	var buf [MaxTrails]Trail
	active := s.Active(buf[:0])

	idx := int(math.Floor(time*100)) % (len(active) + 1)
	if idx < 0 {
		idx += len(active) + 1
	}
	if idx == 0 {
		return s.Primary(ptr)
	}
	return active[idx-1].Pos
}

// Feeds appends every feed for this frame under the Blend policy: the
// pointer when it is strictly inside, then every live trail.
func (s *Source) Feeds(ptr accum.Point, dst []accum.Point) []accum.Point {
	if ptr.Inside() {
		dst = append(dst, ptr)
	}
	var buf [MaxTrails]Trail
	for _, t := range s.Active(buf[:0]) {
		dst = append(dst, t.Pos)
	}
	return dst
}

// Collect appends the feeds chosen by policy to dst.
func (s *Source) Collect(policy Policy, ptr accum.Point, time float64, dst []accum.Point) []accum.Point {
	if policy == Blend {
		return s.Feeds(ptr, dst)
	}
	return append(dst, s.Select(ptr, time))
}
