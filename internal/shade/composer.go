package shade

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/trailbg/accum"
	"github.com/gogpu/trailbg/internal/parallel"
	"github.com/gogpu/trailbg/internal/texture"
)

// NormalGain scales how far the trail gradient tilts the surface normal
// relative to how far it displaces the texture coordinate.
const NormalGain = 8.0

// ErrShortBuffer is returned when the destination cannot hold the frame.
var ErrShortBuffer = errors.New("shade: destination buffer too small")

// Input is everything the composition pass reads for one frame.
type Input struct {
	// Trail is the accumulation buffer written this frame. May be nil.
	Trail *accum.Buffer

	// Gates are the points displacement is centred on: the pointer when it
	// is inside plus every live trail. Points outside the viewport are ignored.
	Gates []accum.Point

	// Normal is a tangent-space normal map; Albedo is the base color.
	// Nil maps fall back to a flat normal and white albedo.
	Normal *texture.Texture
	Albedo *texture.Texture

	// PlaneAspect is the unscaled plane width/height; zero fills the viewport.
	PlaneAspect float64

	Displacement float64
	Radius       float64
	ScaleX       float64
	ScaleY       float64

	Lighting Lighting
}

// Composer runs the composition pass.
type Composer struct {
	pool *parallel.Pool
}

// NewComposer creates a composer with the given number of row workers.
// workers <= 0 uses GOMAXPROCS; 1 runs on the calling goroutine.
func NewComposer(workers int) *Composer {
	if workers == 1 {
		return &Composer{}
	}
	return &Composer{pool: parallel.NewPool(workers)}
}

// Close stops the composer's workers. Close is idempotent.
func (c *Composer) Close() {
	if c == nil {
		return
	}
	c.pool.Close()
}

// Shade renders a width x height RGBA8 frame into dst, row 0 at the top.
// Pixels that miss the plane are transparent black.
func (c *Composer) Shade(dst []uint8, stride, width, height int, in Input) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if stride < width*4 || len(dst) < (height-1)*stride+width*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d (stride %d)", ErrShortBuffer, len(dst), width, height, stride)
	}

	normal, albedo := in.Normal, in.Albedo
	if normal == nil {
		normal = texture.FlatNormal()
	}
	if albedo == nil {
		albedo = texture.Solid([4]float32{1, 1, 1, 1})
	}

	viewAspect := float64(width) / float64(height)
	plane := Fit(viewAspect, in.PlaneAspect, in.ScaleX, in.ScaleY)

	live := make([]accum.Point, 0, len(in.Gates))
	for _, f := range in.Gates {
		if f.Inside() {
			live = append(live, f)
		}
	}

	c.pool.Rows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := dst[y*stride : y*stride+width*4]
			sy := 1 - (float64(y)+0.5)/float64(height)
			for x := range width {
				sx := (float64(x) + 0.5) / float64(width)
				px := shadePixel(sx, sy, viewAspect, plane, live, normal, albedo, &in)
				copy(row[x*4:x*4+4], px[:])
			}
		}
	})
	return nil
}

// TrailIntensity maps a raw accumulated value to [0, 1).
func TrailIntensity(raw float32) float64 {
	return 1 - math.Exp(-math.Max(float64(raw), 0))
}

// Gate returns the displacement weight for a screen point: 1 at the nearest
// gate point, falling to 0 at radius. With no points it is 0.
func Gate(sx, sy, aspect, radius float64, points []accum.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	best := math.Inf(1)
	for _, f := range points {
		d := math.Hypot((sx-float64(f.X))*aspect, sy-float64(f.Y))
		best = math.Min(best, d)
	}
	return 1 - float64(accum.Smoothstep(0, float32(radius), float32(best)))
}

// gradient returns the central-difference gradient of the mapped trail
// intensity around texel (tx, ty), in intensity per texel.
func gradient(b *accum.Buffer, tx, ty int) (gx, gy float64) {
	gx = (TrailIntensity(b.Intensity(tx+1, ty)) - TrailIntensity(b.Intensity(tx-1, ty))) / 2
	gy = (TrailIntensity(b.Intensity(tx, ty+1)) - TrailIntensity(b.Intensity(tx, ty-1))) / 2
	return gx, gy
}

func shadePixel(sx, sy, aspect float64, plane Plane, gates []accum.Point,
	normal, albedo *texture.Texture, in *Input,
) [4]uint8 {
	var s, gx, gy float64
	if in.Trail != nil && in.Displacement > 0 {
		tx, ty := in.Trail.NearestTexel(float32(sx), float32(sy))
		intensity := TrailIntensity(in.Trail.Intensity(tx, ty))
		if g := Gate(sx, sy, aspect, in.Radius, gates); g > 0 && intensity > 0 {
			s = in.Displacement * intensity * g
			gx, gy = gradient(in.Trail, tx, ty)
		}
	}

	pos := plane.World(sx-gx*s, sy-gy*s)
	u, v, ok := plane.UV(pos)
	if !ok {
		return [4]uint8{}
	}

	nx, ny, nz := texture.DecodeNormal(normal.Sample(u, v))
	n := Vec3{nx + gx*s*NormalGain, ny + gy*s*NormalGain, nz}.normalize()

	a := albedo.Sample(u, v)
	rgb := in.Lighting.Shade(pos, n, plane.Camera, [3]float64{float64(a[0]), float64(a[1]), float64(a[2])})
	return [4]uint8{toByte(rgb[0]), toByte(rgb[1]), toByte(rgb[2]), 255}
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
