// Package shade implements the composition pass: it maps each output pixel
// onto the surface plane, displaces it by the trail buffer and lights it with
// a single point light.
package shade

import "math"

const (
	// PlaneHeight is the world-space height of the unscaled plane.
	PlaneHeight = 1.5

	// FOV is the vertical field of view of the camera, in degrees.
	FOV = 45.0
)

// Vec3 is a small 3-component vector used by the lighting model.
type Vec3 struct{ X, Y, Z float64 }

func (a Vec3) add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) normalize() Vec3 {
	l := math.Sqrt(a.dot(a))
	if l == 0 {
		return Vec3{0, 0, 1}
	}
	return a.scale(1 / l)
}

// Light is the fixed point light position.
var Light = Vec3{2, 2, 2}

// CameraDistance returns the distance at which a FOV-degree camera exactly
// fits PlaneHeight vertically.
func CameraDistance() float64 {
	return (PlaneHeight / 2) / math.Tan(FOV/2*math.Pi/180)
}

// Plane describes how the surface plane sits in the viewport.
type Plane struct {
	// Width and Height are the world-space extents of the plane.
	Width, Height float64

	// ViewAspect is the viewport width divided by its height.
	ViewAspect float64

	// Camera is the eye position; the camera looks down -Z at the origin.
	Camera Vec3
}

// Fit returns the plane for a viewport of the given aspect.
//
// planeAspect is the width/height of the plane before scaling, usually the
// normal map's aspect; zero stretches the plane to fill the viewport.
// scaleX and scaleY scale the plane around its center.
func Fit(viewAspect, planeAspect, scaleX, scaleY float64) Plane {
	if viewAspect <= 0 {
		viewAspect = 1
	}
	if planeAspect <= 0 {
		planeAspect = viewAspect
	}
	return Plane{
		Width:      PlaneHeight * planeAspect * scaleX,
		Height:     PlaneHeight * scaleY,
		ViewAspect: viewAspect,
		Camera:     Vec3{0, 0, CameraDistance()},
	}
}

// World maps a screen coordinate (0..1, Y up) to the point where the view ray
// meets the z=0 plane. The plane is parallel to the image plane, so the
// perspective projection reduces to a scale.
func (p Plane) World(sx, sy float64) Vec3 {
	return Vec3{
		X: (sx - 0.5) * PlaneHeight * p.ViewAspect,
		Y: (sy - 0.5) * PlaneHeight,
	}
}

// UV maps a world point on z=0 to plane texture coordinates. ok is false
// when the point misses the plane.
func (p Plane) UV(w Vec3) (u, v float64, ok bool) {
	if p.Width <= 0 || p.Height <= 0 {
		return 0, 0, false
	}
	u = w.X/p.Width + 0.5
	v = w.Y/p.Height + 0.5
	return u, v, u >= 0 && u <= 1 && v >= 0 && v <= 1
}
