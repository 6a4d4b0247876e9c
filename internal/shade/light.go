package shade

import "math"

// Lighting holds the coefficients of the wrap-lit Blinn-Phong model.
type Lighting struct {
	Ambient  float64
	Diffuse  float64
	Specular float64
	Power    float64
	Wrap     float64
	Tint     [3]float64
}

// Diffuse returns the wrapped Lambert term: max((n·l + wrap) / (1 + wrap), 0).
// wrap 0 is plain Lambert.
func Diffuse(nDotL, wrap float64) float64 {
	return math.Max((nDotL+wrap)/(1+wrap), 0)
}

// Specular returns the Blinn-Phong highlight max(n·h, 0)^power.
func Specular(nDotH, power float64) float64 {
	return math.Pow(math.Max(nDotH, 0), power)
}

// Shade lights a surface point with normal n (unit length) and the given
// albedo, seen from eye. It returns linear RGB that may exceed 1.
func (l Lighting) Shade(pos, n, eye Vec3, albedo [3]float64) [3]float64 {
	toLight := Light.sub(pos).normalize()
	toEye := eye.sub(pos).normalize()
	half := toLight.add(toEye).normalize()

	diff := Diffuse(n.dot(toLight), l.Wrap)
	spec := Specular(n.dot(half), l.Power) * l.Specular
	k := l.Ambient + diff*l.Diffuse

	var out [3]float64
	for i := range 3 {
		out[i] = (albedo[i]*k + spec) * l.Tint[i]
	}
	return out
}
