package texture

// FlatNormal returns a 1x1 tangent-space normal map pointing straight out of
// the surface, encoded as (0.5, 0.5, 1).
func FlatNormal() *Texture {
	return Solid([4]float32{0.5, 0.5, 1, 1})
}

// Solid returns a 1x1 texture of color c.
func Solid(c [4]float32) *Texture {
	t := &Texture{width: 1, height: 1, pix: make([]float32, 4)}
	copy(t.pix, c[:])
	return t
}

// DecodeNormal converts a sampled normal-map texel to a tangent-space vector.
// The result is not normalized.
func DecodeNormal(c [4]float32) (x, y, z float64) {
	return float64(c[0])*2 - 1, float64(c[1])*2 - 1, float64(c[2])*2 - 1
}
