// Package texture holds the material maps of the surface plane: float RGBA
// textures with bilinear sampling, file decoding and procedural placeholders.
package texture

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSize is returned for non-positive texture dimensions.
var ErrInvalidSize = errors.New("texture: invalid size")

// Texture is an RGBA texture with channels stored as float32 in [0, 1].
// Row 0 is the top row of the source image; V grows upward, so v=1 samples row 0.
type Texture struct {
	width  int
	height int
	pix    []float32
}

// New allocates a transparent black texture.
func New(width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Texture{width: width, height: height, pix: make([]float32, width*height*4)}, nil
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Aspect returns width divided by height.
func (t *Texture) Aspect() float64 {
	return float64(t.width) / float64(t.height)
}

// Set stores an RGBA value at (x, y). Out-of-bounds writes are ignored.
func (t *Texture) Set(x, y int, c [4]float32) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	i := (y*t.width + x) * 4
	copy(t.pix[i:i+4], c[:])
}

// At returns the RGBA value at (x, y), clamping to the edge.
func (t *Texture) At(x, y int) [4]float32 {
	x = clamp(x, t.width-1)
	y = clamp(y, t.height-1)
	i := (y*t.width + x) * 4
	return [4]float32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Sample bilinearly interpolates at (u, v) with clamp-to-edge addressing.
// (0,0) is the bottom-left corner of the image.
func (t *Texture) Sample(u, v float64) [4]float32 {
	fx := u*float64(t.width) - 0.5
	fy := (1-v)*float64(t.height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	c00 := t.At(x0, y0)
	c10 := t.At(x0+1, y0)
	c01 := t.At(x0, y0+1)
	c11 := t.At(x0+1, y0+1)

	var out [4]float32
	for i := range 4 {
		top := c00[i] + (c10[i]-c00[i])*tx
		bot := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
