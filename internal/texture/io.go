package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	// Registered decoders.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// MaxSide bounds the larger side of a decoded texture. Larger images are
// downscaled on load; sampling a 4K map per pixel buys nothing visible.
const MaxSide = 2048

// ErrEmptyData is returned when decoding zero bytes.
var ErrEmptyData = errors.New("texture: empty data")

// Load decodes the image at path.
func Load(path string) (*Texture, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("texture: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// FromBytes decodes an encoded image held in memory.
func FromBytes(data []byte) (*Texture, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads PNG, JPEG, BMP, TIFF or WebP data.
func Decode(r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	return FromImage(img)
}

// FromImage converts img to a Texture, downscaling it first when its larger
// side exceeds MaxSide. A nil or empty image returns ErrInvalidSize.
func FromImage(img image.Image) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidSize)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	if w > MaxSide || h > MaxSide {
		scale := float64(MaxSide) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img, b = dst, dst.Bounds()
	}

	tex := &Texture{width: w, height: h, pix: make([]float32, w*h*4)}

	// Fast path for NRGBA, which is what PNG normal maps usually decode to.
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		for y := range h {
			row := n.Pix[y*n.Stride : y*n.Stride+w*4]
			dst := tex.pix[y*w*4 : (y+1)*w*4]
			for i, v := range row {
				dst[i] = float32(v) / 255
			}
		}
		return tex, nil
	}

	for y := range h {
		for x := range w {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*w + x) * 4
			if a == 0 {
				continue
			}
			// Un-premultiply; material maps are straight color.
			tex.pix[i] = float32(r) / float32(a)
			tex.pix[i+1] = float32(g) / float32(a)
			tex.pix[i+2] = float32(bl) / float32(a)
			tex.pix[i+3] = float32(a) / 0xffff
		}
	}
	return tex, nil
}
