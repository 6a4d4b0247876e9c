package trailbg

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/crazy3lf/colorconv"
)

// Color is a linear RGB tint with components in [0, 1].
type Color struct {
	R, G, B float64
}

// White is the neutral tint.
var White = Color{R: 1, G: 1, B: 1}

// RGB creates a color from components in [0, 1].
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// HSV creates a color from hue in degrees and saturation/value in [0, 1].
func HSV(h, s, v float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b, err := colorconv.HSVToRGB(h, clamp01(s), clamp01(v))
	if err != nil {
		return White
	}
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Hex parses "#RGB" or "#RRGGBB" (the leading '#' is optional).
func Hex(hex string) (Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return White, fmt.Errorf("trailbg: invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return White, fmt.Errorf("trailbg: invalid hex color %q: %w", hex, err)
	}
	return Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

// MustHex is like Hex but panics on malformed input. Use for constants.
func MustHex(hex string) Color {
	c, err := Hex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColor accepts a hex color or "hsv(h,s,v)".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(s, "hsv("); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		parts := strings.Split(inner, ",")
		if !ok || len(parts) != 3 {
			return White, fmt.Errorf("trailbg: invalid hsv color %q", s)
		}
		var f [3]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return White, fmt.Errorf("trailbg: invalid hsv color %q: %w", s, err)
			}
			f[i] = v
		}
		return HSV(f[0], f[1], f[2]), nil
	}
	return Hex(s)
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	n := c.Clamp()
	return fmt.Sprintf("#%02x%02x%02x", to8(n.R), to8(n.G), to8(n.B))
}

// Clamp returns c with every component clamped to [0, 1].
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// NRGBA converts the color to an opaque color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	n := c.Clamp()
	return color.NRGBA{R: to8(n.R), G: to8(n.G), B: to8(n.B), A: 255}
}

// MarshalJSON encodes the color as a hex string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// UnmarshalJSON accepts any string ParseColor accepts.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
