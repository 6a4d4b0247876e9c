package trailbg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gogpu/trailbg/accum"
	"github.com/gogpu/trailbg/internal/shade"
)

// ErrUnknownParam is returned by Params.Set for a name it does not know.
var ErrUnknownParam = errors.New("trailbg: unknown parameter")

// Params is the full set of externally adjustable uniforms. Every field has a
// documented range; values outside it are clamped before use, never rejected.
type Params struct {
	// Accumulation pass.
	Decay              float64 `json:"decay"`               // [0, 1]
	TurbulenceScale    float64 `json:"turbulence_scale"`    // [1, 20]
	TurbulenceStrength float64 `json:"turbulence_strength"` // [0, 0.5]
	EdgeSharpness      float64 `json:"edge_sharpness"`      // [0.01, 0.3]
	SwirlStrength      float64 `json:"swirl"`               // [0, 0.1]

	// Composition pass.
	Displacement float64 `json:"displacement"` // [0, 0.2]
	Radius       float64 `json:"radius"`       // [0.1, 0.5]
	Ambient      float64 `json:"ambient"`      // [0, 1]
	Diffuse      float64 `json:"diffuse"`      // [0, 2]
	Specular     float64 `json:"specular"`     // [0, 2]
	Shininess    float64 `json:"shininess"`    // [1, 64]
	Wrap         float64 `json:"wrap"`         // [0, 1]
	ScaleX       float64 `json:"scale_x"`      // [0.1, 4]
	ScaleY       float64 `json:"scale_y"`      // [0.1, 4]
	Tint         Color   `json:"tint"`
}

// paramRange is the documented range of a named scalar.
type paramRange struct {
	lo, hi float64
	field  func(*Params) *float64
}

var paramRanges = map[string]paramRange{
	"decay":               {0, 1, func(p *Params) *float64 { return &p.Decay }},
	"persistence":         {0.9, 0.999, func(p *Params) *float64 { return &p.Decay }},
	"turbulence_scale":    {1, 20, func(p *Params) *float64 { return &p.TurbulenceScale }},
	"turbulence_strength": {0, 0.5, func(p *Params) *float64 { return &p.TurbulenceStrength }},
	"edge_sharpness":      {0.01, 0.3, func(p *Params) *float64 { return &p.EdgeSharpness }},
	"swirl":               {0, 0.1, func(p *Params) *float64 { return &p.SwirlStrength }},
	"displacement":        {0, 0.2, func(p *Params) *float64 { return &p.Displacement }},
	"radius":              {0.1, 0.5, func(p *Params) *float64 { return &p.Radius }},
	"ambient":             {0, 1, func(p *Params) *float64 { return &p.Ambient }},
	"diffuse":             {0, 2, func(p *Params) *float64 { return &p.Diffuse }},
	"specular":            {0, 2, func(p *Params) *float64 { return &p.Specular }},
	"shininess":           {1, 64, func(p *Params) *float64 { return &p.Shininess }},
	"wrap":                {0, 1, func(p *Params) *float64 { return &p.Wrap }},
	"scale_x":             {0.1, 4, func(p *Params) *float64 { return &p.ScaleX }},
	"scale_y":             {0.1, 4, func(p *Params) *float64 { return &p.ScaleY }},
}

// DefaultParams returns the default look: the soft lighting profile with the
// default accumulation uniforms.
func DefaultParams() Params {
	p := Params{
		Decay:              0.98,
		TurbulenceScale:    8,
		TurbulenceStrength: 0.15,
		EdgeSharpness:      0.15,
		SwirlStrength:      0.02,
		Displacement:       0.05,
		Radius:             0.15,
		ScaleX:             1,
		ScaleY:             1,
	}
	return p.WithLighting(ProfileSoft.Lighting())
}

// ParamNames returns every name accepted by Set, sorted.
func ParamNames() []string {
	names := make([]string, 0, len(paramRanges))
	for n := range paramRanges {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParamRange returns the documented range of a named parameter.
func ParamRange(name string) (lo, hi float64, ok bool) {
	r, ok := paramRanges[name]
	return r.lo, r.hi, ok
}

// Set assigns a named scalar, clamped to its range. "persistence" is a
// narrower view of Decay. Unknown names return ErrUnknownParam.
func (p *Params) Set(name string, value float64) error {
	r, ok := paramRanges[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	*r.field(p) = clamp(value, r.lo, r.hi)
	return nil
}

// Get returns a named scalar.
func (p Params) Get(name string) (float64, error) {
	r, ok := paramRanges[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return *r.field(&p), nil
}

// Clamp returns a copy with every field inside its documented range.
// Decay is clamped to [0, 1]; persistence only narrows values written through Set.
func (p Params) Clamp() Params {
	for name, r := range paramRanges {
		if name == "persistence" {
			continue
		}
		f := r.field(&p)
		*f = clamp(*f, r.lo, r.hi)
	}
	p.Tint = p.Tint.Clamp()
	return p
}

// WithLighting returns p with the lighting fields replaced by l.
func (p Params) WithLighting(l Lighting) Params {
	p.Ambient = l.Ambient
	p.Diffuse = l.Diffuse
	p.Specular = l.Specular
	p.Shininess = l.Power
	p.Wrap = l.Wrap
	p.Tint = l.Tint
	return p
}

// Accumulation returns the accumulation pass uniforms.
func (p Params) Accumulation() accum.Config {
	return accum.Config{
		Decay:              float32(p.Decay),
		TurbulenceScale:    float32(p.TurbulenceScale),
		TurbulenceStrength: float32(p.TurbulenceStrength),
		EdgeSharpness:      float32(p.EdgeSharpness),
		SwirlStrength:      float32(p.SwirlStrength),
	}
}

func (p Params) lighting() shade.Lighting {
	return shade.Lighting{
		Ambient:  p.Ambient,
		Diffuse:  p.Diffuse,
		Specular: p.Specular,
		Power:    p.Shininess,
		Wrap:     p.Wrap,
		Tint:     [3]float64{p.Tint.R, p.Tint.G, p.Tint.B},
	}
}

// LoadParams reads a JSON object of parameters from path. Missing fields keep
// their DefaultParams value; the result is clamped.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Params{}, fmt.Errorf("trailbg: read params: %w", err)
	}
	return ParseParams(data)
}

// ParseParams decodes JSON parameters on top of DefaultParams.
// An optional "profile" key applies a lighting profile before the other fields.
func ParseParams(data []byte) (Params, error) {
	var head struct {
		Profile string `json:"profile"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Params{}, fmt.Errorf("trailbg: parse params: %w", err)
	}
	p := DefaultParams()
	if head.Profile != "" {
		prof, err := ParseProfile(head.Profile)
		if err != nil {
			return Params{}, err
		}
		p = p.WithLighting(prof.Lighting())
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("trailbg: parse params: %w", err)
	}
	return p.Clamp(), nil
}
