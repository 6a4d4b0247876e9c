package trailbg

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// Params Tests
// =============================================================================

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name string
		want float64
	}{
		{"decay", 0.98},
		{"displacement", 0.05},
		{"radius", 0.15},
		{"ambient", 0.5},
		{"diffuse", 0.7},
		{"specular", 0.3},
		{"shininess", 16},
		{"wrap", 0.5},
		{"turbulence_scale", 8},
		{"turbulence_strength", 0.15},
		{"edge_sharpness", 0.15},
		{"swirl", 0.02},
		{"scale_x", 1},
		{"scale_y", 1},
	}
	for _, tt := range tests {
		got, err := p.Get(tt.name)
		if err != nil {
			t.Fatalf("Get(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
	if p.Tint != White {
		t.Errorf("default tint = %v, want white", p.Tint)
	}
	if p.Clamp() != p {
		t.Error("defaults are outside their own ranges")
	}
}

func TestParams_SetClamps(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"decay", 1.5, 1},
		{"decay", -0.2, 0},
		{"persistence", 0.5, 0.9},
		{"persistence", 1, 0.999},
		{"displacement", 0.3, 0.2},
		{"radius", 0, 0.1},
		{"specular", 3, 2},
		{"shininess", 0, 1},
		{"shininess", 100, 64},
		{"wrap", 2, 1},
		{"turbulence_scale", 0, 1},
		{"turbulence_strength", 1, 0.5},
		{"edge_sharpness", 0, 0.01},
		{"swirl", 1, 0.1},
		{"scale_x", 10, 4},
		{"scale_y", 0, 0.1},
		{"ambient", math.NaN(), 0},
	}
	for _, tt := range tests {
		p := DefaultParams()
		if err := p.Set(tt.name, tt.value); err != nil {
			t.Fatalf("Set(%q): %v", tt.name, err)
		}
		got, _ := p.Get(tt.name)
		if tt.name == "persistence" {
			got = p.Decay
		}
		if got != tt.want {
			t.Errorf("Set(%q, %v) -> %v, want %v", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestParams_SetUnknown(t *testing.T) {
	p := DefaultParams()
	if err := p.Set("gravity", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}
	if _, err := p.Get("gravity"); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("Get err = %v, want ErrUnknownParam", err)
	}
}

func TestParams_Clamp(t *testing.T) {
	p := Params{Decay: 2, Radius: 9, Shininess: -1, ScaleX: 0, Tint: Color{R: 2, G: -1, B: 0.5}}
	c := p.Clamp()
	if c.Decay != 1 || c.Radius != 0.5 || c.Shininess != 1 || c.ScaleX != 0.1 {
		t.Errorf("Clamp = %+v", c)
	}
	if c.Tint != (Color{R: 1, G: 0, B: 0.5}) {
		t.Errorf("tint = %v", c.Tint)
	}
	// Decay below the persistence floor is legal.
	if got := (Params{Decay: 0.5}).Clamp().Decay; got != 0.5 {
		t.Errorf("Decay 0.5 clamped to %v", got)
	}
}

func TestParamNames(t *testing.T) {
	names := ParamNames()
	if len(names) != 15 {
		t.Errorf("len(ParamNames) = %d, want 15", len(names))
	}
	for _, n := range names {
		if _, _, ok := ParamRange(n); !ok {
			t.Errorf("ParamRange(%q) missing", n)
		}
	}
}

func TestParams_Accumulation(t *testing.T) {
	cfg := DefaultParams().Accumulation()
	if cfg.Decay != 0.98 || cfg.TurbulenceScale != 8 || cfg.EdgeSharpness != 0.15 {
		t.Errorf("Accumulation = %+v", cfg)
	}
}

// =============================================================================
// JSON Tests
// =============================================================================

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]byte(`{"decay": 0.9, "displacement": 5, "tint": "#ff0000"}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Decay != 0.9 {
		t.Errorf("decay = %v", p.Decay)
	}
	if p.Displacement != 0.2 {
		t.Errorf("displacement = %v, want clamped 0.2", p.Displacement)
	}
	if p.Tint != RGB(1, 0, 0) {
		t.Errorf("tint = %v", p.Tint)
	}
	if p.Radius != 0.15 {
		t.Errorf("missing field should keep default, radius = %v", p.Radius)
	}
}

func TestParseParams_Profile(t *testing.T) {
	p, err := ParseParams([]byte(`{"profile": "original", "ambient": 0.1}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Shininess != 32 || p.Wrap != 0 {
		t.Errorf("profile not applied: %+v", p)
	}
	if p.Ambient != 0.1 {
		t.Errorf("explicit field should override profile, ambient = %v", p.Ambient)
	}

	if _, err := ParseParams([]byte(`{"profile": "neon"}`)); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("err = %v, want ErrUnknownProfile", err)
	}
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(path, []byte(`{"swirl": 0.05}`), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := LoadParams(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.SwirlStrength != 0.05 {
		t.Errorf("swirl = %v", p.SwirlStrength)
	}

	if _, err := LoadParams(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(bad, []byte(`{`), 0o600)
	if _, err := LoadParams(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
