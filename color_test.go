package trailbg

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ffffff", White},
		{"000000", Color{}},
		{"#f00", Color{R: 1}},
		{"#ec3249", Color{R: 236.0 / 255, G: 50.0 / 255, B: 73.0 / 255}},
	}
	for _, tt := range tests {
		got, err := Hex(tt.in)
		if err != nil {
			t.Fatalf("Hex(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHex_Invalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#gggggg", "#1234567"} {
		if _, err := Hex(in); err == nil {
			t.Errorf("Hex(%q) accepted", in)
		}
	}
}

func TestColor_HexRoundTrip(t *testing.T) {
	c := MustHex("#ec3249")
	if got := c.Hex(); got != "#ec3249" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestHSV(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    Color
	}{
		{0, 1, 1, Color{R: 1}},
		{120, 1, 1, Color{G: 1}},
		{240, 1, 1, Color{B: 1}},
		{360 + 120, 1, 1, Color{G: 1}},
		{0, 0, 1, White},
	}
	for _, tt := range tests {
		got := HSV(tt.h, tt.s, tt.v)
		if math.Abs(got.R-tt.want.R) > 0.01 || math.Abs(got.G-tt.want.G) > 0.01 || math.Abs(got.B-tt.want.B) > 0.01 {
			t.Errorf("HSV(%v, %v, %v) = %v, want %v", tt.h, tt.s, tt.v, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("hsv(240, 1, 1)")
	if err != nil {
		t.Fatal(err)
	}
	if c.B < 0.99 || c.R > 0.01 {
		t.Errorf("hsv blue = %v", c)
	}
	for _, in := range []string{"hsv(1,2)", "hsv(a,b,c)", "hsv(1,1,1"} {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("ParseColor(%q) accepted", in)
		}
	}
}

func TestColor_JSON(t *testing.T) {
	data, err := json.Marshal(MustHex("#102030"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"#102030"` {
		t.Errorf("Marshal = %s", data)
	}
	var c Color
	if err := json.Unmarshal([]byte(`"hsv(0,1,1)"`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Hex() != "#ff0000" {
		t.Errorf("Unmarshal hsv = %v", c.Hex())
	}
	if err := json.Unmarshal([]byte(`42`), &c); err == nil {
		t.Error("expected error for non-string color")
	}
}

func TestColor_NRGBA(t *testing.T) {
	got := Color{R: 2, G: 0.5, B: -1}.NRGBA()
	if got.R != 255 || got.G != 128 || got.B != 0 || got.A != 255 {
		t.Errorf("NRGBA = %+v", got)
	}
}

// =============================================================================
// Profile Tests
// =============================================================================

func TestProfiles(t *testing.T) {
	tests := []struct {
		p    Profile
		want Lighting
	}{
		{ProfileOriginal, Lighting{Ambient: 0.3, Diffuse: 1.0, Specular: 0.5, Power: 32, Wrap: 0, Tint: White}},
		{ProfileSoft, Lighting{Ambient: 0.5, Diffuse: 0.7, Specular: 0.3, Power: 16, Wrap: 0.5, Tint: White}},
		{ProfileTinted, Lighting{Ambient: 0.4, Diffuse: 0.6, Specular: 0.8, Power: 24, Wrap: 0.2, Tint: MustHex("#ec3249")}},
	}
	for _, tt := range tests {
		if got := tt.p.Lighting(); got != tt.want {
			t.Errorf("%v.Lighting() = %+v, want %+v", tt.p, got, tt.want)
		}
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		in   string
		want Profile
	}{
		{"soft", ProfileSoft},
		{"Original", ProfileOriginal},
		{"tinted", ProfileTinted},
		{"purple", ProfileTinted},
		{"", ProfileSoft},
	}
	for _, tt := range tests {
		got, err := ParseProfile(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseProfile(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseProfile("neon"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("err = %v, want ErrUnknownProfile", err)
	}
}

func TestProfile_NextCycles(t *testing.T) {
	p := ProfileSoft
	seen := map[Profile]bool{}
	for range len(Profiles()) {
		seen[p] = true
		p = p.Next()
	}
	if p != ProfileSoft || len(seen) != len(Profiles()) {
		t.Errorf("Next did not cycle through every profile: %v", seen)
	}
}
