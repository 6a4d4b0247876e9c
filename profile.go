package trailbg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned by ParseProfile.
var ErrUnknownProfile = errors.New("trailbg: unknown profile")

// Lighting is the bundle of coefficients a Profile sets.
type Lighting struct {
	Ambient  float64
	Diffuse  float64
	Specular float64
	Power    float64
	Wrap     float64
	Tint     Color
}

// Profile is a named lighting preset.
type Profile int

const (
	// ProfileSoft is the default: wrapped diffuse, broad highlight.
	ProfileSoft Profile = iota

	// ProfileOriginal is plain Lambert with a tight highlight.
	ProfileOriginal

	// ProfileTinted adds a red tint and a strong highlight.
	ProfileTinted

	profileCount
)

var profileLighting = [profileCount]Lighting{
	ProfileSoft:     {Ambient: 0.5, Diffuse: 0.7, Specular: 0.3, Power: 16, Wrap: 0.5, Tint: White},
	ProfileOriginal: {Ambient: 0.3, Diffuse: 1.0, Specular: 0.5, Power: 32, Wrap: 0.0, Tint: White},
	ProfileTinted:   {Ambient: 0.4, Diffuse: 0.6, Specular: 0.8, Power: 24, Wrap: 0.2, Tint: MustHex("#ec3249")},
}

// Profiles returns every profile in cycling order.
func Profiles() []Profile {
	return []Profile{ProfileSoft, ProfileOriginal, ProfileTinted}
}

// Lighting returns the immutable lighting bundle of the profile.
// Unknown values return the soft profile.
func (p Profile) Lighting() Lighting {
	if p < 0 || p >= profileCount {
		return profileLighting[ProfileSoft]
	}
	return profileLighting[p]
}

// Next returns the profile after p, wrapping around.
func (p Profile) Next() Profile {
	return (p + 1) % profileCount
}

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileSoft:
		return "soft"
	case ProfileOriginal:
		return "original"
	case ProfileTinted:
		return "tinted"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// ParseProfile maps a name to a Profile. "purple" is accepted for tinted.
func ParseProfile(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "soft", "":
		return ProfileSoft, nil
	case "original":
		return ProfileOriginal, nil
	case "tinted", "purple":
		return ProfileTinted, nil
	}
	return ProfileSoft, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}
