// Package theme resolves the light/dark/system preference to the theme
// that is actually rendered.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPreference = errors.New("invalid theme preference")

// Preference is what the user chose.
type Preference string

const (
	PreferenceLight  Preference = "light"
	PreferenceDark   Preference = "dark"
	PreferenceSystem Preference = "system"
)

// Resolved is the theme actually rendered. The OS color scheme uses the
// same values.
type Resolved string

const (
	Light Resolved = "light"
	Dark  Resolved = "dark"
)

// ParsePreference accepts light, dark or system in any case.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(strings.ToLower(strings.TrimSpace(s))); p {
	case PreferenceLight, PreferenceDark, PreferenceSystem:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreference, s)
}

// ParseScheme reads an OS color scheme. Anything but "dark" is light.
func ParseScheme(s string) Resolved {
	if strings.EqualFold(strings.TrimSpace(s), string(Dark)) {
		return Dark
	}
	return Light
}

// Resolve computes the rendered theme. It has no other inputs.
func Resolve(pref Preference, osScheme Resolved) Resolved {
	switch pref {
	case PreferenceLight:
		return Light
	case PreferenceDark:
		return Dark
	}
	if osScheme == Dark {
		return Dark
	}
	return Light
}
