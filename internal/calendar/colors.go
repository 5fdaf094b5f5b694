package calendar

import (
	"fmt"
	"regexp"

	"github.com/cespare/xxhash/v2"
)

// Color is a #RRGGBB value used to paint a user's task dots.
type Color string

// NoColor is returned for users missing from a ColorMap. It is never drawn.
const NoColor Color = ""

// PaletteSize is the number of colors a palette must hold.
const PaletteSize = 8

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Valid reports whether c is a #RRGGBB value.
func (c Color) Valid() bool {
	return colorPattern.MatchString(string(c))
}

// Palette is the ordered set of colors users are mapped onto.
type Palette []Color

// DefaultPalette returns the eight built-in user colors.
func DefaultPalette() Palette {
	return Palette{
		"#E53935", // red
		"#1E88E5", // blue
		"#43A047", // green
		"#FB8C00", // orange
		"#8E24AA", // purple
		"#00ACC1", // cyan
		"#FDD835", // yellow
		"#6D4C41", // brown
	}
}

// ParsePalette converts raw config values into a Palette, rejecting anything
// that is not exactly PaletteSize valid colors.
func ParsePalette(values []string) (Palette, error) {
	if len(values) != PaletteSize {
		return nil, fmt.Errorf("%w: palette needs %d colors, got %d", ErrInvalidArgument, PaletteSize, len(values))
	}
	p := make(Palette, 0, len(values))
	for i, v := range values {
		c := Color(v)
		if !c.Valid() {
			return nil, fmt.Errorf("%w: palette entry %d %q is not #RRGGBB", ErrInvalidArgument, i, v)
		}
		p = append(p, c)
	}
	return p, nil
}

// ColorFor maps a user id onto the palette. The empty id maps to the first
// entry. Other ids are hashed with XXH64 (seed 0), masked to a non-negative
// value and reduced modulo the palette size, so the mapping is the same on
// every run and platform. Distinct ids may share a color.
func (p Palette) ColorFor(userID string) Color {
	if len(p) == 0 {
		return NoColor
	}
	if userID == "" {
		return p[0]
	}
	h := xxhash.Sum64String(userID) & 0x7FFF_FFFF_FFFF_FFFF
	return p[h%uint64(len(p))]
}

// BuildColorMap assigns a color to every non-empty id.
func (p Palette) BuildColorMap(userIDs []string) ColorMap {
	m := make(ColorMap, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		m[id] = p.ColorFor(id)
	}
	return m
}

// ColorMap maps user ids to their color for one loaded task set.
type ColorMap map[string]Color

// Lookup returns the user's color or NoColor.
func (m ColorMap) Lookup(userID string) Color {
	if c, ok := m[userID]; ok {
		return c
	}
	return NoColor
}
