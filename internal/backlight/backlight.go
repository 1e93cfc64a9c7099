// Package backlight drives the RGB backlight that tints the display per mode.
package backlight

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit-per-channel colour.
type Color struct {
	R, G, B uint8
}

// Black switches all channels off.
var Black = Color{}

// String renders the colour as "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses "#rrggbb" (the leading '#' is optional).
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Backlight sets the backlight colour.
type Backlight interface {
	SetColor(c Color) error
	Close() error
}

// Nop is a Backlight for boards without one.
type Nop struct{}

// SetColor does nothing.
func (Nop) SetColor(Color) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
