package convert

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// parseHexToColor reads #RGB, #RGBA, #RRGGBB or #RRGGBBAA.
func parseHexToColor(s string) (color.Color, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, fmt.Errorf("invalid color %q: missing leading #", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("could not read color %q: %w", s, err)
	}

	var c color.NRGBA
	switch len(hex) {
	case 3:
		c = color.NRGBA{R: uint8(v>>8) & 0xf, G: uint8(v>>4) & 0xf, B: uint8(v) & 0xf, A: 0xf}
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A |= c.A << 4
	case 4:
		c = color.NRGBA{R: uint8(v>>12) & 0xf, G: uint8(v>>8) & 0xf, B: uint8(v>>4) & 0xf, A: uint8(v) & 0xf}
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A |= c.A << 4
	case 6:
		c = color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
	case 8:
		c = color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	default:
		return nil, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA", s)
	}

	return c, nil
}
