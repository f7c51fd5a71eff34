package mbmp

import (
	"image/color"
)

// Color is a non-alpha-premultiplied 32-bit color. Channels are declared in
// the order they are stored on the wire: alpha, red, green, blue.
type Color struct {
	A uint8
	R uint8
	G uint8
	B uint8
}

func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// ColorModel converts any color.Color to a Color.
var ColorModel = color.ModelFunc(colorConvert)

func colorConvert(c color.Color) color.Color {
	switch v := c.(type) {
	case Color:
		return c
	case color.NRGBA:
		return Color{A: v.A, R: v.R, G: v.G, B: v.B}
	}

	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{A: n.A, R: n.R, G: n.G, B: n.B}
}
