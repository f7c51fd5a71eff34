package mbmp

import (
	"image"

	"golang.org/x/image/draw"
)

// FromImage copies every pixel of src into a new bitmap. The result's
// origin corresponds to src.Bounds().Min.
func FromImage(src image.Image) *Bitmap {
	sr := src.Bounds()

	switch s := src.(type) {
	case *Bitmap:
		return s.Clone()
	case *image.NRGBA:
		b := New(sr.Dx(), sr.Dy())
		for y := range b.height {
			for x := range b.width {
				c := s.NRGBAAt(sr.Min.X+x, sr.Min.Y+y)
				b.SetPixel(x, y, Color{A: c.A, R: c.R, G: c.G, B: c.B})
			}
		}
		return b
	}

	b := New(sr.Dx(), sr.Dy())
	for y := range b.height {
		for x := range b.width {
			b.SetPixel(x, y, ColorModel.Convert(src.At(sr.Min.X+x, sr.Min.Y+y)).(Color))
		}
	}
	return b
}

// ToImage returns an *image.NRGBA holding an exact copy of b's pixels.
func (b *Bitmap) ToImage() *image.NRGBA {
	dst := image.NewNRGBA(b.Bounds())
	for i := 0; i < len(b.pix); i += bytesPerPixel {
		dst.Pix[i+0] = b.pix[i+1]
		dst.Pix[i+1] = b.pix[i+2]
		dst.Pix[i+2] = b.pix[i+3]
		dst.Pix[i+3] = b.pix[i+0]
	}
	return dst
}

// CopyTo replaces the pixels of dst with those of b, b's origin landing on
// dst.Bounds().Min. Colors go through dst's color model, so destinations
// storing premultiplied alpha lose the color of fully transparent pixels.
func (b *Bitmap) CopyTo(dst draw.Image) {
	dr := dst.Bounds()
	draw.Draw(dst, image.Rectangle{Min: dr.Min, Max: dr.Min.Add(b.Bounds().Max)}, b.ToImage(), image.Point{}, draw.Src)
}
