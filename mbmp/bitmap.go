// Package mbmp implements the MBMP managed bitmap: a dense in-memory ARGB
// raster together with its binary frame codec.
//
// A frame is an 8 byte header ("MBMP", big-endian uint16 width and height)
// followed by width*height pixels of 4 bytes each, in alpha, red, green, blue
// order, row-major. Standalone files wrap the whole frame in gzip. Embedded
// frames are written uncompressed so they can be appended to a larger stream.
package mbmp

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

const bytesPerPixel = 4

// Bitmap is a fixed-size ARGB raster. The dimensions never change after
// construction; only pixel contents are mutable.
//
// Bitmap is not safe for concurrent mutation.
type Bitmap struct {
	width  int
	height int
	// pix holds 4 bytes per pixel (A, R, G, B). The pixel at (x, y) starts
	// at pix[(width*y+x)*4].
	pix []uint8
}

var _ image.Image = (*Bitmap)(nil)

// New returns a fully transparent bitmap of the given size. It panics if
// either dimension is negative.
func New(width, height int) *Bitmap {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("mbmp: negative dimensions %dx%d", width, height))
	}

	return &Bitmap{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*bytesPerPixel),
	}
}

func (b *Bitmap) Width() int  { return b.width }
func (b *Bitmap) Height() int { return b.height }

// Pix returns the backing pixel storage. Writes through the returned slice
// are visible in b.
func (b *Bitmap) Pix() []uint8 { return b.pix }

func (b *Bitmap) offset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		panic(fmt.Sprintf("mbmp: pixel (%d,%d) out of range for %dx%d bitmap", x, y, b.width, b.height))
	}
	return (b.width*y + x) * bytesPerPixel
}

// Pixel returns the color at (x, y). It panics if the coordinate lies
// outside the bitmap.
func (b *Bitmap) Pixel(x, y int) Color {
	i := b.offset(x, y)
	s := b.pix[i : i+bytesPerPixel : i+bytesPerPixel]
	return Color{A: s[0], R: s[1], G: s[2], B: s[3]}
}

// SetPixel overwrites the color at (x, y). It panics if the coordinate lies
// outside the bitmap.
func (b *Bitmap) SetPixel(x, y int, c Color) {
	i := b.offset(x, y)
	s := b.pix[i : i+bytesPerPixel : i+bytesPerPixel]
	s[0], s[1], s[2], s[3] = c.A, c.R, c.G, c.B
}

func (b *Bitmap) ColorModel() color.Model { return ColorModel }

func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// At implements image.Image. Unlike Pixel it returns the zero Color for
// coordinates outside the bitmap.
func (b *Bitmap) At(x, y int) color.Color {
	if !image.Pt(x, y).In(b.Bounds()) {
		return Color{}
	}
	return b.Pixel(x, y)
}

// Set implements draw.Image. Coordinates outside the bitmap are ignored.
func (b *Bitmap) Set(x, y int, c color.Color) {
	if !image.Pt(x, y).In(b.Bounds()) {
		return
	}
	b.SetPixel(x, y, ColorModel.Convert(c).(Color))
}

// Fill sets every pixel to c.
func (b *Bitmap) Fill(c Color) {
	for i := 0; i < len(b.pix); i += bytesPerPixel {
		b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = c.A, c.R, c.G, c.B
	}
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{
		width:  b.width,
		height: b.height,
		pix:    bytes.Clone(b.pix),
	}
}

// Equal reports whether b and o have the same dimensions and pixels.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.width == o.width && b.height == o.height && bytes.Equal(b.pix, o.pix)
}

// Rectangle copies the pixels inside r into a new bitmap whose origin is
// r.Min. The result shares no storage with b. It panics if r is not fully
// inside b.
func (b *Bitmap) Rectangle(r image.Rectangle) *Bitmap {
	dst := New(r.Dx(), r.Dy())
	if r.Empty() {
		return dst
	}
	if !r.In(b.Bounds()) {
		panic(fmt.Sprintf("mbmp: rectangle %v out of range for %dx%d bitmap", r, b.width, b.height))
	}

	rowLen := dst.width * bytesPerPixel
	for ry := range dst.height {
		si := b.offset(r.Min.X, r.Min.Y+ry)
		di := ry * rowLen
		copy(dst.pix[di:di+rowLen], b.pix[si:si+rowLen])
	}
	return dst
}

// DrawBitmap overwrites pixels of b with src placed so that src's origin
// lands on at. Every channel is replaced, alpha included; nothing is
// blended. Source pixels that fall outside b are skipped.
func (b *Bitmap) DrawBitmap(src *Bitmap, at image.Point) {
	r := src.Bounds().Add(at).Intersect(b.Bounds())
	if r.Empty() {
		return
	}

	rowLen := r.Dx() * bytesPerPixel
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := src.offset(r.Min.X-at.X, y-at.Y)
		di := b.offset(r.Min.X, y)
		copy(b.pix[di:di+rowLen], src.pix[si:si+rowLen])
	}
}
