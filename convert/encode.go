package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sync"

	"mbmp/mbmp"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

type encodeFunc func(w io.Writer, bm *mbmp.Bitmap) error

func encoderFor(format string, level int, background color.Color) (encodeFunc, error) {
	switch format {
	case "mbmp":
		return func(w io.Writer, bm *mbmp.Bitmap) error {
			return mbmp.EncodeStandalone(w, bm, mbmp.WithLevel(level))
		}, nil
	case "mbraw":
		return mbmp.EncodeEmbedded, nil
	case "png":
		return func(w io.Writer, bm *mbmp.Bitmap) error {
			enc := png.Encoder{
				CompressionLevel: png.BestCompression,
				BufferPool:       pngPool,
			}
			if err := enc.Encode(w, bm.ToImage()); err != nil {
				return fmt.Errorf("could not encode PNG: %w", err)
			}
			return nil
		}, nil
	case "bmp":
		return func(w io.Writer, bm *mbmp.Bitmap) error {
			if err := bmp.Encode(w, bm.ToImage()); err != nil {
				return fmt.Errorf("could not encode BMP: %w", err)
			}
			return nil
		}, nil
	case "tiff":
		return func(w io.Writer, bm *mbmp.Bitmap) error {
			if err := tiff.Encode(w, bm.ToImage(), &tiff.Options{Compression: tiff.Deflate}); err != nil {
				return fmt.Errorf("could not encode TIFF: %w", err)
			}
			return nil
		}, nil
	case "gif":
		return func(w io.Writer, bm *mbmp.Bitmap) error {
			if err := gif.Encode(w, bm.ToImage(), nil); err != nil {
				return fmt.Errorf("could not encode GIF: %w", err)
			}
			return nil
		}, nil
	case "jpeg":
		return func(w io.Writer, bm *mbmp.Bitmap) error {
			if err := jpeg.Encode(w, flatten(bm, background), &jpeg.Options{Quality: 100}); err != nil {
				return fmt.Errorf("could not encode JPEG: %w", err)
			}
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// flatten composes bm over an opaque background for formats without an
// alpha channel.
func flatten(bm *mbmp.Bitmap, background color.Color) *image.RGBA {
	r := bm.Bounds()
	dest := image.NewRGBA(r)
	draw.Draw(dest, r, image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(dest, r, bm.ToImage(), r.Min, draw.Over)
	return dest
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
