package mbmp

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/klauspost/compress/gzip"
)

type encodeConfig struct {
	level int
}

// EncodeOption tunes standalone encoding.
type EncodeOption func(*encodeConfig)

// WithLevel sets the gzip compression level, from gzip.HuffmanOnly to
// gzip.BestCompression.
func WithLevel(level int) EncodeOption {
	return func(c *encodeConfig) {
		c.level = level
	}
}

// Form tells the two MBMP encodings apart.
type Form int

const (
	// Embedded is the bare, uncompressed frame.
	Embedded Form = iota
	// Standalone is a frame wrapped in gzip, as stored in .mbmp files.
	Standalone
)

func (f Form) String() string {
	switch f {
	case Embedded:
		return "embedded"
	case Standalone:
		return "standalone"
	}
	return fmt.Sprintf("Form(%d)", int(f))
}

var gzipMagic = []byte{0x1f, 0x8b}

// EncodeStandalone writes b to w as a gzip-compressed frame.
func EncodeStandalone(w io.Writer, b *Bitmap, opts ...EncodeOption) error {
	c := encodeConfig{level: gzip.DefaultCompression}
	for _, o := range opts {
		o(&c)
	}

	if err := checkDimensions(b); err != nil {
		return err
	}

	zw, err := gzip.NewWriterLevel(w, c.level)
	if err != nil {
		return fmt.Errorf("could not start compression: %w", err)
	}

	if err := EncodeEmbedded(zw, b); err != nil {
		_ = zw.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not finish compression: %w", err)
	}
	return nil
}

// DecodeStandalone decompresses all of r and decodes the frame it holds.
// Bytes after the declared pixel data are ignored.
func DecodeStandalone(r io.Reader, opts ...DecodeOption) (*Bitmap, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open compressed stream: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("could not decompress frame: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("empty compressed payload: %w", ErrTruncated)
	}
	if len(data) >= headerLen {
		cfg, err := parseHeader(data[:headerLen], newDecodeConfig(opts))
		if err != nil {
			return nil, err
		}
		if want := headerLen + cfg.Width*cfg.Height*bytesPerPixel; len(data) < want {
			return nil, fmt.Errorf("could not read %dx%d pixels from %d bytes: %w", cfg.Width, cfg.Height, len(data), ErrTruncated)
		}
	}

	return DecodeEmbedded(bytes.NewReader(data), opts...)
}

// Sniff reports which form the buffered stream starts with, without
// consuming any input. ok is false when neither the gzip nor the MBMP
// signature is present.
func Sniff(br *bufio.Reader) (form Form, ok bool) {
	head, _ := br.Peek(len(magic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Standalone, true
	case string(head) == magic:
		return Embedded, true
	}
	return Embedded, false
}

// DecodeAuto decodes either form, choosing by signature. Input without a
// recognised signature is decoded as an embedded frame unless Strict is
// given.
func DecodeAuto(r io.Reader, opts ...DecodeOption) (*Bitmap, Form, error) {
	br := bufio.NewReader(r)
	form, ok := Sniff(br)
	if !ok && newDecodeConfig(opts).strict {
		return nil, form, ErrBadMagic
	}

	var (
		b   *Bitmap
		err error
	)
	if form == Standalone {
		b, err = DecodeStandalone(br, opts...)
	} else {
		b, err = DecodeEmbedded(br, opts...)
		if err == io.EOF {
			err = fmt.Errorf("empty input: %w", ErrTruncated)
		}
	}
	return b, form, err
}

// DecodeConfigAuto reads only the header of either form.
func DecodeConfigAuto(r io.Reader) (image.Config, Form, error) {
	br := bufio.NewReader(r)
	form, _ := Sniff(br)
	if form == Embedded {
		cfg, err := DecodeConfig(br)
		return cfg, form, err
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return image.Config{}, form, fmt.Errorf("could not open compressed stream: %w", err)
	}
	defer zr.Close()

	cfg, err := DecodeConfig(zr)
	return cfg, form, err
}
