package mbmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
)

const (
	magic     = "MBMP"
	headerLen = 8

	// MaxDimension is the largest width or height a frame can carry.
	MaxDimension = math.MaxUint16
)

var (
	// ErrTooLarge is returned when encoding a bitmap wider or taller than
	// MaxDimension. Frames are never written with truncated dimensions.
	ErrTooLarge = fmt.Errorf("mbmp: dimensions exceed %d", MaxDimension)
	// ErrBadMagic is returned by strict decoding when a frame does not start
	// with the MBMP signature.
	ErrBadMagic = errors.New("mbmp: missing MBMP signature")
	// ErrTruncated is returned when a frame ends before its declared pixel
	// data. It wraps io.ErrUnexpectedEOF.
	ErrTruncated = fmt.Errorf("mbmp: truncated frame: %w", io.ErrUnexpectedEOF)
)

type decodeConfig struct {
	strict bool
}

// DecodeOption tunes frame decoding.
type DecodeOption func(*decodeConfig)

// Strict makes decoding reject frames whose first four bytes are not
// "MBMP". By default the signature is written but not checked on read.
func Strict() DecodeOption {
	return func(c *decodeConfig) {
		c.strict = true
	}
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	var c decodeConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

func checkDimensions(b *Bitmap) error {
	if b.width > MaxDimension || b.height > MaxDimension {
		return fmt.Errorf("could not encode %dx%d bitmap: %w", b.width, b.height, ErrTooLarge)
	}
	return nil
}

func appendHeader(dst []byte, width, height int) []byte {
	dst = append(dst, magic...)
	dst = binary.BigEndian.AppendUint16(dst, uint16(width))
	return binary.BigEndian.AppendUint16(dst, uint16(height))
}

func parseHeader(hdr []byte, c decodeConfig) (image.Config, error) {
	if c.strict && string(hdr[:4]) != magic {
		return image.Config{}, fmt.Errorf("unexpected signature %q: %w", hdr[:4], ErrBadMagic)
	}

	return image.Config{
		ColorModel: ColorModel,
		Width:      int(binary.BigEndian.Uint16(hdr[4:6])),
		Height:     int(binary.BigEndian.Uint16(hdr[6:8])),
	}, nil
}

// EncodeEmbedded writes b to w as an uncompressed frame. Nothing precedes
// or follows the frame, so several frames may be appended to one stream.
func EncodeEmbedded(w io.Writer, b *Bitmap) error {
	if err := checkDimensions(b); err != nil {
		return err
	}

	if err := writeBytes(w, appendHeader(make([]byte, 0, headerLen), b.width, b.height)); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	if err := writeBytes(w, b.pix); err != nil {
		return fmt.Errorf("could not write %dx%d pixels: %w", b.width, b.height, err)
	}

	return nil
}

// AppendTo writes b to w as an uncompressed frame.
func (b *Bitmap) AppendTo(w io.Writer) error {
	return EncodeEmbedded(w, b)
}

// DecodeEmbedded reads one uncompressed frame from the current position of
// r, consuming exactly the frame's bytes. It returns io.EOF, unwrapped, if r
// is already exhausted; a frame cut short anywhere else yields ErrTruncated.
func DecodeEmbedded(r io.Reader, opts ...DecodeOption) (*Bitmap, error) {
	c := newDecodeConfig(opts)

	cfg, err := readHeader(r, c)
	if err != nil {
		return nil, err
	}

	pix, err := readPixels(r, cfg.Width*cfg.Height*bytesPerPixel)
	if err != nil {
		return nil, fmt.Errorf("could not read %dx%d pixels: %w", cfg.Width, cfg.Height, err)
	}

	return &Bitmap{width: cfg.Width, height: cfg.Height, pix: pix}, nil
}

// maxPrealloc caps the pixel memory reserved before any pixel bytes have
// arrived. Past it the buffer grows with the data actually read.
const maxPrealloc = 4 << 20

func readPixels(r io.Reader, n int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(n, maxPrealloc))

	copied, err := io.CopyN(&buf, r, int64(n))
	if copied < int64(n) {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeConfig reads only the header of an uncompressed frame.
func DecodeConfig(r io.Reader) (image.Config, error) {
	return readHeader(r, decodeConfig{})
}

func readHeader(r io.Reader, c decodeConfig) (image.Config, error) {
	hdr := make([]byte, headerLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		switch {
		case err == io.EOF:
			return image.Config{}, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return image.Config{}, fmt.Errorf("could not read header: %w", ErrTruncated)
		default:
			return image.Config{}, fmt.Errorf("could not read header: %w", err)
		}
	}

	return parseHeader(hdr, c)
}

func writeBytes(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	} else if n != len(b) {
		return fmt.Errorf("wrote only %d/%d bytes: %w", n, len(b), io.ErrShortWrite)
	}

	return nil
}
