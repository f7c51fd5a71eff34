// Package bundle stores several bitmaps in one stream as consecutive
// embedded frames, optionally gzip-compressed as a whole.
package bundle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mbmp/fileop"
	"mbmp/mbmp"

	"github.com/klauspost/compress/gzip"
)

// Write appends every bitmap to w as an embedded frame.
func Write(w io.Writer, bitmaps []*mbmp.Bitmap) error {
	for i, bm := range bitmaps {
		if err := bm.AppendTo(w); err != nil {
			return fmt.Errorf("could not write frame %d: %w", i, err)
		}
	}
	return nil
}

// Read decodes consecutive embedded frames until r is exhausted. A gzip
// wrapped stream is decompressed first.
func Read(r io.Reader, opts ...mbmp.DecodeOption) ([]*mbmp.Bitmap, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if form, _ := mbmp.Sniff(br); form == mbmp.Standalone {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("could not open compressed stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var res []*mbmp.Bitmap
	for {
		bm, err := mbmp.DecodeEmbedded(src, opts...)
		if err == io.EOF {
			return res, nil
		} else if err != nil {
			return res, fmt.Errorf("could not read frame %d: %w", len(res), err)
		}
		res = append(res, bm)
	}
}

type PackCmd struct {
	Out      string   `arg:"" help:"Bundle file to create"`
	Inputs   []string `arg:"" help:"Images to pack, in order" type:"existingfile"`
	Compress bool     `help:"gzip the whole bundle"`
	Strict   bool     `help:"Reject MBMP input that lacks the MBMP signature"`
}

func (c *PackCmd) Run() error {
	bitmaps := make([]*mbmp.Bitmap, 0, len(c.Inputs))
	for _, name := range c.Inputs {
		bm, format, err := fileop.Load(name, c.Strict)
		if err != nil {
			return err
		}
		slog.Debug("packing", "file", name, "format", format, "width", bm.Width(), "height", bm.Height())
		bitmaps = append(bitmaps, bm)
	}

	err := fileop.WriteAtomic(c.Out, func(w io.Writer) error {
		if !c.Compress {
			return Write(w, bitmaps)
		}

		zw := gzip.NewWriter(w)
		if err := Write(zw, bitmaps); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return err
	}

	slog.Info("packed", "bundle", c.Out, "frames", len(bitmaps), "compressed", c.Compress)
	return nil
}

type UnpackCmd struct {
	In     string `arg:"" help:"Bundle file to split" type:"existingfile"`
	Dest   string `help:"Destination folder for the extracted MBMP files" default:"."`
	Strict bool   `help:"Reject frames that lack the MBMP signature"`
}

func (c *UnpackCmd) Run() error {
	f, err := os.Open(c.In)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", c.In, err)
	}
	defer f.Close()

	var opts []mbmp.DecodeOption
	if c.Strict {
		opts = append(opts, mbmp.Strict())
	}
	bitmaps, err := Read(f, opts...)
	if err != nil {
		return fmt.Errorf("could not read bundle %q: %w", c.In, err)
	}

	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	base := strings.TrimSuffix(filepath.Base(c.In), filepath.Ext(c.In))
	for i, bm := range bitmaps {
		dest := filepath.Join(c.Dest, fmt.Sprintf("%s-%03d.mbmp", base, i))
		if err := fileop.WriteAtomic(dest, func(w io.Writer) error {
			return mbmp.EncodeStandalone(w, bm)
		}); err != nil {
			return err
		}
	}

	slog.Info("unpacked", "bundle", c.In, "frames", len(bitmaps), "dest", c.Dest)
	return nil
}
