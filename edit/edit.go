// Package edit implements the single-file commands: info, crop and draw.
package edit

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"mbmp/fileop"
	"mbmp/mbmp"
)

// Output is where a command writes its result.
type Output struct {
	Embedded bool `help:"Write the uncompressed embedded frame instead of a gzip-compressed file"`
	Level    int  `help:"gzip compression level, -2 (Huffman only) to 9" default:"-1"`
	Strict   bool `help:"Reject MBMP input that lacks the MBMP signature"`
}

func (o Output) save(path string, bm *mbmp.Bitmap) error {
	return fileop.WriteAtomic(path, func(w io.Writer) error {
		if o.Embedded {
			return mbmp.EncodeEmbedded(w, bm)
		}
		return mbmp.EncodeStandalone(w, bm, mbmp.WithLevel(o.Level))
	})
}

type InfoCmd struct {
	Files []string `arg:"" help:"Image files to describe" type:"existingfile"`
}

// Run prints one line per file. Files that cannot be read are logged and
// counted.
func (c *InfoCmd) Run(out io.Writer) error {
	var errCount int
	for _, name := range c.Files {
		line, err := describe(name)
		if err != nil {
			errCount++
			slog.Error("could not read image", "file", name, "error", err)
			continue
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("could not write output: %w", err)
		}
	}

	if errCount > 0 {
		return fmt.Errorf("error processing %d files", errCount)
	}
	return nil
}

func describe(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var (
		cfg    image.Config
		format string
	)
	br := bufio.NewReader(f)
	if _, ok := mbmp.Sniff(br); ok {
		var form mbmp.Form
		cfg, form, err = mbmp.DecodeConfigAuto(br)
		format = fileop.FormatName(form)
	} else {
		cfg, format, err = image.DecodeConfig(br)
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s\t%s\t%dx%d\t%d pixels", name, format, cfg.Width, cfg.Height, cfg.Width*cfg.Height), nil
}

type CropCmd struct {
	In   string `arg:"" help:"Source image" type:"existingfile"`
	Out  string `arg:"" help:"Destination MBMP file"`
	Rect string `help:"Rectangle to extract as x,y,width,height" required:""`
	Output
}

func (c *CropCmd) Run() error {
	r, err := parseRect(c.Rect)
	if err != nil {
		return err
	}

	src, _, err := fileop.Load(c.In, c.Strict)
	if err != nil {
		return err
	}
	if !r.In(src.Bounds()) {
		return fmt.Errorf("rectangle %s is outside the %dx%d source", c.Rect, src.Width(), src.Height())
	}

	if err := c.save(c.Out, src.Rectangle(r)); err != nil {
		return err
	}
	slog.Info("cropped", "from", c.In, "to", c.Out, "rect", r)
	return nil
}

type DrawCmd struct {
	Dest string `arg:"" help:"Image drawn onto" type:"existingfile"`
	Src  string `arg:"" help:"Image to draw" type:"existingfile"`
	Out  string `arg:"" help:"Destination MBMP file"`
	At   string `help:"Position of the source origin as x,y" default:"0,0"`
	Output
}

func (c *DrawCmd) Run() error {
	at, err := parsePoint(c.At)
	if err != nil {
		return err
	}

	dst, _, err := fileop.Load(c.Dest, c.Strict)
	if err != nil {
		return err
	}
	src, _, err := fileop.Load(c.Src, c.Strict)
	if err != nil {
		return err
	}

	dst.DrawBitmap(src, at)
	if err := c.save(c.Out, dst); err != nil {
		return err
	}
	slog.Info("drawn", "dest", c.Dest, "src", c.Src, "at", at, "to", c.Out)
	return nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated integers, got %q", n, s)
	}

	res := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer in %q: %w", s, err)
		}
		res[i] = v
	}
	return res, nil
}

func parseRect(s string) (image.Rectangle, error) {
	v, err := parseInts(s, 4)
	if err != nil {
		return image.Rectangle{}, err
	}
	if v[2] < 0 || v[3] < 0 {
		return image.Rectangle{}, fmt.Errorf("negative rectangle size in %q", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

func parsePoint(s string) (image.Point, error) {
	v, err := parseInts(s, 2)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(v[0], v[1]), nil
}
