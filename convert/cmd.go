package convert

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mbmp/fileop"
	"mbmp/parallel"

	"github.com/klauspost/compress/gzip"
)

type CLICmd struct {
	Scan       string      `help:"Source folder to scan" default:"."`
	Dest       string      `help:"Destination folder for converted pictures. Relative to scan dir if not absolute." default:"converted"`
	To         string      `help:"Output format. mbmp is the gzip-compressed standalone form, mbraw the uncompressed embedded frame." enum:"mbmp,mbraw,png,bmp,tiff,gif,jpeg" default:"mbmp"`
	Level      int         `help:"gzip compression level for mbmp output, -2 (Huffman only) to 9" default:"-1"`
	Background string      `help:"Color (#RGB, #RGBA, #RRGGBB or #RRGGBBAA) under transparent pixels for formats without alpha" default:"#FFFFFF"`
	Strict     bool        `help:"Reject MBMP input that lacks the MBMP signature"`
	Overwrite  bool        `help:"Replace existing destination files"`
	BackColor  color.Color `kong:"-"`
}

func (c *CLICmd) Validate() error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Level < gzip.HuffmanOnly || c.Level > gzip.BestCompression {
		return fmt.Errorf("invalid compression level: %d", c.Level)
	}

	if c.BackColor, err = parseHexToColor(c.Background); err != nil {
		return err
	}

	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		fileName := file.Name()
		pool.Do(func() error {
			srcPath := filepath.Join(c.Scan, fileName)
			destPath := filepath.Join(c.Dest, destName(fileName, c.To))
			logger := slog.Default().With("file", srcPath)

			if err := c.convertFile(logger, srcPath, destPath); err != nil {
				logger.Error("could not convert image", "to", destPath, "error", err)
				return err
			}
			return nil
		})
	}

	processed, errors := pool.Wait()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func (c *CLICmd) convertFile(logger *slog.Logger, srcPath, destPath string) error {
	if err := fileop.Check(srcPath, destPath, c.Overwrite); err != nil {
		return err
	}

	bm, format, err := fileop.Load(srcPath, c.Strict)
	if err != nil {
		return err
	}
	logger.Debug("decoded", "format", format, "width", bm.Width(), "height", bm.Height())

	enc, err := encoderFor(c.To, c.Level, c.BackColor)
	if err != nil {
		return err
	}

	if err := fileop.WriteAtomic(destPath, func(w io.Writer) error { return enc(w, bm) }); err != nil {
		return err
	}

	logger.Info("converted", "from", format, "to", c.To, "dest", destPath)
	return nil
}

// destName swaps the extension of name for the one of the output format.
func destName(name, format string) string {
	oldExt := filepath.Ext(name)
	if format == "jpeg" {
		format = "jpg"
	}
	return fmt.Sprintf("%s.%s", strings.TrimSuffix(name, oldExt), format)
}
