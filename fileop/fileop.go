// Package fileop holds the file handling shared by the mbmp commands:
// destination checks, atomic writes and decoding of any supported image
// file into a bitmap.
package fileop

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"mbmp/mbmp"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Check verifies that src is a regular file and, unless overwrite is set,
// that dest does not exist yet.
func Check(src, dest string, overwrite bool) error {
	srcFileInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("cannot stat source file %q: %w", src, err)
	}
	if !srcFileInfo.Mode().IsRegular() {
		return fmt.Errorf("cannot convert non-regular file %q: %s", srcFileInfo.Name(), srcFileInfo.Mode().String())
	}
	if overwrite {
		return nil
	}

	destFileInfo, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
	} else {
		return fmt.Errorf("destination file already exists: %q", destFileInfo.Name())
	}

	return nil
}

// WriteAtomic writes dest through a temporary file in the same folder that
// is renamed into place only after write succeeded and the data was
// flushed. On failure dest is left untouched.
func WriteAtomic(dest string, write func(w io.Writer) error) (err error) {
	destDir, destName := filepath.Split(dest)
	if destDir == "" {
		destDir = "."
	}

	outFile, err := os.CreateTemp(destDir, "."+destName+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", dest, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", outFile.Name(), defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), dest); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", dest, defErr)
			}
		}

		if err != nil {
			if defErr := os.Remove(outFile.Name()); defErr != nil && !errors.Is(defErr, fs.ErrNotExist) {
				slog.Error("could not remove temporary file", "name", outFile.Name(), "error", defErr)
			}
		}
	}()

	bw := bufio.NewWriter(outFile)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("could not write %q: %w", dest, err)
	}
	if err = outFile.Chmod(0o644); err != nil {
		return fmt.Errorf("could not set mode of %q: %w", outFile.Name(), err)
	}
	if err = outFile.Sync(); err != nil {
		return fmt.Errorf("could not flush temporary destination %q: %w", outFile.Name(), err)
	}

	canRename = true
	return nil
}

// Load decodes the file at path into a bitmap. Both MBMP forms are
// recognised by signature; anything else goes through the registered image
// decoders (GIF, JPEG, PNG, BMP, TIFF, WebP). The returned format is
// "mbmp", "mbmp-raw" or the image package's format name.
func Load(path string, strict bool) (*mbmp.Bitmap, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open %q: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close source file", "name", path, "error", closeErr)
		}
	}()

	br := bufio.NewReader(f)
	if _, ok := mbmp.Sniff(br); ok {
		var opts []mbmp.DecodeOption
		if strict {
			opts = append(opts, mbmp.Strict())
		}

		bm, form, err := mbmp.DecodeAuto(br, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("could not decode %q: %w", path, err)
		}
		return bm, FormatName(form), nil
	}

	img, format, err := image.Decode(br)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode %q: %w", path, err)
	}
	return mbmp.FromImage(img), format, nil
}

// FormatName returns the name Load reports for an MBMP form.
func FormatName(form mbmp.Form) string {
	if form == mbmp.Standalone {
		return "mbmp"
	}
	return "mbmp-raw"
}
