package mbmp

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
)

func init() {
	image.RegisterFormat("mbmp", magic, decodeImage, DecodeConfig)
}

func decodeImage(r io.Reader) (image.Image, error) {
	return DecodeEmbedded(r)
}

// Save writes b to the file at path as a standalone (gzip-compressed)
// frame. The data goes to a temporary file in the same folder which
// replaces path only once it is complete and flushed; on any failure path
// keeps its previous contents.
func Save(path string, b *Bitmap, opts ...EncodeOption) (err error) {
	if err := checkDimensions(b); err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", path, err)
	}
	canRename := false
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close %q: %w", f.Name(), closeErr)
		}
		if canRename && err == nil {
			if renameErr := os.Rename(f.Name(), path); renameErr != nil {
				err = fmt.Errorf("could not rename %q to %q: %w", f.Name(), path, renameErr)
			}
		}
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = EncodeStandalone(f, b, opts...); err != nil {
		return fmt.Errorf("could not save %q: %w", path, err)
	}

	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("could not set mode of %q: %w", f.Name(), err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("could not flush %q: %w", f.Name(), err)
	}

	canRename = true
	return nil
}

// Save writes b to path as a standalone frame.
func (b *Bitmap) Save(path string) error {
	return Save(path, b)
}

// Load reads a standalone frame from the file at path.
func Load(path string, opts ...DecodeOption) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()

	b, err := DecodeStandalone(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not load %q: %w", path, err)
	}
	return b, nil
}
