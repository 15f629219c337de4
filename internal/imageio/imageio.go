// Package imageio decodes, validates and encodes the raster images flowing
// through the conformance and evaluation pipelines.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrInvalidImage is returned for unreadable or zero-dimension input images.
// Requests failing with it are rejected before any analysis runs.
var ErrInvalidImage = errors.New("invalid image")

// Load decodes an image from disk and validates it.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrInvalidImage, path, err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode decodes an image from a reader and validates it.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-dimension image", ErrInvalidImage)
	}

	log.Debug().
		Str("format", format).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("Image decoded")

	return img, nil
}

// EncodeJPEG encodes an image as JPEG at the given quality into memory.
// Encoding is deterministic: the same image and quality always produce the
// same bytes, which the compression ladder relies on.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes an image to path, choosing the encoder from the extension.
// JPEG output uses the given quality; PNG ignores it.
func Save(img image.Image, path string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	case ".png":
		err = png.Encode(f, img)
	default:
		return fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
