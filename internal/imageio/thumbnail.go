package imageio

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

// DefaultPreviewMaxDimension is the maximum dimension (width or height) for
// report preview thumbnails.
const DefaultPreviewMaxDimension = 512

// previewQuality is the WebP quality for preview thumbnails. Previews are for
// report consumers, not publishing, so a modest quality keeps them small.
const previewQuality = 80

// Preview downscales an image so its larger dimension fits maxDimension and
// encodes it as WebP. Images already within bounds are encoded as-is.
// Returns the encoded bytes and MIME type.
func Preview(img image.Image, maxDimension int) ([]byte, string, error) {
	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	w, h := origW, origH
	if origW > maxDimension || origH > maxDimension {
		if origW > origH {
			w = maxDimension
			h = origH * maxDimension / origW
		} else {
			h = maxDimension
			w = origW * maxDimension / origH
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: previewQuality, Lossless: false}); err != nil {
		return nil, "", fmt.Errorf("failed to encode preview as WebP: %w", err)
	}
	if buf.Len() == 0 {
		return nil, "", fmt.Errorf("WebP encoding produced empty preview")
	}

	log.Debug().
		Int("orig_width", origW).
		Int("orig_height", origH).
		Int("width", w).
		Int("height", h).
		Int("output_size", buf.Len()).
		Msg("Preview thumbnail generated")

	return buf.Bytes(), "image/webp", nil
}
