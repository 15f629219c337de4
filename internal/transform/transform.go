// Package transform conforms raster images to a platform's geometric and
// byte-size constraints: cover resize to exact target dimensions, platform
// visual enhancement, and an iterative JPEG quality ladder that drops
// quality until the artifact fits the platform ceiling.
package transform

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	"github.com/fpang/adforge/internal/imageio"
	"github.com/fpang/adforge/internal/platform"
)

// ResizeToCover scales the source uniformly by the larger of the two
// width/height ratios and center-crops the result to exactly
// targetW x targetH. Using the larger ratio guarantees the frame is fully
// covered; the smaller ratio would letterbox instead.
func ResizeToCover(img image.Image, targetW, targetH int) (image.Image, error) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW < 1 || srcH < 1 {
		return nil, fmt.Errorf("%w: source is %dx%d", imageio.ErrInvalidImage, srcW, srcH)
	}
	if targetW < 1 || targetH < 1 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", targetW, targetH)
	}

	ratioW := float64(targetW) / float64(srcW)
	ratioH := float64(targetH) / float64(srcH)
	ratio := ratioW
	if ratioH > ratio {
		ratio = ratioH
	}

	scaledW := int(float64(srcW)*ratio + 0.5)
	scaledH := int(float64(srcH)*ratio + 0.5)
	// Rounding must never leave the scaled image short of the target frame.
	if scaledW < targetW {
		scaledW = targetW
	}
	if scaledH < targetH {
		scaledH = targetH
	}

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Over, nil)

	// Center crop to the exact target frame.
	x0 := (scaledW - targetW) / 2
	y0 := (scaledH - targetH) / 2
	out := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.Copy(out, image.Point{}, scaled, image.Rect(x0, y0, x0+targetW, y0+targetH), xdraw.Src, nil)

	log.Debug().
		Int("src_width", srcW).
		Int("src_height", srcH).
		Int("target_width", targetW).
		Int("target_height", targetH).
		Float64("ratio", ratio).
		Msg("Cover resize complete")

	return out, nil
}

// Enhance applies the platform's visual boosts in fixed order: saturation,
// brightness, optional sharpening, then an unconditional +5% contrast pass.
// Contrast always runs last so platform boosts are not amplified by it.
func Enhance(img image.Image, spec platform.Spec) image.Image {
	out := img

	if spec.SaturationBoost > 0 {
		// imaging expects a percentage delta, platform boosts are multipliers.
		out = imaging.AdjustSaturation(out, (spec.SaturationBoost-1)*100)
	}
	if spec.BrightnessBoost > 0 {
		out = imaging.AdjustBrightness(out, (spec.BrightnessBoost-1)*100)
	}
	if spec.Sharpen {
		out = imaging.Sharpen(out, 1.0)
	}
	out = imaging.AdjustContrast(out, 5)

	log.Debug().
		Str("platform", string(spec.ID)).
		Float64("saturation_boost", spec.SaturationBoost).
		Float64("brightness_boost", spec.BrightnessBoost).
		Bool("sharpen", spec.Sharpen).
		Msg("Platform enhancement applied")

	return out
}

// CompressResult reports the outcome of the compression ladder.
type CompressResult struct {
	// FinalQuality is the JPEG quality the ladder settled on.
	FinalQuality int `json:"final_quality"`

	// FileSizeBytes is the size of the written artifact.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// WithinLimit reports whether the artifact fits the platform ceiling.
	// False is a soft failure: the artifact was written at the quality floor
	// and is still usable, just over the platform's preferred size.
	WithinLimit bool `json:"within_limit"`
}

// CompressToLimit encodes the image as JPEG starting at the platform's base
// quality and steps the quality down by platform.QualityStep until the
// encoded size fits spec.MaxBytes or quality reaches platform.MinQuality.
// The winning encoding is written to path. The ladder is deterministic for a
// fixed image and spec.
func CompressToLimit(img image.Image, spec platform.Spec, path string) (*CompressResult, error) {
	quality := spec.BaseQuality
	var data []byte
	var err error

	for {
		data, err = imageio.EncodeJPEG(img, quality)
		if err != nil {
			return nil, fmt.Errorf("compression at quality %d: %w", quality, err)
		}
		if int64(len(data)) <= spec.MaxBytes || quality-platform.QualityStep < platform.MinQuality {
			break
		}
		quality -= platform.QualityStep
		log.Debug().
			Str("platform", string(spec.ID)).
			Int("quality", quality).
			Int("last_size", len(data)).
			Int64("max_bytes", spec.MaxBytes).
			Msg("Artifact over size ceiling, stepping quality down")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	result := &CompressResult{
		FinalQuality:  quality,
		FileSizeBytes: int64(len(data)),
		WithinLimit:   int64(len(data)) <= spec.MaxBytes,
	}

	log.Info().
		Str("platform", string(spec.ID)).
		Str("path", path).
		Int("final_quality", result.FinalQuality).
		Int64("file_size_bytes", result.FileSizeBytes).
		Bool("within_limit", result.WithinLimit).
		Msg("Compression complete")

	return result, nil
}
