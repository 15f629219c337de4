// Package pipeline runs the full conformance flow for one base image: cover
// resize to the platform frame, platform enhancement, optional caption
// overlay, then compression under the platform byte ceiling.
package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/imageio"
	"github.com/fpang/adforge/internal/metrics"
	"github.com/fpang/adforge/internal/overlay"
	"github.com/fpang/adforge/internal/platform"
	"github.com/fpang/adforge/internal/transform"
)

// Options configures one conform run.
type Options struct {
	// Text is the caption to overlay. Empty means no overlay.
	Text string
	// PrimaryColor and BackgroundColor are hex brand colors for the overlay.
	PrimaryColor    string
	BackgroundColor string
	// OutputDir is where artifacts are written. Defaults to the working
	// directory.
	OutputDir string
	// Preview enables writing a WebP preview next to the artifact.
	Preview bool
}

// Artifact describes one conformed output image.
type Artifact struct {
	ID          string                    `json:"id"`
	Platform    platform.ID               `json:"platform"`
	Path        string                    `json:"path"`
	PreviewPath string                    `json:"preview_path,omitempty"`
	Width       int                       `json:"width"`
	Height      int                       `json:"height"`
	Compression *transform.CompressResult `json:"compression"`
	ElapsedMS   int64                     `json:"elapsed_ms"`
}

// Conform runs resize, enhance, optional overlay and compress for one
// platform and writes the artifact to disk.
func Conform(img image.Image, id platform.ID, opts Options) (*Artifact, error) {
	spec, err := platform.Lookup(id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", imageio.ErrInvalidImage)
	}

	start := time.Now()
	artifactID := uuid.New().String()

	log.Info().
		Str("platform", string(id)).
		Str("artifact_id", artifactID).
		Int("source_width", img.Bounds().Dx()).
		Int("source_height", img.Bounds().Dy()).
		Msg("Starting conform pipeline")

	resized, err := transform.ResizeToCover(img, spec.TargetWidth, spec.TargetHeight)
	if err != nil {
		return nil, fmt.Errorf("resize for %s: %w", id, err)
	}

	enhanced := transform.Enhance(resized, spec)

	if opts.Text != "" {
		enhanced = overlay.Place(enhanced, overlay.Spec{
			Text:            opts.Text,
			PrimaryColor:    opts.PrimaryColor,
			BackgroundColor: opts.BackgroundColor,
			TallFrame:       spec.IsTall(),
		})
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(outDir, fmt.Sprintf("%s_%s.jpg", artifactID, id))
	compression, err := transform.CompressToLimit(enhanced, spec, path)
	if err != nil {
		return nil, fmt.Errorf("compress for %s: %w", id, err)
	}

	artifact := &Artifact{
		ID:          artifactID,
		Platform:    id,
		Path:        path,
		Width:       spec.TargetWidth,
		Height:      spec.TargetHeight,
		Compression: compression,
	}

	if opts.Preview {
		previewPath, err := writePreview(enhanced, path)
		if err != nil {
			log.Warn().Err(err).Str("artifact", path).Msg("Failed to write preview, continuing without it")
		} else {
			artifact.PreviewPath = previewPath
		}
	}

	artifact.ElapsedMS = time.Since(start).Milliseconds()

	metrics.New("conform").
		Dimension("Platform", string(id)).
		Metric("ConformLatencyMs", float64(artifact.ElapsedMS), metrics.UnitMilliseconds).
		Metric("ArtifactBytes", float64(compression.FileSizeBytes), metrics.UnitBytes).
		Metric("FinalQuality", float64(compression.FinalQuality), metrics.UnitNone).
		Count("ConformRuns").
		Flush()

	log.Info().
		Str("platform", string(id)).
		Str("path", path).
		Int("final_quality", compression.FinalQuality).
		Int64("file_size_bytes", compression.FileSizeBytes).
		Bool("within_limit", compression.WithinLimit).
		Int64("elapsed_ms", artifact.ElapsedMS).
		Msg("Conform pipeline complete")

	return artifact, nil
}

// ConformAll conforms one base image for every supported platform. Artifacts
// are returned in platform.All order. A failure on one platform aborts the
// run; partial artifacts already written stay on disk.
func ConformAll(img image.Image, opts Options) ([]*Artifact, error) {
	specs := platform.All()
	artifacts := make([]*Artifact, 0, len(specs))

	for _, spec := range specs {
		artifact, err := Conform(img, spec.ID, opts)
		if err != nil {
			return artifacts, fmt.Errorf("conform %s: %w", spec.ID, err)
		}
		artifacts = append(artifacts, artifact)
	}

	log.Info().Int("variants", len(artifacts)).Msg("All platform variants conformed")
	return artifacts, nil
}

// writePreview encodes a WebP preview next to the artifact.
func writePreview(img image.Image, artifactPath string) (string, error) {
	data, _, err := imageio.Preview(img, imageio.DefaultPreviewMaxDimension)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(artifactPath)
	previewPath := artifactPath[:len(artifactPath)-len(ext)] + "_preview.webp"
	if err := os.WriteFile(previewPath, data, 0644); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}
	return previewPath, nil
}
