package analyze

import (
	"image"

	"github.com/fpang/adforge/internal/platform"
)

// minAdequatePixels is the resolution below which the adequacy score starts
// penalizing (1 megapixel).
const minAdequatePixels = 1_000_000

// PlatformOptimizationScore scores how well the image's geometry suits the
// platform: the mean of a dimension-match score and a resolution-adequacy
// score, in [0,1].
func (a *Analyzer) PlatformOptimizationScore(img image.Image, spec platform.Spec) float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	widthRatio := ratioMatch(w, spec.TargetWidth)
	heightRatio := ratioMatch(h, spec.TargetHeight)
	dimensionScore := (widthRatio + heightRatio) / 2

	resolutionScore := clamp01(float64(w*h) / minAdequatePixels)

	return (dimensionScore + resolutionScore) / 2
}

// ratioMatch is min(a,b)/max(a,b): 1.0 for an exact match, approaching 0 as
// dimensions diverge.
func ratioMatch(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return float64(a) / float64(b)
}
