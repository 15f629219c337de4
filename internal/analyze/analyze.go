// Package analyze extracts deterministic visual metrics from pixel data:
// color harmony, composition balance, rule-of-thirds activity, and text
// contrast. Everything here is a pure function of the image; nothing calls
// out of process.
//
// Several scores are heuristic normalizations with calibrated constants
// (harmonyVarianceScale, thirdsActivityScale, contrastScale). They are
// calibration knobs tuned for ad imagery, not perceptual models.
package analyze

import (
	"image"
	"math"
)

// Analyzer runs the visual analysis suite. The zero value is not usable;
// construct with New or NewWithClusterer.
type Analyzer struct {
	clusterer ColorClusterer
}

// New returns an Analyzer using k-means dominant color extraction.
func New() *Analyzer {
	return &Analyzer{clusterer: KMeansClusterer{}}
}

// NewWithClusterer returns an Analyzer with a custom clustering capability.
// Pass PlaceholderClusterer to run without real clustering; its output is
// flagged as placeholder data in the color distribution.
func NewWithClusterer(c ColorClusterer) *Analyzer {
	return &Analyzer{clusterer: c}
}

// grayscale flattens an image into row-major luminance values in [0,255].
func grayscale(img image.Image) ([]float64, int, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return gray, w, h
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// variance is the population variance, matching the numpy convention the
// calibration constants were tuned against.
func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	return math.Sqrt(variance(vals))
}
