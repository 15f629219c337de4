package analyze

import (
	"image"

	"github.com/rs/zerolog/log"
)

// binaryThreshold separates bright candidate text regions from background.
const binaryThreshold = 127

// minTextRegionArea filters connected regions too small to be text, in px².
const minTextRegionArea = 1000

// defaultRegionContrast is assumed when no candidate regions are found.
const defaultRegionContrast = 50

// contrastScale normalizes region contrast into [0,1]. Calibration knob.
const contrastScale = 100

// captionLengthLimit is the caption length considered appropriate for
// social media.
const captionLengthLimit = 50

// lengthPenaltyScale is the caption length at which the length score
// reaches zero.
const lengthPenaltyScale = 200

// Readability holds the text readability metrics of one (image, text) pair.
type Readability struct {
	// ReadabilityScore is the mean of the contrast ratio and length score.
	ReadabilityScore float64 `json:"readability_score"`

	// ContrastRatio is the normalized mean intensity deviation of the
	// candidate text regions.
	ContrastRatio float64 `json:"contrast_ratio"`

	// TextLengthAppropriate reports whether the caption fits the platform
	// length convention.
	TextLengthAppropriate bool `json:"text_length_appropriate"`
}

// TextReadability estimates how readable overlaid text is. With no text the
// result is trivially perfect. Otherwise the image is binarized, connected
// bright regions above the minimum area are treated as candidate text
// regions, and their internal intensity deviation serves as a contrast
// proxy.
func (a *Analyzer) TextReadability(img image.Image, text string) Readability {
	if text == "" {
		return Readability{
			ReadabilityScore:      1.0,
			ContrastRatio:         1.0,
			TextLengthAppropriate: true,
		}
	}

	gray, w, h := grayscale(img)
	regions := brightRegions(gray, w, h)

	var contrasts []float64
	for _, r := range regions {
		vals := make([]float64, 0, (r.x1-r.x0)*(r.y1-r.y0))
		for y := r.y0; y < r.y1; y++ {
			for x := r.x0; x < r.x1; x++ {
				vals = append(vals, gray[y*w+x])
			}
		}
		if len(vals) > 0 {
			contrasts = append(contrasts, stddev(vals))
		}
	}

	avgContrast := float64(defaultRegionContrast)
	if len(contrasts) > 0 {
		avgContrast = mean(contrasts)
	}
	contrastRatio := clamp01(avgContrast / contrastScale)

	lengthScore := 1 - float64(len(text))/lengthPenaltyScale
	if lengthScore < 0 {
		lengthScore = 0
	}

	result := Readability{
		ReadabilityScore:      (contrastRatio + lengthScore) / 2,
		ContrastRatio:         contrastRatio,
		TextLengthAppropriate: len(text) <= captionLengthLimit,
	}

	log.Debug().
		Int("candidate_regions", len(regions)).
		Float64("contrast_ratio", result.ContrastRatio).
		Float64("readability_score", result.ReadabilityScore).
		Msg("Text readability analysis complete")

	return result
}

// region is the bounding box of one connected bright component.
type region struct {
	x0, y0, x1, y1 int // half-open
	area           int
}

// brightRegions labels 4-connected components of above-threshold pixels and
// returns bounding boxes of those exceeding the minimum text area.
func brightRegions(gray []float64, w, h int) []region {
	visited := make([]bool, w*h)
	var out []region
	var stack []int

	for start := 0; start < w*h; start++ {
		if visited[start] || gray[start] <= binaryThreshold {
			continue
		}

		r := region{x0: w, y0: h}
		stack = append(stack[:0], start)
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := idx%w, idx/w
			r.area++
			if x < r.x0 {
				r.x0 = x
			}
			if y < r.y0 {
				r.y0 = y
			}
			if x+1 > r.x1 {
				r.x1 = x + 1
			}
			if y+1 > r.y1 {
				r.y1 = y + 1
			}

			neighbors := [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}}
			for _, nb := range neighbors {
				nx, ny := nb[0], nb[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				n := ny*w + nx
				if visited[n] || gray[n] <= binaryThreshold {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}

		if r.area > minTextRegionArea {
			out = append(out, r)
		}
	}
	return out
}
