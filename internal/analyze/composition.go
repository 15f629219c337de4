package analyze

import (
	"image"
	"math"

	"github.com/rs/zerolog/log"
)

// edgeMagnitudeThreshold marks a pixel as an edge when its Sobel gradient
// magnitude exceeds this value.
const edgeMagnitudeThreshold = 128

// thirdsStripHeight is the thickness in pixels of the strips sampled along
// the rule-of-thirds lines.
const thirdsStripHeight = 10

// thirdsActivityScale normalizes mean strip activity into [0,1].
// Calibration knob.
const thirdsActivityScale = 50

// complexityScale maps edge density onto a [0,1] complexity score.
const complexityScale = 10

// Composition holds the compositional metrics of one image.
type Composition struct {
	// EdgeDensity is the fraction of pixels marked as edges. Border pixels
	// are never edges but still count toward the total, as in a full-frame
	// edge map whose borders are zero.
	EdgeDensity float64 `json:"edge_density"`

	// BalanceScore measures how close the intensity centroid sits to the
	// frame center, in [0,1]. A degenerate all-black frame scores 0.5.
	BalanceScore float64 `json:"balance_score"`

	// Complexity is min(1, edge_density * 10).
	Complexity float64 `json:"complexity"`

	// RuleOfThirdsScore measures intensity activity along the thirds lines,
	// in [0,1].
	RuleOfThirdsScore float64 `json:"rule_of_thirds_score"`
}

// Composition computes edge density, centroid balance, complexity and
// rule-of-thirds activity.
func (a *Analyzer) Composition(img image.Image) Composition {
	gray, w, h := grayscale(img)

	edgeDensity := sobelEdgeDensity(gray, w, h)
	balance := centroidBalance(gray, w, h)
	thirds := thirdsActivity(gray, w, h)

	comp := Composition{
		EdgeDensity:       edgeDensity,
		BalanceScore:      balance,
		Complexity:        clamp01(edgeDensity * complexityScale),
		RuleOfThirdsScore: clamp01(thirds / thirdsActivityScale),
	}

	log.Debug().
		Float64("edge_density", comp.EdgeDensity).
		Float64("balance_score", comp.BalanceScore).
		Float64("rule_of_thirds_score", comp.RuleOfThirdsScore).
		Msg("Composition analysis complete")

	return comp
}

// sobelEdgeDensity counts interior pixels whose Sobel gradient magnitude
// exceeds the edge threshold and divides by the full pixel count w*h. The
// one-pixel border contributes zero edges but stays in the denominator,
// matching an edge map computed over the whole frame with zeroed borders.
func sobelEdgeDensity(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			at := func(dx, dy int) float64 { return gray[(y+dy)*w+(x+dx)] }
			gx := -at(-1, -1) - 2*at(-1, 0) - at(-1, 1) +
				at(1, -1) + 2*at(1, 0) + at(1, 1)
			gy := -at(-1, -1) - 2*at(0, -1) - at(1, -1) +
				at(-1, 1) + 2*at(0, 1) + at(1, 1)
			if math.Hypot(gx, gy) > edgeMagnitudeThreshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(w*h)
}

// centroidBalance locates the first-order intensity centroid and scores how
// centered it is. Zero total mass (an all-black frame) has no centroid and
// defaults to 0.5.
func centroidBalance(gray []float64, w, h int) float64 {
	var m00, m10, m01 float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := gray[y*w+x]
			m00 += v
			m10 += v * float64(x)
			m01 += v * float64(y)
		}
	}
	if m00 == 0 {
		return 0.5
	}

	cx := m10 / m00
	cy := m01 / m00
	centerX := float64(w) / 2
	centerY := float64(h) / 2

	score := 1 - (math.Abs(cx-centerX)+math.Abs(cy-centerY))/(centerX+centerY)
	return clamp01(score)
}

// thirdsActivity samples thin strips along the horizontal and vertical
// thirds lines and returns the mean of their intensity standard deviations.
func thirdsActivity(gray []float64, w, h int) float64 {
	thirdX, thirdY := w/3, h/3

	strip := func(x0, y0, x1, y1 int) []float64 {
		if x1 > w {
			x1 = w
		}
		if y1 > h {
			y1 = h
		}
		var vals []float64
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				vals = append(vals, gray[y*w+x])
			}
		}
		return vals
	}

	strips := [][]float64{
		strip(0, thirdY, w, thirdY+thirdsStripHeight),
		strip(0, 2*thirdY, w, 2*thirdY+thirdsStripHeight),
		strip(thirdX, 0, thirdX+thirdsStripHeight, h),
		strip(2*thirdX, 0, 2*thirdX+thirdsStripHeight, h),
	}

	devs := make([]float64, 0, len(strips))
	for _, s := range strips {
		devs = append(devs, stddev(s))
	}
	return mean(devs)
}
