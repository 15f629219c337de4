package analyze

import (
	"fmt"
	"image"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"
)

// harmonyVarianceScale normalizes the channel-mean variance into a [0,1]
// harmony score. Calibration knob, not a perceptual color model.
const harmonyVarianceScale = 10000

// dominantColorCount is how many cluster centers the distribution reports.
const dominantColorCount = 3

// maxClusterSamples caps how many pixels are fed to the clusterer. Sampling
// keeps clustering tractable on full platform frames without changing the
// dominant centers meaningfully.
const maxClusterSamples = 10000

// kmeansSeed fixes the clustering RNG. Repeat runs over the same image must
// report identical dominant colors.
const kmeansSeed = 42

// kmeansMaxIterations bounds the Lloyd refinement loop.
const kmeansMaxIterations = 50

// RGB is one dominant color as 8-bit channel values.
type RGB [3]int

// ColorDistribution holds the color metrics of one image.
type ColorDistribution struct {
	// DominantColors are the cluster centers of the sampled pixels.
	DominantColors []RGB `json:"dominant_colors"`

	// PlaceholderColors is true when DominantColors are fixed neutral
	// placeholders rather than real cluster output. Consumers must not
	// present placeholder centers as measured data.
	PlaceholderColors bool `json:"placeholder_colors,omitempty"`

	// ColorHarmony is max(0, 1 - variance(channel means)/10000).
	ColorHarmony float64 `json:"color_harmony"`

	// Brightness is the mean of the per-channel means, in [0,255].
	Brightness float64 `json:"brightness"`

	// Contrast is the standard deviation of the per-channel means.
	Contrast float64 `json:"contrast"`
}

// ColorClusterer extracts dominant colors from pixel samples. It is a
// capability interface: the real k-means variant and the fixed-placeholder
// variant are selected at configuration time, not discovered at runtime.
type ColorClusterer interface {
	// DominantColors returns k cluster centers for the given RGB samples.
	DominantColors(samples []RGB, k int) ([]RGB, error)

	// Placeholder reports whether the centers are synthetic placeholders.
	Placeholder() bool
}

// KMeansClusterer clusters pixel samples with k-means. Initialization uses
// k-means++ seeding driven by a fixed-seed RNG, and the returned centers are
// sorted lexicographically, so the same samples always yield the same output.
type KMeansClusterer struct{}

// DominantColors partitions the samples into k clusters and returns their
// centers sorted by (R, G, B).
func (KMeansClusterer) DominantColors(samples []RGB, k int) ([]RGB, error) {
	if len(samples) < k {
		return nil, fmt.Errorf("need at least %d samples, have %d", k, len(samples))
	}

	points := make([][3]float64, len(samples))
	for i, s := range samples {
		points[i] = [3]float64{float64(s[0]), float64(s[1]), float64(s[2])}
	}

	rng := rand.New(rand.NewSource(kmeansSeed))
	centers := seedCenters(points, k, rng)

	assign := make([]int, len(points))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCenter(p, centers)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		sums := make([][3]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assign[i]
			sums[c][0] += p[0]
			sums[c][1] += p[1]
			sums[c][2] += p[2]
			counts[c]++
		}
		for c := 0; c < k; c++ {
			// An empty cluster keeps its previous center.
			if counts[c] == 0 {
				continue
			}
			n := float64(counts[c])
			centers[c] = [3]float64{sums[c][0] / n, sums[c][1] / n, sums[c][2] / n}
		}
	}

	out := make([]RGB, 0, k)
	for _, center := range centers {
		out = append(out, RGB{
			int(center[0] + 0.5),
			int(center[1] + 0.5),
			int(center[2] + 0.5),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][2] < out[j][2]
	})
	return out, nil
}

// seedCenters picks k initial centers with k-means++ weighting: the first is
// uniform, each subsequent one is drawn proportionally to its squared
// distance from the nearest already-chosen center.
func seedCenters(points [][3]float64, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, 0, k)
	centers = append(centers, points[rng.Intn(len(points))])

	dists := make([]float64, len(points))
	for len(centers) < k {
		var total float64
		for i, p := range points {
			d := sqDist(p, centers[0])
			for _, c := range centers[1:] {
				if dc := sqDist(p, c); dc < d {
					d = dc
				}
			}
			dists[i] = d
			total += d
		}
		if total == 0 {
			// All remaining points coincide with a center; any pick works.
			centers = append(centers, points[rng.Intn(len(points))])
			continue
		}
		target := rng.Float64() * total
		idx := len(points) - 1
		var acc float64
		for i, d := range dists {
			acc += d
			if acc >= target {
				idx = i
				break
			}
		}
		centers = append(centers, points[idx])
	}
	return centers
}

func nearestCenter(p [3]float64, centers [][3]float64) int {
	best := 0
	bestDist := sqDist(p, centers[0])
	for c := 1; c < len(centers); c++ {
		if d := sqDist(p, centers[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func sqDist(a, b [3]float64) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return dr*dr + dg*dg + db*db
}

// Placeholder reports false: k-means centers are measured data.
func (KMeansClusterer) Placeholder() bool { return false }

// PlaceholderClusterer returns three fixed neutral grays. It exists so the
// analyzer can run where clustering is not wanted; its output is flagged.
type PlaceholderClusterer struct{}

// DominantColors returns the fixed neutral-gray placeholder centers.
func (PlaceholderClusterer) DominantColors(_ []RGB, _ int) ([]RGB, error) {
	return []RGB{{128, 128, 128}, {64, 64, 64}, {192, 192, 192}}, nil
}

// Placeholder reports true.
func (PlaceholderClusterer) Placeholder() bool { return true }

// ColorDistribution computes dominant colors, harmony, brightness and
// contrast for the image.
func (a *Analyzer) ColorDistribution(img image.Image) ColorDistribution {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Per-channel running sums and a sampled subset for clustering.
	var sumR, sumG, sumB float64
	total := w * h
	step := total / maxClusterSamples
	if step < 1 {
		step = 1
	}
	samples := make([]RGB, 0, total/step+1)

	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r8, g8, b8 := float64(r>>8), float64(g>>8), float64(b>>8)
			sumR += r8
			sumG += g8
			sumB += b8
			if i%step == 0 {
				samples = append(samples, RGB{int(r8), int(g8), int(b8)})
			}
			i++
		}
	}

	channelMeans := []float64{
		sumR / float64(total),
		sumG / float64(total),
		sumB / float64(total),
	}

	harmony := 1 - variance(channelMeans)/harmonyVarianceScale
	if harmony < 0 {
		harmony = 0
	}
	dist := ColorDistribution{
		ColorHarmony: harmony,
		Brightness:   mean(channelMeans),
		Contrast:     stddev(channelMeans),
	}

	dominant, err := a.clusterer.DominantColors(samples, dominantColorCount)
	if err != nil {
		log.Warn().Err(err).Msg("Dominant color clustering failed, reporting placeholder centers")
		dominant, _ = PlaceholderClusterer{}.DominantColors(nil, dominantColorCount)
		dist.PlaceholderColors = true
	} else {
		dist.PlaceholderColors = a.clusterer.Placeholder()
	}
	dist.DominantColors = dominant

	log.Debug().
		Float64("color_harmony", dist.ColorHarmony).
		Float64("brightness", dist.Brightness).
		Float64("contrast", dist.Contrast).
		Bool("placeholder_colors", dist.PlaceholderColors).
		Msg("Color distribution analysis complete")

	return dist
}
