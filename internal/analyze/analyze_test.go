package analyze

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/fpang/adforge/internal/platform"
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestColorDistributionUniformDarkImage(t *testing.T) {
	// Pinterest scenario: a nearly-black uniform frame has near-zero channel
	// variance, so harmony approaches 1.0.
	a := New()
	img := uniformImage(200, 300, color.RGBA{R: 2, G: 2, B: 2, A: 255})

	dist := a.ColorDistribution(img)
	if dist.ColorHarmony < 0.99 {
		t.Errorf("ColorHarmony = %f, want near 1.0 for a uniform image", dist.ColorHarmony)
	}
	if dist.Brightness > 5 {
		t.Errorf("Brightness = %f, want near 0 for a nearly-black image", dist.Brightness)
	}
	if dist.Contrast > 1 {
		t.Errorf("Contrast = %f, want near 0 for a uniform image", dist.Contrast)
	}
	if len(dist.DominantColors) != dominantColorCount {
		t.Errorf("got %d dominant colors, want %d", len(dist.DominantColors), dominantColorCount)
	}
}

func TestColorDistributionHighVarianceChannels(t *testing.T) {
	// Strong red: channel means are (255, 0, 0), variance 14450 > 10000, so
	// harmony clamps to 0.
	a := New()
	img := uniformImage(100, 100, color.RGBA{R: 255, A: 255})

	dist := a.ColorDistribution(img)
	if dist.ColorHarmony != 0 {
		t.Errorf("ColorHarmony = %f, want 0 for a saturated single channel", dist.ColorHarmony)
	}
}

func TestPlaceholderClustererFlagged(t *testing.T) {
	a := NewWithClusterer(PlaceholderClusterer{})
	img := uniformImage(64, 64, color.RGBA{R: 90, G: 90, B: 90, A: 255})

	dist := a.ColorDistribution(img)
	if !dist.PlaceholderColors {
		t.Error("PlaceholderColors = false, placeholder output must be flagged")
	}
	want := []RGB{{128, 128, 128}, {64, 64, 64}, {192, 192, 192}}
	if len(dist.DominantColors) != len(want) {
		t.Fatalf("got %d placeholder colors, want %d", len(dist.DominantColors), len(want))
	}
	for i, c := range want {
		if dist.DominantColors[i] != c {
			t.Errorf("placeholder color %d = %v, want %v", i, dist.DominantColors[i], c)
		}
	}
}

func TestKMeansClustererSeparatesColors(t *testing.T) {
	// Three identical-point populations. Seeding weights candidates by
	// squared distance to the nearest chosen center, so each population
	// yields exactly one center and the sorted output is fully determined.
	samples := make([]RGB, 0, 300)
	for i := 0; i < 100; i++ {
		samples = append(samples, RGB{250, 10, 10})
		samples = append(samples, RGB{10, 250, 10})
		samples = append(samples, RGB{10, 10, 250})
	}

	centers, err := KMeansClusterer{}.DominantColors(samples, 3)
	if err != nil {
		t.Fatalf("DominantColors returned error: %v", err)
	}
	want := []RGB{{10, 10, 250}, {10, 250, 10}, {250, 10, 10}}
	if !reflect.DeepEqual(centers, want) {
		t.Errorf("centers = %v, want %v", centers, want)
	}
}

func TestKMeansClustererDeterministic(t *testing.T) {
	// Repeat clustering of the same noisy samples must return identical
	// centers in identical order.
	rng := rand.New(rand.NewSource(7))
	samples := make([]RGB, 600)
	for i := range samples {
		samples[i] = RGB{rng.Intn(256), rng.Intn(256), rng.Intn(256)}
	}

	first, err := KMeansClusterer{}.DominantColors(samples, 3)
	if err != nil {
		t.Fatalf("DominantColors returned error: %v", err)
	}
	second, err := KMeansClusterer{}.DominantColors(samples, 3)
	if err != nil {
		t.Fatalf("DominantColors returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat clustering differed:\nfirst:  %v\nsecond: %v", first, second)
	}
	for i := 1; i < len(first); i++ {
		if !lessRGB(first[i-1], first[i]) && first[i-1] != first[i] {
			t.Errorf("centers not in canonical order: %v", first)
		}
	}
}

func lessRGB(a, b RGB) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

func TestColorDistributionDeterministic(t *testing.T) {
	// The default analyzer clusters real pixels; repeat runs over the same
	// image must report identical distributions.
	rng := rand.New(rand.NewSource(11))
	img := image.NewRGBA(image.Rect(0, 0, 120, 90))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}

	a := New()
	first := a.ColorDistribution(img)
	second := a.ColorDistribution(img)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat analysis differed:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if first.PlaceholderColors {
		t.Error("default analyzer reported placeholder colors")
	}
}

func TestCompositionUniformDarkImage(t *testing.T) {
	// Zero intensity mass: the centroid is degenerate and balance defaults
	// to 0.5. No edges, no thirds activity.
	a := New()
	img := uniformImage(300, 450, color.RGBA{A: 255})

	comp := a.Composition(img)
	if comp.BalanceScore != 0.5 {
		t.Errorf("BalanceScore = %f, want 0.5 for zero-mass image", comp.BalanceScore)
	}
	if comp.EdgeDensity != 0 {
		t.Errorf("EdgeDensity = %f, want 0 for uniform image", comp.EdgeDensity)
	}
	if comp.RuleOfThirdsScore != 0 {
		t.Errorf("RuleOfThirdsScore = %f, want 0 for uniform image", comp.RuleOfThirdsScore)
	}
}

func TestEdgeDensityCountsFullFrame(t *testing.T) {
	// Two-pixel-wide vertical stripes on a 10x10 frame: every interior pixel
	// has a horizontal Sobel magnitude of 1020, so all 64 interior pixels are
	// edges. The denominator is the full frame, so density is 64/100. Border
	// pixels never count as edges but stay in the total.
	a := New()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(0)
			if (x/2)%2 == 0 {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	comp := a.Composition(img)
	if math.Abs(comp.EdgeDensity-0.64) > 1e-9 {
		t.Errorf("EdgeDensity = %f, want 0.64", comp.EdgeDensity)
	}
}

func TestCompositionCenteredMass(t *testing.T) {
	// A bright block exactly centered keeps the centroid at frame center.
	img := uniformImage(301, 301, color.RGBA{A: 255})
	draw.Draw(img, image.Rect(100, 100, 201, 201),
		image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}), image.Point{}, draw.Src)

	a := New()
	comp := a.Composition(img)
	if comp.BalanceScore < 0.95 {
		t.Errorf("BalanceScore = %f, want near 1.0 for centered mass", comp.BalanceScore)
	}
	if comp.EdgeDensity <= 0 {
		t.Error("EdgeDensity = 0, expected edges around the block")
	}
}

func TestCompositionOffCenterMassScoresLower(t *testing.T) {
	a := New()

	centered := uniformImage(300, 300, color.RGBA{A: 255})
	draw.Draw(centered, image.Rect(120, 120, 180, 180),
		image.NewUniform(color.White), image.Point{}, draw.Src)

	cornered := uniformImage(300, 300, color.RGBA{A: 255})
	draw.Draw(cornered, image.Rect(0, 0, 60, 60),
		image.NewUniform(color.White), image.Point{}, draw.Src)

	if a.Composition(cornered).BalanceScore >= a.Composition(centered).BalanceScore {
		t.Error("corner mass should score lower balance than centered mass")
	}
}

func TestTextReadabilityEmptyText(t *testing.T) {
	a := New()
	img := uniformImage(100, 100, color.RGBA{R: 7, G: 7, B: 7, A: 255})

	r := a.TextReadability(img, "")
	if r.ReadabilityScore != 1.0 || r.ContrastRatio != 1.0 {
		t.Errorf("empty text scores = (%f, %f), want (1.0, 1.0)",
			r.ReadabilityScore, r.ContrastRatio)
	}
	if !r.TextLengthAppropriate {
		t.Error("empty text should be length-appropriate")
	}
}

func TestTextReadabilityNoRegionsUsesDefault(t *testing.T) {
	// Dark image with no bright regions: default region contrast of 50
	// yields contrast ratio 0.5.
	a := New()
	img := uniformImage(200, 200, color.RGBA{R: 10, G: 10, B: 10, A: 255})

	r := a.TextReadability(img, "Buy Now")
	if math.Abs(r.ContrastRatio-0.5) > 1e-9 {
		t.Errorf("ContrastRatio = %f, want 0.5 default", r.ContrastRatio)
	}

	wantLength := 1 - float64(len("Buy Now"))/lengthPenaltyScale
	wantScore := (0.5 + wantLength) / 2
	if math.Abs(r.ReadabilityScore-wantScore) > 1e-9 {
		t.Errorf("ReadabilityScore = %f, want %f", r.ReadabilityScore, wantScore)
	}
	if !r.TextLengthAppropriate {
		t.Error("short caption should be length-appropriate")
	}
}

func TestTextReadabilityLongTextPenalized(t *testing.T) {
	a := New()
	img := uniformImage(100, 100, color.RGBA{R: 10, G: 10, B: 10, A: 255})

	long := make([]byte, 250)
	for i := range long {
		long[i] = 'x'
	}

	r := a.TextReadability(img, string(long))
	if r.TextLengthAppropriate {
		t.Error("250-char caption flagged as appropriate")
	}
	// Length score floors at 0, leaving half the default contrast.
	if math.Abs(r.ReadabilityScore-0.25) > 1e-9 {
		t.Errorf("ReadabilityScore = %f, want 0.25", r.ReadabilityScore)
	}
}

func TestBrightRegionsFindsLargeRegion(t *testing.T) {
	// A 60x60 bright block (3600 px > 1000 minimum) on dark background.
	img := uniformImage(200, 200, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	draw.Draw(img, image.Rect(50, 50, 110, 110),
		image.NewUniform(color.White), image.Point{}, draw.Src)

	gray, w, h := grayscale(img)
	regions := brightRegions(gray, w, h)
	if len(regions) != 1 {
		t.Fatalf("found %d regions, want 1", len(regions))
	}
	r := regions[0]
	if r.x0 != 50 || r.y0 != 50 || r.x1 != 110 || r.y1 != 110 {
		t.Errorf("region bbox = (%d,%d)-(%d,%d), want (50,50)-(110,110)", r.x0, r.y0, r.x1, r.y1)
	}
	if r.area != 3600 {
		t.Errorf("region area = %d, want 3600", r.area)
	}
}

func TestBrightRegionsIgnoresSmallSpeckles(t *testing.T) {
	img := uniformImage(200, 200, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	// 10x10 = 100 px, below the 1000 px² minimum.
	draw.Draw(img, image.Rect(20, 20, 30, 30),
		image.NewUniform(color.White), image.Point{}, draw.Src)

	gray, w, h := grayscale(img)
	if regions := brightRegions(gray, w, h); len(regions) != 0 {
		t.Errorf("found %d regions, want 0 for a speckle", len(regions))
	}
}

func TestPlatformOptimizationScoreExactMatch(t *testing.T) {
	a := New()
	spec, err := platform.Lookup(platform.Instagram)
	if err != nil {
		t.Fatal(err)
	}

	img := uniformImage(spec.TargetWidth, spec.TargetHeight, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	score := a.PlatformOptimizationScore(img, spec)
	// Exact dimensions and > 1MP: both halves are 1.0.
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("score = %f, want 1.0 for an exact, high-resolution match", score)
	}
}

func TestPlatformOptimizationScorePenalizesMismatch(t *testing.T) {
	a := New()
	spec, err := platform.Lookup(platform.Instagram)
	if err != nil {
		t.Fatal(err)
	}

	exact := uniformImage(1080, 1080, color.RGBA{A: 255})
	tiny := uniformImage(100, 50, color.RGBA{A: 255})

	if a.PlatformOptimizationScore(tiny, spec) >= a.PlatformOptimizationScore(exact, spec) {
		t.Error("a tiny mismatched image should score below an exact match")
	}
}

func TestScoresInRange(t *testing.T) {
	a := New()
	spec, err := platform.Lookup(platform.Pinterest)
	if err != nil {
		t.Fatal(err)
	}

	// Gradient image exercises all metrics with non-trivial values.
	img := image.NewRGBA(image.Rect(0, 0, 320, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 320; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
		}
	}

	dist := a.ColorDistribution(img)
	comp := a.Composition(img)
	read := a.TextReadability(img, "Summer sale")
	pscore := a.PlatformOptimizationScore(img, spec)

	for name, v := range map[string]float64{
		"color_harmony":         dist.ColorHarmony,
		"edge_density":          comp.EdgeDensity,
		"balance_score":         comp.BalanceScore,
		"complexity":            comp.Complexity,
		"rule_of_thirds":        comp.RuleOfThirdsScore,
		"readability":           read.ReadabilityScore,
		"contrast_ratio":        read.ContrastRatio,
		"platform_optimization": pscore,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %f out of [0,1]", name, v)
		}
	}
}
