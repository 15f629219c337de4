// Package evaluate joins the deterministic visual analysis with an external
// AI judgment into one scored report per ad. A single Evaluate call is
// stateless and synchronous; the only blocking dependency is the AI judge,
// whose failures are absorbed, never propagated.
package evaluate

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/adforge/internal/analyze"
	"github.com/fpang/adforge/internal/imageio"
	"github.com/fpang/adforge/internal/platform"
)

// Composite weight and threshold constants.
const (
	visualHarmonyWeight = 0.3
	visualBalanceWeight = 0.4
	visualJudgeWeight   = 0.3

	visualAppealThreshold    = 0.7
	textReadabilityThreshold = 0.7
	platformScoreThreshold   = 0.8
	brandAlignmentThreshold  = 0.7

	maxSuggestions = 5
)

// DefaultJudgeTimeout bounds one AI judge call.
const DefaultJudgeTimeout = 30 * time.Second

// judgeEncodeQuality is the JPEG quality used when handing the image to the
// AI judge. The judge sees a faithful rendition, not the final artifact.
const judgeEncodeQuality = 85

// Report is the evaluation result. All composite scores lie in [0,1].
// Reports are immutable once returned.
type Report struct {
	OverallScore         float64  `json:"overall_score"`
	VisualAppeal         float64  `json:"visual_appeal"`
	TextReadability      float64  `json:"text_readability"`
	BrandAlignment       float64  `json:"brand_alignment"`
	PlatformOptimization float64  `json:"platform_optimization"`
	EngagementPrediction float64  `json:"engagement_prediction"`
	Suggestions          []string `json:"suggestions"`

	DetailedAnalysis DetailedAnalysis `json:"detailed_analysis"`
}

// DetailedAnalysis preserves every intermediate metric for auditability.
type DetailedAnalysis struct {
	Color             analyze.ColorDistribution `json:"color_analysis"`
	Composition       analyze.Composition       `json:"composition_analysis"`
	Text              analyze.Readability       `json:"text_analysis"`
	PlatformScore     float64                   `json:"platform_optimization_score"`
	Judgment          Judgment                  `json:"ai_judgment"`
	JudgmentDefaulted bool                      `json:"ai_judgment_defaulted"`
}

// Evaluator runs evaluations. Safe for concurrent use: it holds no mutable
// state across calls.
type Evaluator struct {
	analyzer     *analyze.Analyzer
	judge        Judge
	judgeTimeout time.Duration
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithJudgeTimeout overrides the AI judge call timeout.
func WithJudgeTimeout(d time.Duration) Option {
	return func(e *Evaluator) { e.judgeTimeout = d }
}

// WithAnalyzer overrides the visual analyzer, e.g. to select the
// placeholder clustering variant.
func WithAnalyzer(a *analyze.Analyzer) Option {
	return func(e *Evaluator) { e.analyzer = a }
}

// New creates an Evaluator backed by the given AI judge.
func New(judge Judge, opts ...Option) *Evaluator {
	e := &Evaluator{
		analyzer:     analyze.New(),
		judge:        judge,
		judgeTimeout: DefaultJudgeTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores one ad image for a platform and audience. Structural
// errors (unknown platform, invalid image) fail the call before any
// analysis; an unavailable AI judge degrades to the default judgment and
// never fails the call.
func (e *Evaluator) Evaluate(ctx context.Context, img image.Image, text string, platformID platform.ID, audience, brand string) (*Report, error) {
	spec, err := platform.Lookup(platformID)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return nil, fmt.Errorf("%w: evaluation requires a decoded non-empty image", imageio.ErrInvalidImage)
	}

	start := time.Now()
	log.Info().
		Str("platform", string(platformID)).
		Str("audience", audience).
		Int("text_length", len(text)).
		Msg("Starting ad evaluation")

	// The judge blocks on network I/O; the analyzer is CPU-bound. Run them
	// concurrently so the judge's latency is not added to analysis time.
	var (
		color     analyze.ColorDistribution
		comp      analyze.Composition
		read      analyze.Readability
		pscore    float64
		judgment  = DefaultJudgment()
		defaulted bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		color = e.analyzer.ColorDistribution(img)
		comp = e.analyzer.Composition(img)
		read = e.analyzer.TextReadability(img, text)
		pscore = e.analyzer.PlatformOptimizationScore(img, spec)
		return nil
	})

	g.Go(func() error {
		j, jerr := e.invokeJudge(gctx, img, text, platformID, audience, brand)
		if jerr != nil {
			log.Warn().Err(jerr).Msg("AI judgment unavailable, substituting default verdict")
			defaulted = true
			return nil
		}
		judgment = j
		return nil
	})

	// Neither goroutine returns an error; Wait only orders the writes above.
	_ = g.Wait()

	judgment.Sanitize()

	visualAppeal := visualHarmonyWeight*color.ColorHarmony +
		visualBalanceWeight*comp.BalanceScore +
		visualJudgeWeight*judgment.VisualAppeal/10
	textReadability := read.ReadabilityScore
	brandAlignment := judgment.BrandAlignment / 10
	platformOptimization := pscore

	engagement := (visualAppeal + textReadability + brandAlignment + platformOptimization) / 4
	overall := (visualAppeal + textReadability + brandAlignment + platformOptimization + engagement) / 5

	report := &Report{
		OverallScore:         overall,
		VisualAppeal:         visualAppeal,
		TextReadability:      textReadability,
		BrandAlignment:       brandAlignment,
		PlatformOptimization: platformOptimization,
		EngagementPrediction: engagement,
		Suggestions: buildSuggestions(visualAppeal, textReadability,
			platformOptimization, brandAlignment, platformID, judgment.Improvements),
		DetailedAnalysis: DetailedAnalysis{
			Color:             color,
			Composition:       comp,
			Text:              read,
			PlatformScore:     pscore,
			Judgment:          *judgment,
			JudgmentDefaulted: defaulted,
		},
	}

	log.Info().
		Str("platform", string(platformID)).
		Float64("overall_score", report.OverallScore).
		Bool("judgment_defaulted", defaulted).
		Dur("duration", time.Since(start)).
		Msg("Ad evaluation complete")

	return report, nil
}

// invokeJudge encodes the image and calls the AI judge under the configured
// timeout.
func (e *Evaluator) invokeJudge(ctx context.Context, img image.Image, text string, platformID platform.ID, audience, brand string) (*Judgment, error) {
	if e.judge == nil {
		return nil, fmt.Errorf("no AI judge configured")
	}

	data, err := imageio.EncodeJPEG(img, judgeEncodeQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image for judge: %w", err)
	}

	jctx, cancel := context.WithTimeout(ctx, e.judgeTimeout)
	defer cancel()

	return e.judge.Judge(jctx, JudgeRequest{
		ImageData: data,
		ImageMIME: "image/jpeg",
		Text:      text,
		Platform:  platformID,
		Audience:  audience,
		Brand:     brand,
	})
}

// buildSuggestions assembles the actionable suggestion list: fixed
// threshold hints first, then the judge's own improvements, capped at
// maxSuggestions.
func buildSuggestions(visualAppeal, textReadability, platformScore, brandAlignment float64, platformID platform.ID, improvements []string) []string {
	suggestions := make([]string, 0, maxSuggestions)

	if visualAppeal < visualAppealThreshold {
		suggestions = append(suggestions, "Improve visual composition and color harmony")
	}
	if textReadability < textReadabilityThreshold {
		suggestions = append(suggestions, "Enhance text contrast and readability")
	}
	if platformScore < platformScoreThreshold {
		suggestions = append(suggestions, fmt.Sprintf("Optimize dimensions for %s", platformID))
	}
	if brandAlignment < brandAlignmentThreshold {
		suggestions = append(suggestions, "Better align visual elements with brand identity")
	}

	suggestions = append(suggestions, improvements...)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
