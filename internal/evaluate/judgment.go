package evaluate

import (
	"context"

	"github.com/fpang/adforge/internal/platform"
)

// Engagement prediction labels produced by the AI judge.
const (
	EngagementHigh   = "high"
	EngagementMedium = "medium"
	EngagementLow    = "low"
)

// Judgment is the AI judge's verdict on one ad. Axis scores are on a 0-10
// scale. Judgments come from an external model and are untrusted input:
// Sanitize before use.
type Judgment struct {
	VisualAppeal         float64  `json:"visual_appeal"`
	BrandAlignment       float64  `json:"brand_alignment"`
	PlatformOptimization float64  `json:"platform_optimization"`
	AudienceRelevance    float64  `json:"audience_relevance"`
	CTAClarity           float64  `json:"cta_clarity"`
	OverallRating        float64  `json:"overall_rating"`
	Strengths            []string `json:"strengths"`
	Improvements         []string `json:"improvements"`
	EngagementPrediction string   `json:"engagement_prediction"`
}

// Sanitize clamps axis scores into [0,10] and normalizes the engagement
// label, so a misbehaving model cannot push composites out of range.
func (j *Judgment) Sanitize() {
	for _, score := range []*float64{
		&j.VisualAppeal, &j.BrandAlignment, &j.PlatformOptimization,
		&j.AudienceRelevance, &j.CTAClarity, &j.OverallRating,
	} {
		if *score < 0 {
			*score = 0
		}
		if *score > 10 {
			*score = 10
		}
	}
	switch j.EngagementPrediction {
	case EngagementHigh, EngagementMedium, EngagementLow:
	default:
		j.EngagementPrediction = EngagementMedium
	}
}

// JudgeRequest carries everything the AI judge needs for one verdict.
type JudgeRequest struct {
	ImageData []byte
	ImageMIME string
	Text      string
	Platform  platform.ID
	Audience  string
	Brand     string
}

// Judge is the external AI-judgment capability. Implementations are expected
// to be unreliable: the evaluator bounds each call with a timeout and
// substitutes DefaultJudgment on any failure.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (*Judgment, error)
}

// DefaultJudgment is the neutral verdict substituted when the AI judge is
// unavailable. The flat 7.0 is deliberately optimistic; reports flag the
// substitution so consumers can tell defaulted scores from real ones.
func DefaultJudgment() *Judgment {
	return &Judgment{
		VisualAppeal:         7.0,
		BrandAlignment:       7.0,
		PlatformOptimization: 7.0,
		AudienceRelevance:    7.0,
		CTAClarity:           7.0,
		OverallRating:        7.0,
		Strengths:            []string{"Professional appearance"},
		Improvements:         []string{"Could not analyze due to AI service limitation"},
		EngagementPrediction: EngagementMedium,
	}
}
