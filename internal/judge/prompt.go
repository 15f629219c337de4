package judge

import (
	"fmt"
	"strings"

	"github.com/fpang/adforge/internal/evaluate"
)

// judgeSystemPrompt frames the model as an ad creative reviewer and pins the
// response to JSON only.
const judgeSystemPrompt = `You are a senior advertising creative director reviewing social media ad images.
You evaluate honestly and concretely: every score must reflect what is actually visible in the image.
Respond with ONLY a valid JSON object. No markdown, no commentary outside the JSON.`

// BuildJudgePrompt creates the evaluation prompt for one ad. The image is
// supplied separately as an inline part; the prompt carries the campaign
// context and the required output shape.
func BuildJudgePrompt(req evaluate.JudgeRequest) string {
	var sb strings.Builder

	sb.WriteString("## Ad Evaluation Task\n\n")
	sb.WriteString("Analyze the attached advertisement image for the following context:\n")
	sb.WriteString(fmt.Sprintf("- Platform: %s\n", req.Platform))
	sb.WriteString(fmt.Sprintf("- Target Audience: %s\n", req.Audience))
	if req.Text != "" {
		sb.WriteString(fmt.Sprintf("- Text Content: %s\n", req.Text))
	} else {
		sb.WriteString("- Text Content: (none)\n")
	}
	brand := req.Brand
	if brand == "" {
		brand = "Unknown"
	}
	sb.WriteString(fmt.Sprintf("- Brand: %s\n\n", brand))

	sb.WriteString("### Criteria (score 0-10 each)\n\n")
	sb.WriteString("1. visual_appeal: How attractive and eye-catching is the image?\n")
	sb.WriteString("2. brand_alignment: Does it fit the brand aesthetic and values?\n")
	sb.WriteString(fmt.Sprintf("3. platform_optimization: Is it optimized for %s?\n", req.Platform))
	sb.WriteString("4. audience_relevance: How well does it target the specified audience?\n")
	sb.WriteString("5. cta_clarity: How clear and compelling is the message?\n\n")

	sb.WriteString("Provide specific suggestions for improvement.\n\n")
	sb.WriteString("### Required Output\n\n")
	sb.WriteString("Respond with ONLY a JSON object of this exact shape:\n")
	sb.WriteString(`{
  "visual_appeal": 0.0,
  "brand_alignment": 0.0,
  "platform_optimization": 0.0,
  "audience_relevance": 0.0,
  "cta_clarity": 0.0,
  "overall_rating": 0.0,
  "strengths": ["..."],
  "improvements": ["..."],
  "engagement_prediction": "high|medium|low"
}`)

	return sb.String()
}
