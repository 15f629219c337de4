// Package judge scores ad creatives with Gemini. The model receives the
// rendered image inline plus the campaign context and returns a structured
// JSON verdict on a 0-10 scale per criterion.
package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/fpang/adforge/internal/evaluate"
	"github.com/fpang/adforge/internal/jsonutil"
	"github.com/fpang/adforge/internal/metrics"
)

// requestsPerMinute caps outbound Gemini calls so batch evaluations stay
// inside the free-tier quota.
const requestsPerMinute = 10

// GeminiJudge implements evaluate.Judge against the Gemini API.
type GeminiJudge struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewGemini creates a judge backed by the Gemini API. The model name comes
// from GEMINI_MODEL when set, otherwise the package default.
func NewGemini(ctx context.Context, apiKey string) (*GeminiJudge, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiJudge{
		client:    client,
		modelName: GetModelName(),
		limiter:   rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), 2),
	}, nil
}

// Client exposes the underlying Gemini client for API key validation.
func (g *GeminiJudge) Client() *genai.Client {
	return g.client
}

// Judge sends the ad image and campaign context to Gemini and parses the
// structured verdict. Scores are clamped to [0, 10] before returning.
func (g *GeminiJudge) Judge(ctx context.Context, req evaluate.JudgeRequest) (*evaluate.Judgment, error) {
	if len(req.ImageData) == 0 {
		return nil, fmt.Errorf("judge request has no image data")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	prompt := BuildJudgePrompt(req)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: judgeSystemPrompt}},
		},
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{
				MIMEType: req.ImageMIME,
				Data:     req.ImageData,
			}},
			{Text: prompt},
		},
	}}

	log.Debug().
		Str("model", g.modelName).
		Str("platform", string(req.Platform)).
		Int("image_bytes", len(req.ImageData)).
		Int("prompt_length", len(prompt)).
		Msg("Starting Gemini API call for ad judgment")

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	elapsed := time.Since(start)

	m := metrics.New("judge").
		Dimension("Platform", string(req.Platform)).
		Metric("GeminiApiLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("GeminiApiCalls")
	if err != nil {
		m.Count("GeminiApiErrors")
	}
	if resp != nil && resp.UsageMetadata != nil {
		m.Metric("GeminiInputTokens", float64(resp.UsageMetadata.PromptTokenCount), metrics.UnitCount)
		m.Metric("GeminiOutputTokens", float64(resp.UsageMetadata.CandidatesTokenCount), metrics.UnitCount)
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Failed to generate ad judgment from Gemini")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || resp.Text() == "" {
		log.Warn().Dur("duration", elapsed).Msg("Received empty response from Gemini")
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	log.Debug().
		Int("response_length", len(resp.Text())).
		Dur("duration", elapsed).
		Msg("Gemini API response received for ad judgment")

	judgment, err := parseJudgeResponse(resp.Text())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("platform", string(req.Platform)).
		Float64("overall_rating", judgment.OverallRating).
		Str("engagement", judgment.EngagementPrediction).
		Dur("duration", elapsed).
		Msg("Ad judgment complete")

	return judgment, nil
}

// parseJudgeResponse extracts and parses the JSON verdict from Gemini's response.
func parseJudgeResponse(response string) (*evaluate.Judgment, error) {
	judgment, err := jsonutil.ParseObject[evaluate.Judgment](response)
	if err != nil {
		log.Error().Err(err).Str("response", response).Msg("Failed to parse judgment response")
		return nil, fmt.Errorf("judgment response: %w", err)
	}
	judgment.Sanitize()
	return &judgment, nil
}
