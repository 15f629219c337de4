package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/adforge/internal/auth"
	"github.com/fpang/adforge/internal/evaluate"
	"github.com/fpang/adforge/internal/generate"
	"github.com/fpang/adforge/internal/imageio"
	"github.com/fpang/adforge/internal/judge"
	"github.com/fpang/adforge/internal/logging"
	"github.com/fpang/adforge/internal/pipeline"
	"github.com/fpang/adforge/internal/platform"
)

// CLI flags
var (
	imageFlag      string
	platformFlag   string
	textFlag       string
	primaryFlag    string
	backgroundFlag string
	outputFlag     string
	previewFlag    bool
	audienceFlag   string
	brandFlag      string
	noJudgeFlag    bool
	promptFlag     string
	styleFlag      string
	variationsFlag int
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "adforge",
	Short: "Platform conformance and AI evaluation for ad images",
	Long: `AdForge conforms ad images to social platform requirements and scores them.

The conform pipeline resizes an image to exact platform dimensions, applies
platform enhancements, optionally overlays caption text, and compresses the
result under the platform's byte ceiling. The evaluate pipeline blends a
deterministic visual analysis with an AI judgment into a composite report.

Examples:
  adforge conform -i ad.png -p instagram --text "Summer Sale" -o out/
  adforge conform -i ad.png -p all -o out/
  adforge evaluate -i out/ad_instagram.jpg -p instagram --audience "young professionals"
  adforge validate -i out/ad_instagram.jpg -p instagram
  adforge prompt --prompt "coffee shop storefront" --style luxury -p pinterest
  adforge generate --prompt "coffee shop storefront" --style luxury -p instagram -o out/`,
}

var conformCmd = &cobra.Command{
	Use:   "conform",
	Short: "Conform an image to one platform or all platforms",
	Run:   runConform,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score an ad image with visual analysis plus an AI judgment",
	Run:   runEvaluate,
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Enhance an ad brief into a generation-ready prompt",
	Run:   runPrompt,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a base image from a brief and conform it",
	Run:   runGenerate,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an existing artifact against platform requirements",
	Run:   runValidate,
}

func init() {
	conformCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Input image path (required)")
	conformCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Target platform, or 'all' (required)")
	conformCmd.Flags().StringVar(&textFlag, "text", "", "Caption text to overlay")
	conformCmd.Flags().StringVar(&primaryFlag, "primary-color", "", "Primary brand color (hex)")
	conformCmd.Flags().StringVar(&backgroundFlag, "background-color", "", "Background brand color (hex)")
	conformCmd.Flags().StringVarP(&outputFlag, "output", "o", ".", "Output directory")
	conformCmd.Flags().BoolVar(&previewFlag, "preview", false, "Write a WebP preview next to each artifact")
	conformCmd.MarkFlagRequired("image")
	conformCmd.MarkFlagRequired("platform")

	evaluateCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Ad image path (required)")
	evaluateCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Target platform (required)")
	evaluateCmd.Flags().StringVar(&textFlag, "text", "", "Caption text on the ad")
	evaluateCmd.Flags().StringVar(&audienceFlag, "audience", "general audience", "Target audience description")
	evaluateCmd.Flags().StringVar(&brandFlag, "brand", "", "Brand name")
	evaluateCmd.Flags().BoolVar(&noJudgeFlag, "no-judge", false, "Skip the AI judge and use the neutral default verdict")
	evaluateCmd.MarkFlagRequired("image")
	evaluateCmd.MarkFlagRequired("platform")

	promptCmd.Flags().StringVar(&promptFlag, "prompt", "", "Ad brief to enhance (required)")
	promptCmd.Flags().StringVar(&styleFlag, "style", string(generate.DefaultStyle), "Ad style: minimalist, luxury, street, sustainable, bold")
	promptCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Target platform (required)")
	promptCmd.Flags().IntVar(&variationsFlag, "variations", 0, "Also print up to N prompt variations")
	promptCmd.MarkFlagRequired("prompt")
	promptCmd.MarkFlagRequired("platform")

	generateCmd.Flags().StringVar(&promptFlag, "prompt", "", "Ad brief to generate from (required)")
	generateCmd.Flags().StringVar(&styleFlag, "style", string(generate.DefaultStyle), "Ad style: minimalist, luxury, street, sustainable, bold")
	generateCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Target platform, or 'all' (required)")
	generateCmd.Flags().StringVar(&textFlag, "text", "", "Caption text to overlay")
	generateCmd.Flags().StringVar(&primaryFlag, "primary-color", "", "Primary brand color (hex)")
	generateCmd.Flags().StringVar(&backgroundFlag, "background-color", "", "Background brand color (hex)")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", ".", "Output directory")
	generateCmd.Flags().BoolVar(&previewFlag, "preview", false, "Write a WebP preview next to each artifact")
	generateCmd.MarkFlagRequired("prompt")
	generateCmd.MarkFlagRequired("platform")

	validateCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Artifact path (required)")
	validateCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Target platform (required)")
	validateCmd.MarkFlagRequired("image")
	validateCmd.MarkFlagRequired("platform")

	rootCmd.AddCommand(conformCmd, evaluateCmd, promptCmd, generateCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runConform loads the input image and conforms it for one or all platforms.
func runConform(cmd *cobra.Command, args []string) {
	logging.Init()

	img, err := imageio.Load(imageFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", imageFlag).Msg("failed to load input image")
	}

	opts := pipeline.Options{
		Text:            textFlag,
		PrimaryColor:    primaryFlag,
		BackgroundColor: backgroundFlag,
		OutputDir:       outputFlag,
		Preview:         previewFlag,
	}

	var artifacts []*pipeline.Artifact
	if platformFlag == "all" {
		artifacts, err = pipeline.ConformAll(img, opts)
	} else {
		var id platform.ID
		id, err = platform.Parse(platformFlag)
		if err == nil {
			var artifact *pipeline.Artifact
			artifact, err = pipeline.Conform(img, id, opts)
			if artifact != nil {
				artifacts = append(artifacts, artifact)
			}
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("conform failed")
	}

	printJSON(artifacts)
}

// runEvaluate scores an ad image, with the AI judge unless --no-judge is set
// or no API key is available.
func runEvaluate(cmd *cobra.Command, args []string) {
	logging.Init()
	ctx := context.Background()

	img, err := imageio.Load(imageFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", imageFlag).Msg("failed to load ad image")
	}

	id, err := platform.Parse(platformFlag)
	if err != nil {
		log.Fatal().Err(err).Str("platform", platformFlag).Msg("unknown platform")
	}

	evaluator := evaluate.New(buildJudge(ctx))

	report, err := evaluator.Evaluate(ctx, img, textFlag, id, audienceFlag, brandFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	printJSON(report)
}

// buildJudge returns the AI judge, or nil when judging is disabled or no key
// is configured. A nil judge yields the neutral default verdict.
func buildJudge(ctx context.Context) evaluate.Judge {
	if noJudgeFlag {
		log.Info().Msg("AI judge disabled, reports will carry the neutral default verdict")
		return nil
	}

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Warn().Err(err).Msg("No API key, reports will carry the neutral default verdict")
		return nil
	}

	gemini, err := judge.NewGemini(ctx, apiKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create Gemini judge, reports will carry the neutral default verdict")
		return nil
	}

	if err := auth.ValidateAPIKey(ctx, gemini.Client()); err != nil {
		handleValidationError(err)
	}

	return judge.NewCaching(gemini)
}

// runPrompt prints the enhanced prompt and optional variations.
func runPrompt(cmd *cobra.Command, args []string) {
	logging.Init()

	id, err := platform.Parse(platformFlag)
	if err != nil {
		log.Fatal().Err(err).Str("platform", platformFlag).Msg("unknown platform")
	}
	spec, err := platform.Lookup(id)
	if err != nil {
		log.Fatal().Err(err).Msg("platform lookup failed")
	}

	enhanced := generate.EnhancePrompt(promptFlag, generate.ParseStyle(styleFlag), spec)
	fmt.Println(enhanced)

	for _, v := range generate.VariationPrompts(promptFlag, variationsFlag) {
		fmt.Println(generate.EnhancePrompt(v, generate.ParseStyle(styleFlag), spec))
	}
}

// runGenerate enhances the brief, generates a base image via Gemini, then
// conforms it for the requested platform(s).
func runGenerate(cmd *cobra.Command, args []string) {
	logging.Init()
	ctx := context.Background()

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to retrieve API key")
	}

	// Enhance against the first requested platform; conform handles the rest.
	targetID := platform.Instagram
	if platformFlag != "all" {
		targetID, err = platform.Parse(platformFlag)
		if err != nil {
			log.Fatal().Err(err).Str("platform", platformFlag).Msg("unknown platform")
		}
	}
	spec, err := platform.Lookup(targetID)
	if err != nil {
		log.Fatal().Err(err).Msg("platform lookup failed")
	}

	enhanced := generate.EnhancePrompt(promptFlag, generate.ParseStyle(styleFlag), spec)

	generator := generate.NewGeminiGenerator(apiKey)
	result, err := generator.Generate(ctx, enhanced)
	if err != nil {
		log.Fatal().Err(err).Msg("image generation failed")
	}

	img, err := imageio.Decode(bytes.NewReader(result.ImageData))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode generated image")
	}

	opts := pipeline.Options{
		Text:            textFlag,
		PrimaryColor:    primaryFlag,
		BackgroundColor: backgroundFlag,
		OutputDir:       outputFlag,
		Preview:         previewFlag,
	}

	var artifacts []*pipeline.Artifact
	if platformFlag == "all" {
		artifacts, err = pipeline.ConformAll(img, opts)
	} else {
		var artifact *pipeline.Artifact
		artifact, err = pipeline.Conform(img, targetID, opts)
		if artifact != nil {
			artifacts = append(artifacts, artifact)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("conform failed")
	}

	printJSON(artifacts)
}

// runValidate reports how an existing artifact measures up against a
// platform's requirements.
func runValidate(cmd *cobra.Command, args []string) {
	logging.Init()

	id, err := platform.Parse(platformFlag)
	if err != nil {
		log.Fatal().Err(err).Str("platform", platformFlag).Msg("unknown platform")
	}
	spec, err := platform.Lookup(id)
	if err != nil {
		log.Fatal().Err(err).Msg("platform lookup failed")
	}

	report, err := platform.ValidateCompliance(imageFlag, spec)
	if err != nil {
		log.Fatal().Err(err).Str("path", imageFlag).Msg("compliance check failed")
	}

	printJSON(report)
}

// printJSON pretty-prints a result to stdout.
func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal result")
	}
	fmt.Println(string(data))
}

// handleValidationError processes validation errors and exits with appropriate messaging.
func handleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Msg("No API key configured. Set GEMINI_API_KEY")
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	os.Exit(1)
}
