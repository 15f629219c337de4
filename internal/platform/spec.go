// Package platform holds the static per-platform constraint table that drives
// image conformance: target dimensions, byte-size ceilings, compression
// starting points and optional visual boosts.
package platform

import (
	"errors"
	"fmt"
)

// ID identifies a supported social media platform.
type ID string

// Supported platforms. The set is closed: anything else is rejected with
// ErrUnknownPlatform before any processing begins.
const (
	Instagram      ID = "instagram"
	InstagramStory ID = "instagram_story"
	TikTok         ID = "tiktok"
	Facebook       ID = "facebook"
	Pinterest      ID = "pinterest"
)

// ErrUnknownPlatform is returned when a platform id is not in the supported set.
var ErrUnknownPlatform = errors.New("unknown platform")

// Spec describes the geometric and quality constraints of one platform.
// Platform-specific behavior lives in these optional fields, consulted
// uniformly by the pipeline, not in per-platform branches.
type Spec struct {
	ID           ID
	TargetWidth  int
	TargetHeight int

	// MaxBytes is the platform's file size ceiling for the compressed artifact.
	MaxBytes int64

	// BaseQuality is the JPEG quality the compression ladder starts from.
	// The ladder steps down by QualityStep until the artifact fits MaxBytes
	// or quality reaches MinQuality.
	BaseQuality int

	// SaturationBoost is a multiplier applied during enhancement when > 0
	// (e.g. 1.2 means +20% saturation).
	SaturationBoost float64

	// BrightnessBoost is a multiplier applied during enhancement when > 0.
	BrightnessBoost float64

	// Sharpen enables a subtle unsharp pass for platforms that favor crisp
	// vertical video stills.
	Sharpen bool

	// PromptSuffix is appended to generation prompts to steer the base image
	// toward this platform's format.
	PromptSuffix string
}

// Compression ladder bounds shared by all platforms.
const (
	// QualityStep is how much the JPEG quality drops per compression iteration.
	QualityStep = 10

	// MinQuality is the hard floor below which compression never goes.
	MinQuality = 10
)

// IsTall reports whether the platform frame is a tall format
// (height > 1.3x width). Tall frames place overlay text in the lower quarter.
func (s Spec) IsTall() bool {
	return float64(s.TargetHeight) > 1.3*float64(s.TargetWidth)
}

// AspectRatio returns width/height of the target frame.
func (s Spec) AspectRatio() float64 {
	return float64(s.TargetWidth) / float64(s.TargetHeight)
}

const mib = 1024 * 1024

// specs is the process-wide registry, loaded once and never mutated.
var specs = map[ID]Spec{
	Instagram: {
		ID:           Instagram,
		TargetWidth:  1080,
		TargetHeight: 1080,
		MaxBytes:     30 * mib,
		BaseQuality:  85,
		PromptSuffix: "Instagram-ready, square format, eye-catching",
	},
	InstagramStory: {
		ID:           InstagramStory,
		TargetWidth:  1080,
		TargetHeight: 1920,
		MaxBytes:     30 * mib,
		BaseQuality:  85,
		Sharpen:      true,
		PromptSuffix: "vertical story format, mobile-optimized",
	},
	TikTok: {
		ID:              TikTok,
		TargetWidth:     1080,
		TargetHeight:    1920,
		MaxBytes:        10 * mib,
		BaseQuality:     80,
		SaturationBoost: 1.2,
		Sharpen:         true,
		PromptSuffix:    "vertical video-style, trendy, Gen-Z appealing",
	},
	Facebook: {
		ID:           Facebook,
		TargetWidth:  1200,
		TargetHeight: 630,
		MaxBytes:     8 * mib,
		BaseQuality:  85,
		PromptSuffix: "horizontal format, professional, engaging",
	},
	Pinterest: {
		ID:              Pinterest,
		TargetWidth:     1000,
		TargetHeight:    1500,
		MaxBytes:        20 * mib,
		BaseQuality:     90,
		BrightnessBoost: 1.1,
		PromptSuffix:    "pin-worthy, vertical format, inspiring",
	},
}

// Lookup returns the Spec for a platform id.
func Lookup(id ID) (Spec, error) {
	spec, ok := specs[id]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, id)
	}
	return spec, nil
}

// Parse validates a raw platform string and returns its ID.
func Parse(raw string) (ID, error) {
	id := ID(raw)
	if _, ok := specs[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, raw)
	}
	return id, nil
}

// All returns every supported spec in a stable order.
func All() []Spec {
	ids := []ID{Instagram, InstagramStory, TikTok, Facebook, Pinterest}
	out := make([]Spec, 0, len(ids))
	for _, id := range ids {
		out = append(out, specs[id])
	}
	return out
}
