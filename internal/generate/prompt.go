// Package generate turns a campaign brief into generation-ready prompts and
// defines the boundary for text-to-image backends.
package generate

import (
	"fmt"

	"github.com/fpang/adforge/internal/platform"
)

// Style selects the aesthetic direction baked into an enhanced prompt.
type Style string

const (
	StyleMinimalist  Style = "minimalist"
	StyleLuxury      Style = "luxury"
	StyleStreet      Style = "street"
	StyleSustainable Style = "sustainable"
	StyleBold        Style = "bold"
)

// DefaultStyle is used when a brief does not name a style.
const DefaultStyle = StyleMinimalist

// styleFragments maps each style to the descriptors appended to the prompt.
var styleFragments = map[Style]string{
	StyleMinimalist:  "clean, minimal, simple composition, white space, modern",
	StyleLuxury:      "elegant, sophisticated, premium materials, gold accents, high-end",
	StyleStreet:      "urban, edgy, graffiti-inspired, vibrant colors, contemporary",
	StyleSustainable: "natural, eco-friendly, green elements, organic textures",
	StyleBold:        "vibrant colors, high contrast, dynamic composition, energetic",
}

// commercialSuffix closes every enhanced prompt with the production qualifiers
// that push image models toward ad-grade output.
const commercialSuffix = "advertising photography, professional quality, product photography style, commercial use, 4K resolution"

// ParseStyle maps a raw style name to a known Style, defaulting to minimalist
// for unknown or empty input.
func ParseStyle(raw string) Style {
	s := Style(raw)
	if _, ok := styleFragments[s]; ok {
		return s
	}
	return DefaultStyle
}

// Styles returns the known style names in a stable order.
func Styles() []Style {
	return []Style{StyleMinimalist, StyleLuxury, StyleStreet, StyleSustainable, StyleBold}
}

// EnhancePrompt composes the user's prompt with style descriptors, the
// platform's format suffix, and the commercial qualifiers.
func EnhancePrompt(prompt string, style Style, spec platform.Spec) string {
	fragment, ok := styleFragments[style]
	if !ok {
		fragment = styleFragments[DefaultStyle]
	}
	return fmt.Sprintf("%s, %s, %s, %s", prompt, fragment, spec.PromptSuffix, commercialSuffix)
}

// VariationPrompts derives up to count prompt variations from a base prompt,
// each steering the image model toward a different photographic treatment.
func VariationPrompts(base string, count int) []string {
	derivations := []string{
		base + ", professional photography style",
		base + ", artistic composition, creative angle",
		base + ", lifestyle photography, authentic feel",
	}
	if count < 0 {
		count = 0
	}
	if count > len(derivations) {
		count = len(derivations)
	}
	return derivations[:count]
}
