// Package overlay composites caption text onto ad images. Placement follows
// the platform aspect class: tall frames put text in the lower quarter where
// vertical-video UI expects it, wide and square frames center it.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Spec describes one caption overlay.
type Spec struct {
	// Text is the caption. Empty text makes Place a no-op.
	Text string

	// PrimaryColor is a hex color ("#RRGGBB") for the text and border.
	// Empty or unparsable values fall back to black.
	PrimaryColor string

	// BackgroundColor is a hex color for the box behind the text.
	// Empty or unparsable values fall back to white.
	BackgroundColor string

	// TallFrame selects lower-quarter placement; wide/square frames center
	// the caption vertically.
	TallFrame bool
}

// padding is the margin between the text bounds and its background box.
const padding = 20

// borderWidth is the width of the box border drawn in the primary color.
const borderWidth = 2

var (
	regularFont     *opentype.Font
	regularFontOnce sync.Once
)

// captionFace builds a scalable face at the given size, falling back to the
// built-in bitmap face when the scalable font cannot be prepared. The
// fallback degrades typography but never fails.
func captionFace(size float64) font.Face {
	regularFontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to parse embedded font, captions will use the bitmap fallback")
			return
		}
		regularFont = f
	})

	if regularFont != nil {
		face, err := opentype.NewFace(regularFont, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return face
		}
		log.Warn().Err(err).Float64("size", size).Msg("Failed to create scaled font face, falling back")
	}
	return basicfont.Face7x13
}

// Place composites the caption onto the image and returns the composited
// copy. The input buffer is not modified. Empty text returns the input
// unchanged.
func Place(img image.Image, spec Spec) image.Image {
	if spec.Text == "" {
		return img
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	fontSize := float64(height) / 20
	if fontSize < 40 {
		fontSize = 40
	}
	face := captionFace(fontSize)

	textBounds, _ := font.BoundString(face, spec.Text)
	textWidth := (textBounds.Max.X - textBounds.Min.X).Ceil()
	textHeight := (textBounds.Max.Y - textBounds.Min.Y).Ceil()

	x := (width - textWidth) / 2
	var y int
	if spec.TallFrame {
		// Lower quarter, clear of vertical-video UI chrome.
		y = height - height/4 - textHeight
	} else {
		y = (height - textHeight) / 2
	}

	textColor := parseHexColor(spec.PrimaryColor, color.RGBA{A: 255})
	bgColor := parseHexColor(spec.BackgroundColor, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	box := image.Rect(x-padding, y-padding, x+textWidth+padding, y+textHeight+padding).
		Intersect(out.Bounds())
	draw.Draw(out, box, image.NewUniform(textColor), image.Point{}, draw.Src)
	inner := image.Rect(box.Min.X+borderWidth, box.Min.Y+borderWidth,
		box.Max.X-borderWidth, box.Max.Y-borderWidth)
	draw.Draw(out, inner, image.NewUniform(bgColor), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(textColor),
		Face: face,
		// BoundString's Min is relative to the baseline origin, so shifting
		// by -Min.Y lands the glyph box's top edge on y.
		Dot: fixed.Point26_6{
			X: fixed.I(x) - textBounds.Min.X,
			Y: fixed.I(y) - textBounds.Min.Y,
		},
	}
	drawer.DrawString(spec.Text)

	log.Debug().
		Str("text", spec.Text).
		Int("x", x).
		Int("y", y).
		Bool("tall_frame", spec.TallFrame).
		Float64("font_size", fontSize).
		Msg("Caption overlay placed")

	return out
}

// parseHexColor parses "#RRGGBB" (the leading # is optional) and returns the
// fallback for anything it cannot parse.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return fallback
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[i*2])
		lo, ok2 := hexNibble(s[i*2+1])
		if !ok1 || !ok2 {
			return fallback
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
