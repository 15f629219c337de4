package platform

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/rs/zerolog/log"
)

// ComplianceReport lists how an existing artifact measures up against a
// platform spec. A non-compliant artifact is still usable; the report is
// advisory.
type ComplianceReport struct {
	Compliant       bool     `json:"compliant"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// ValidateCompliance checks a saved artifact's dimensions and file size
// against the platform spec and reports issues with recommendations.
func ValidateCompliance(path string, spec Spec) (*ComplianceReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat artifact: %w", err)
	}

	report := &ComplianceReport{Compliant: true}

	if cfg.Width != spec.TargetWidth || cfg.Height != spec.TargetHeight {
		report.Compliant = false
		report.Issues = append(report.Issues, fmt.Sprintf(
			"dimensions %dx%d don't match optimal %dx%d",
			cfg.Width, cfg.Height, spec.TargetWidth, spec.TargetHeight))
		report.Recommendations = append(report.Recommendations,
			"resize image to optimal dimensions")
	}

	if info.Size() > spec.MaxBytes {
		report.Compliant = false
		report.Issues = append(report.Issues, fmt.Sprintf(
			"file size %d bytes exceeds limit of %d bytes", info.Size(), spec.MaxBytes))
		report.Recommendations = append(report.Recommendations,
			"compress image or reduce quality")
	}

	log.Debug().
		Str("path", path).
		Str("platform", string(spec.ID)).
		Bool("compliant", report.Compliant).
		Int("issues", len(report.Issues)).
		Msg("Platform compliance check complete")

	return report, nil
}
