// Package colorscheme detects the operating system's light/dark preference
// and reports changes to it.
package colorscheme

import (
	"context"
	"strings"

	"github.com/jmylchreest/prefstore/internal/models"
)

// Detector reads the current OS color scheme from one source.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string
	// Detect returns the scheme and whether the source had an answer.
	Detect(ctx context.Context) (models.ColorScheme, bool)
}

// Detect queries detectors in order and returns the first answer together
// with the name of the detector that gave it. When no detector answers the
// result is light with an empty source.
func Detect(ctx context.Context, detectors ...Detector) (models.ColorScheme, string) {
	for _, d := range detectors {
		if d == nil {
			continue
		}
		if scheme, ok := d.Detect(ctx); ok && scheme.IsKnown() {
			return scheme, d.Name()
		}
	}
	return models.ColorSchemeLight, ""
}

// ParseColorScheme interprets the textual values used by desktop settings
// and override files.
func ParseColorScheme(s string) (models.ColorScheme, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark", "prefer-dark":
		return models.ColorSchemeDark, true
	case "light", "prefer-light", "default":
		return models.ColorSchemeLight, true
	}
	return models.ColorSchemeUnknown, false
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc struct {
	Label string
	Fn    func(ctx context.Context) (models.ColorScheme, bool)
}

// Name implements Detector.
func (f DetectorFunc) Name() string { return f.Label }

// Detect implements Detector.
func (f DetectorFunc) Detect(ctx context.Context) (models.ColorScheme, bool) {
	return f.Fn(ctx)
}
