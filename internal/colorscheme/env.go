package colorscheme

import (
	"context"
	"os"
	"strings"

	"github.com/jmylchreest/prefstore/internal/models"
)

// EnvDetector reads an explicit override variable and falls back to the
// GTK_THEME ":dark" variant suffix.
type EnvDetector struct {
	// Var holds "dark" or "light". Empty skips the override.
	Var string

	lookup func(string) (string, bool)
}

// NewEnvDetector creates an EnvDetector reading the process environment.
func NewEnvDetector(variable string) *EnvDetector {
	return &EnvDetector{Var: variable, lookup: os.LookupEnv}
}

// Name implements Detector.
func (e *EnvDetector) Name() string { return "env" }

// Detect implements Detector.
func (e *EnvDetector) Detect(_ context.Context) (models.ColorScheme, bool) {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if e.Var != "" {
		if v, ok := lookup(e.Var); ok {
			if scheme, ok := ParseColorScheme(v); ok {
				return scheme, true
			}
		}
	}

	// GTK_THEME=Adwaita:dark selects the dark variant of a theme.
	if v, ok := lookup("GTK_THEME"); ok {
		if strings.HasSuffix(strings.ToLower(v), ":dark") {
			return models.ColorSchemeDark, true
		}
	}

	return models.ColorSchemeUnknown, false
}
