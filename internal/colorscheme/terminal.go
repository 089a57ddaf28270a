package colorscheme

import (
	"context"
	"os"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TerminalDetector infers the scheme from the terminal background color.
// It only answers when out is an interactive terminal.
type TerminalDetector struct {
	out *os.File
}

// NewTerminalDetector creates a TerminalDetector probing out. A nil out uses stdout.
func NewTerminalDetector(out *os.File) *TerminalDetector {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDetector{out: out}
}

// Name implements Detector.
func (d *TerminalDetector) Name() string { return "terminal" }

// Detect implements Detector.
func (d *TerminalDetector) Detect(ctx context.Context) (models.ColorScheme, bool) {
	if ctx.Err() != nil || !term.IsTerminal(int(d.out.Fd())) {
		return models.ColorSchemeUnknown, false
	}

	if termenv.NewOutput(d.out).HasDarkBackground() {
		return models.ColorSchemeDark, true
	}
	return models.ColorSchemeLight, true
}
