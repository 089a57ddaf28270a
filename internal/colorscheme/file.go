package colorscheme

import (
	"context"
	"os"

	"github.com/jmylchreest/prefstore/internal/models"
)

// FileDetector reads a file holding "dark" or "light". Desktop hooks or
// scripts can write it to drive the preference.
type FileDetector struct {
	Path string
}

// NewFileDetector creates a FileDetector for path.
func NewFileDetector(path string) *FileDetector {
	return &FileDetector{Path: path}
}

// Name implements Detector.
func (f *FileDetector) Name() string { return "file" }

// Detect implements Detector.
func (f *FileDetector) Detect(ctx context.Context) (models.ColorScheme, bool) {
	if ctx.Err() != nil || f.Path == "" {
		return models.ColorSchemeUnknown, false
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return models.ColorSchemeUnknown, false
	}
	return ParseColorScheme(string(data))
}
