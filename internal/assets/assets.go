// Package assets embeds the brand stylesheets.
//
// Each brand is one CSS file under brands/ with a :root block for the light
// theme and .dark, .hc-light and .hc-dark blocks for the other themes. Every
// block must define the variables in models.RequiredCSSVariables.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/jmylchreest/prefstore/internal/models"
)

// StylesheetContentType is served with every brand stylesheet.
const StylesheetContentType = "text/css; charset=utf-8"

//go:embed brands/*.css
var embedded embed.FS

// GetBrandsFS returns the stylesheets as a filesystem of <brand>.css files.
func GetBrandsFS() (fs.FS, error) {
	return fs.Sub(embedded, "brands")
}

// BrandCSS returns the stylesheet of a known brand.
func BrandCSS(brand models.Brand) ([]byte, error) {
	if !brand.IsValid() {
		return nil, fmt.Errorf("unknown brand %q", brand)
	}
	css, err := embedded.ReadFile(path.Join("brands", string(brand)+".css"))
	if err != nil {
		return nil, fmt.Errorf("reading %s stylesheet: %w", brand, err)
	}
	return css, nil
}

// ListBrands returns the brands that ship a stylesheet, in file name order.
func ListBrands() ([]models.Brand, error) {
	matches, err := fs.Glob(embedded, "brands/*.css")
	if err != nil {
		return nil, err
	}
	brands := make([]models.Brand, 0, len(matches))
	for _, m := range matches {
		brands = append(brands, models.Brand(strings.TrimSuffix(path.Base(m), ".css")))
	}
	return brands, nil
}
