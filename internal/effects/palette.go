package effects

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/jmylchreest/prefstore/internal/assets"
	"github.com/jmylchreest/prefstore/internal/models"
)

var (
	// blockPatterns extract the variable block of each theme selector.
	blockPatterns = map[models.Theme]*regexp.Regexp{
		models.ThemeLight:   regexp.MustCompile(`(?s):root\s*\{([^}]+)\}`),
		models.ThemeDark:    regexp.MustCompile(`(?s)\.dark\s*\{([^}]+)\}`),
		models.ThemeHCLight: regexp.MustCompile(`(?s)\.hc-light\s*\{([^}]+)\}`),
		models.ThemeHCDark:  regexp.MustCompile(`(?s)\.hc-dark\s*\{([^}]+)\}`),
	}
	// varValuePattern extracts CSS variable name and value.
	varValuePattern = regexp.MustCompile(`(--[\w-]+)\s*:\s*([^;]+);`)
)

// Palettes maps each brand to its colors.
type Palettes map[models.Brand]models.ThemeColors

// Lookup returns the palette for a brand/theme pair. Unknown brands fall
// back to the default brand.
func (p Palettes) Lookup(brand models.Brand, theme models.Theme) (models.ThemePalette, bool) {
	colors, ok := p[brand]
	if !ok {
		colors, ok = p[models.BrandDefault]
	}
	if !ok {
		return models.ThemePalette{}, false
	}
	return colors.For(theme), true
}

// DefaultPalettes loads the embedded brand stylesheets.
func DefaultPalettes() (Palettes, error) {
	brandsFS, err := assets.GetBrandsFS()
	if err != nil {
		return nil, fmt.Errorf("accessing brand stylesheets: %w", err)
	}
	return LoadPalettes(brandsFS)
}

// LoadPalettes reads one <brand>.css per known brand from fsys.
func LoadPalettes(fsys fs.FS) (Palettes, error) {
	palettes := make(Palettes, len(models.Brands))
	for _, brand := range models.Brands {
		css, err := fs.ReadFile(fsys, string(brand)+".css")
		if err != nil {
			return nil, fmt.Errorf("reading %s stylesheet: %w", brand, err)
		}
		if err := ValidateBrandCSS(css); err != nil {
			return nil, fmt.Errorf("invalid %s stylesheet: %w", brand, err)
		}
		palettes[brand] = extractColors(css)
	}
	return palettes, nil
}

// ValidateBrandCSS checks that every theme block exists and defines the
// required variables.
func ValidateBrandCSS(css []byte) error {
	content := string(css)
	for _, theme := range models.Themes {
		match := blockPatterns[theme].FindStringSubmatch(content)
		if match == nil {
			return fmt.Errorf("missing %s block", theme)
		}
		for _, varName := range models.RequiredCSSVariables {
			if !strings.Contains(match[1], varName+":") {
				return fmt.Errorf("missing required variable %s in %s block", varName, theme)
			}
		}
	}
	return nil
}

func extractColors(css []byte) models.ThemeColors {
	content := string(css)
	block := func(theme models.Theme) models.ThemePalette {
		if match := blockPatterns[theme].FindStringSubmatch(content); match != nil {
			return extractPalette(match[1])
		}
		return models.ThemePalette{}
	}
	return models.ThemeColors{
		Light:   block(models.ThemeLight),
		Dark:    block(models.ThemeDark),
		HCLight: block(models.ThemeHCLight),
		HCDark:  block(models.ThemeHCDark),
	}
}

func extractPalette(cssBlock string) models.ThemePalette {
	palette := models.ThemePalette{}

	for _, match := range varValuePattern.FindAllStringSubmatch(cssBlock, -1) {
		if len(match) < 3 {
			continue
		}
		value := strings.TrimSpace(match[2])

		switch match[1] {
		case "--background":
			palette.Background = value
		case "--foreground":
			palette.Foreground = value
		case "--primary":
			palette.Primary = value
		case "--secondary":
			palette.Secondary = value
		case "--accent":
			palette.Accent = value
		}
	}

	return palette
}

// cssVariables returns the palette as CSS custom properties in
// models.RequiredCSSVariables order.
func cssVariables(p models.ThemePalette) [][2]string {
	return [][2]string{
		{"--background", p.Background},
		{"--foreground", p.Foreground},
		{"--primary", p.Primary},
		{"--secondary", p.Secondary},
		{"--accent", p.Accent},
	}
}
