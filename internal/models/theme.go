package models

// Theme is the visual theme applied to the UI.
// The hc-* variants are the high-contrast members of each contrast family.
type Theme string

const (
	ThemeLight   Theme = "light"
	ThemeDark    Theme = "dark"
	ThemeHCLight Theme = "hc-light"
	ThemeHCDark  Theme = "hc-dark"
)

// Themes lists every supported theme in display order.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeHCLight, ThemeHCDark}

// IsValid reports whether t is one of the supported themes.
func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeHCLight, ThemeHCDark:
		return true
	}
	return false
}

// IsDark reports whether the theme renders light text on a dark background.
func (t Theme) IsDark() bool {
	return t == ThemeDark || t == ThemeHCDark
}

// IsHighContrast reports whether the theme belongs to the high-contrast family.
func (t Theme) IsHighContrast() bool {
	return t == ThemeHCLight || t == ThemeHCDark
}

// Toggled returns the opposite theme within the same contrast family.
func (t Theme) Toggled() Theme {
	switch t {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeLight
	case ThemeHCLight:
		return ThemeHCDark
	case ThemeHCDark:
		return ThemeHCLight
	}
	return t
}

// Brand is the visual brand skin. It is orthogonal to Theme.
type Brand string

const (
	BrandDefault   Brand = "default"
	BrandVibrant   Brand = "vibrant"
	BrandCorporate Brand = "corporate"
)

// Brands lists every supported brand.
var Brands = []Brand{BrandDefault, BrandVibrant, BrandCorporate}

// IsValid reports whether b is one of the supported brands.
func (b Brand) IsValid() bool {
	switch b {
	case BrandDefault, BrandVibrant, BrandCorporate:
		return true
	}
	return false
}

// ColorScheme is the operating system's light/dark preference.
// The zero value means the preference has not been detected yet.
type ColorScheme string

const (
	ColorSchemeUnknown ColorScheme = ""
	ColorSchemeLight   ColorScheme = "light"
	ColorSchemeDark    ColorScheme = "dark"
)

// IsKnown reports whether the scheme holds a detected value.
func (c ColorScheme) IsKnown() bool {
	return c == ColorSchemeLight || c == ColorSchemeDark
}

// Theme returns the non high-contrast theme matching the scheme.
func (c ColorScheme) Theme() Theme {
	if c == ColorSchemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeState is the theme slice of the store.
//
// When AutoTheme is true, Theme is either light or dark and equals the most
// recent SystemPreference.
type ThemeState struct {
	Theme            Theme       `json:"theme"`
	Brand            Brand       `json:"brand"`
	SystemPreference ColorScheme `json:"systemPreference,omitempty"`
	AutoTheme        bool        `json:"autoTheme"`
}

// DefaultThemeState returns the hard-coded theme defaults.
func DefaultThemeState() ThemeState {
	return ThemeState{
		Theme:     ThemeLight,
		Brand:     BrandDefault,
		AutoTheme: false,
	}
}

// ThemePatch carries optional theme slice fields. Nil fields are absent.
// It is also the persisted projection of the theme slice.
type ThemePatch struct {
	Theme     *Theme `json:"theme,omitempty"`
	Brand     *Brand `json:"brand,omitempty"`
	AutoTheme *bool  `json:"autoTheme,omitempty"`
}

// IsEmpty reports whether no field is present.
func (p ThemePatch) IsEmpty() bool {
	return p.Theme == nil && p.Brand == nil && p.AutoTheme == nil
}

// ThemePalette holds color values for a single mode (light or dark).
type ThemePalette struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
}

// ThemeColors holds the palettes of one brand for every theme.
type ThemeColors struct {
	Light   ThemePalette `json:"light"`
	Dark    ThemePalette `json:"dark"`
	HCLight ThemePalette `json:"hc_light"`
	HCDark  ThemePalette `json:"hc_dark"`
}

// For returns the palette used by the given theme.
func (c ThemeColors) For(t Theme) ThemePalette {
	switch t {
	case ThemeDark:
		return c.Dark
	case ThemeHCLight:
		return c.HCLight
	case ThemeHCDark:
		return c.HCDark
	}
	return c.Light
}

// RequiredCSSVariables lists the CSS variables every palette projects.
var RequiredCSSVariables = []string{
	"--background",
	"--foreground",
	"--primary",
	"--secondary",
	"--accent",
}

// Ptr returns a pointer to v. Useful for building patches.
func Ptr[T any](v T) *T {
	return &v
}
