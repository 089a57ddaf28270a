// Package state holds the pure reducers for the theme and preference slices.
//
// Reducers never perform I/O and never fail: an intent they do not recognise
// leaves the slice untouched. Values read from the environment (such as the
// detected color scheme) travel inside the intent.
package state

import "github.com/jmylchreest/prefstore/internal/models"

// Intent is a named request to change state.
type Intent interface {
	Name() string
}

// State is the full store state.
type State struct {
	Theme       models.ThemeState           `json:"theme"`
	Preferences models.UserPreferencesState `json:"preferences"`
}

// Default returns the hard-coded initial state.
func Default() State {
	return State{
		Theme:       models.DefaultThemeState(),
		Preferences: models.DefaultPreferences(),
	}
}

// Theme intents.

// SetTheme selects a theme explicitly and turns automatic theming off.
type SetTheme struct{ Theme models.Theme }

// SetBrand selects the brand skin.
type SetBrand struct{ Brand models.Brand }

// ToggleTheme flips between the two themes of the current contrast family.
type ToggleTheme struct{}

// SetAutoTheme enables or disables automatic theming. Detected is the system
// preference at the moment of the request and is only used when enabling.
type SetAutoTheme struct {
	Enabled  bool
	Detected models.ColorScheme
}

// UpdateSystemPreference records a new operating system preference.
type UpdateSystemPreference struct{ Preference models.ColorScheme }

// InitializeTheme seeds the theme slice at startup.
type InitializeTheme struct {
	Theme     *models.Theme
	Brand     *models.Brand
	AutoTheme *bool
	Detected  models.ColorScheme
}

// Preference intents.

// SetSidebarCollapsed sets the sidebar collapse state.
type SetSidebarCollapsed struct{ Collapsed bool }

// ToggleSidebar flips the sidebar collapse state.
type ToggleSidebar struct{}

// SetReducedMotion sets the reduced motion override.
type SetReducedMotion struct{ Enabled bool }

// SetHighContrast sets the high contrast override.
type SetHighContrast struct{ Enabled bool }

// SetFontSize sets the base font size.
type SetFontSize struct{ Size models.FontSize }

// SetLanguage sets the locale string.
type SetLanguage struct{ Language string }

// SetNotificationPreferences merges the present fields into the notification settings.
type SetNotificationPreferences struct{ Patch models.NotificationPatch }

// SetAccessibilityPreferences merges the present fields into the accessibility settings.
type SetAccessibilityPreferences struct{ Patch models.AccessibilityPatch }

// InitializePreferences merges persisted or caller supplied values at startup.
type InitializePreferences struct{ Patch models.PreferencesPatch }

// ResetPreferences restores the preference defaults.
type ResetPreferences struct{}

func (SetTheme) Name() string                    { return "setTheme" }
func (SetBrand) Name() string                    { return "setBrand" }
func (ToggleTheme) Name() string                 { return "toggleTheme" }
func (SetAutoTheme) Name() string                { return "setAutoTheme" }
func (UpdateSystemPreference) Name() string      { return "updateSystemPreference" }
func (InitializeTheme) Name() string             { return "initializeTheme" }
func (SetSidebarCollapsed) Name() string         { return "setSidebarCollapsed" }
func (ToggleSidebar) Name() string               { return "toggleSidebar" }
func (SetReducedMotion) Name() string            { return "setReducedMotion" }
func (SetHighContrast) Name() string             { return "setHighContrast" }
func (SetFontSize) Name() string                 { return "setFontSize" }
func (SetLanguage) Name() string                 { return "setLanguage" }
func (SetNotificationPreferences) Name() string  { return "setNotificationPreferences" }
func (SetAccessibilityPreferences) Name() string { return "setAccessibilityPreferences" }
func (InitializePreferences) Name() string       { return "initializePreferences" }
func (ResetPreferences) Name() string            { return "resetPreferences" }
