package state

import "github.com/jmylchreest/prefstore/internal/models"

// Reduce applies in to both slices.
func Reduce(s State, in Intent) State {
	return State{
		Theme:       ReduceTheme(s.Theme, in),
		Preferences: ReducePreferences(s.Preferences, in),
	}
}

// ReduceAll applies intents in order.
func ReduceAll(s State, intents ...Intent) State {
	for _, in := range intents {
		s = Reduce(s, in)
	}
	return s
}

// ReduceTheme computes the next theme slice.
func ReduceTheme(s models.ThemeState, in Intent) models.ThemeState {
	switch in := in.(type) {
	case SetTheme:
		s.Theme = in.Theme
		s.AutoTheme = false
	case SetBrand:
		s.Brand = in.Brand
	case ToggleTheme:
		s.Theme = s.Theme.Toggled()
		s.AutoTheme = false
	case SetAutoTheme:
		s.AutoTheme = in.Enabled
		if in.Enabled {
			detected := in.Detected
			if !detected.IsKnown() {
				detected = s.SystemPreference
			}
			if !detected.IsKnown() {
				detected = models.ColorSchemeLight
			}
			s.SystemPreference = detected
			s.Theme = detected.Theme()
		}
	case UpdateSystemPreference:
		if !in.Preference.IsKnown() {
			return s
		}
		s.SystemPreference = in.Preference
		if s.AutoTheme {
			s.Theme = in.Preference.Theme()
		}
	case InitializeTheme:
		if in.Theme != nil {
			s.Theme = *in.Theme
		}
		if in.Brand != nil {
			s.Brand = *in.Brand
		}
		if in.AutoTheme != nil {
			s.AutoTheme = *in.AutoTheme
		}
		if in.Detected.IsKnown() {
			s.SystemPreference = in.Detected
		}
		if s.AutoTheme {
			s.Theme = s.SystemPreference.Theme()
		}
	}
	return s
}

// ReducePreferences computes the next preferences slice.
func ReducePreferences(s models.UserPreferencesState, in Intent) models.UserPreferencesState {
	switch in := in.(type) {
	case SetSidebarCollapsed:
		s.SidebarCollapsed = in.Collapsed
	case ToggleSidebar:
		s.SidebarCollapsed = !s.SidebarCollapsed
	case SetReducedMotion:
		s.ReducedMotion = in.Enabled
	case SetHighContrast:
		s.HighContrast = in.Enabled
	case SetFontSize:
		s.FontSize = in.Size
	case SetLanguage:
		s.Language = in.Language
	case SetNotificationPreferences:
		s.Notifications = in.Patch.Merge(s.Notifications)
	case SetAccessibilityPreferences:
		s.Accessibility = in.Patch.Merge(s.Accessibility)
	case InitializePreferences:
		s = in.Patch.Merge(s)
	case ResetPreferences:
		s = models.DefaultPreferences()
	}
	return s
}
