package state

import (
	"testing"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestReduceTheme_ToggleIsSelfInverse(t *testing.T) {
	for _, theme := range models.Themes {
		t.Run(string(theme), func(t *testing.T) {
			s := models.DefaultThemeState()
			s.Theme = theme

			once := ReduceTheme(s, ToggleTheme{})
			twice := ReduceTheme(once, ToggleTheme{})

			assert.NotEqual(t, theme, once.Theme)
			assert.Equal(t, theme.IsHighContrast(), once.Theme.IsHighContrast(), "toggle must stay in the contrast family")
			assert.Equal(t, theme, twice.Theme)
		})
	}
}

func TestReduceTheme_ToggleClearsAutoTheme(t *testing.T) {
	s := models.ThemeState{Theme: models.ThemeDark, Brand: models.BrandDefault, SystemPreference: models.ColorSchemeDark, AutoTheme: true}

	next := ReduceTheme(s, ToggleTheme{})

	assert.Equal(t, models.ThemeLight, next.Theme)
	assert.False(t, next.AutoTheme)
}

func TestReduceTheme_SetThemeClearsAutoTheme(t *testing.T) {
	s := models.ThemeState{Theme: models.ThemeLight, Brand: models.BrandDefault, SystemPreference: models.ColorSchemeLight, AutoTheme: true}

	next := ReduceTheme(s, SetTheme{Theme: models.ThemeDark})

	assert.Equal(t, models.ThemeDark, next.Theme)
	assert.False(t, next.AutoTheme)
}

func TestReduceTheme_SetBrandKeepsAutoTheme(t *testing.T) {
	s := models.ThemeState{Theme: models.ThemeDark, Brand: models.BrandDefault, SystemPreference: models.ColorSchemeDark, AutoTheme: true}

	next := ReduceTheme(s, SetBrand{Brand: models.BrandCorporate})

	assert.Equal(t, models.BrandCorporate, next.Brand)
	assert.True(t, next.AutoTheme)
	assert.Equal(t, models.ThemeDark, next.Theme)
}

func TestReduceTheme_EnableAutoThemeFollowsDetected(t *testing.T) {
	tests := []struct {
		name     string
		prior    models.Theme
		detected models.ColorScheme
		want     models.Theme
	}{
		{"light to dark", models.ThemeLight, models.ColorSchemeDark, models.ThemeDark},
		{"dark to light", models.ThemeDark, models.ColorSchemeLight, models.ThemeLight},
		{"high contrast replaced", models.ThemeHCDark, models.ColorSchemeLight, models.ThemeLight},
		{"hc light to dark", models.ThemeHCLight, models.ColorSchemeDark, models.ThemeDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultThemeState()
			s.Theme = tt.prior

			next := ReduceTheme(s, SetAutoTheme{Enabled: true, Detected: tt.detected})

			assert.True(t, next.AutoTheme)
			assert.Equal(t, tt.want, next.Theme)
			assert.Equal(t, tt.detected, next.SystemPreference)
		})
	}
}

func TestReduceTheme_EnableAutoThemeWithoutDetection(t *testing.T) {
	s := models.DefaultThemeState()
	s.Theme = models.ThemeHCDark

	next := ReduceTheme(s, SetAutoTheme{Enabled: true})

	assert.True(t, next.AutoTheme)
	assert.Equal(t, models.ThemeLight, next.Theme)
	assert.Equal(t, models.ColorSchemeLight, next.SystemPreference)
}

func TestReduceTheme_DisableAutoThemeKeepsTheme(t *testing.T) {
	s := models.ThemeState{Theme: models.ThemeDark, Brand: models.BrandDefault, SystemPreference: models.ColorSchemeDark, AutoTheme: true}

	next := ReduceTheme(s, SetAutoTheme{Enabled: false, Detected: models.ColorSchemeLight})

	assert.False(t, next.AutoTheme)
	assert.Equal(t, models.ThemeDark, next.Theme)
	assert.Equal(t, models.ColorSchemeDark, next.SystemPreference)
}

func TestReduceTheme_UpdateSystemPreference(t *testing.T) {
	t.Run("auto theme cascades", func(t *testing.T) {
		s := models.ThemeState{Theme: models.ThemeLight, Brand: models.BrandDefault, SystemPreference: models.ColorSchemeLight, AutoTheme: true}

		next := ReduceTheme(s, UpdateSystemPreference{Preference: models.ColorSchemeDark})

		assert.Equal(t, models.ColorSchemeDark, next.SystemPreference)
		assert.Equal(t, models.ThemeDark, next.Theme)
	})

	t.Run("manual theme is inert", func(t *testing.T) {
		s := models.ThemeState{Theme: models.ThemeHCLight, Brand: models.BrandDefault, SystemPreference: models.ColorSchemeLight}

		next := ReduceTheme(s, UpdateSystemPreference{Preference: models.ColorSchemeDark})

		assert.Equal(t, models.ColorSchemeDark, next.SystemPreference)
		assert.Equal(t, models.ThemeHCLight, next.Theme)
		assert.False(t, next.AutoTheme)
	})

	t.Run("unknown preference ignored", func(t *testing.T) {
		s := models.ThemeState{Theme: models.ThemeDark, Brand: models.BrandDefault, SystemPreference: models.ColorSchemeDark, AutoTheme: true}

		next := ReduceTheme(s, UpdateSystemPreference{})

		assert.Equal(t, s, next)
	})
}

func TestReduceTheme_InitializeTheme(t *testing.T) {
	t.Run("no overrides refreshes system preference only", func(t *testing.T) {
		next := ReduceTheme(models.DefaultThemeState(), InitializeTheme{Detected: models.ColorSchemeDark})

		assert.Equal(t, models.ThemeLight, next.Theme)
		assert.Equal(t, models.BrandDefault, next.Brand)
		assert.Equal(t, models.ColorSchemeDark, next.SystemPreference)
		assert.False(t, next.AutoTheme)
	})

	t.Run("overrides applied", func(t *testing.T) {
		next := ReduceTheme(models.DefaultThemeState(), InitializeTheme{
			Theme:    models.Ptr(models.ThemeHCLight),
			Brand:    models.Ptr(models.BrandVibrant),
			Detected: models.ColorSchemeDark,
		})

		assert.Equal(t, models.ThemeHCLight, next.Theme)
		assert.Equal(t, models.BrandVibrant, next.Brand)
		assert.Equal(t, models.ColorSchemeDark, next.SystemPreference)
	})

	t.Run("restored auto theme follows detection", func(t *testing.T) {
		next := ReduceTheme(models.DefaultThemeState(), InitializeTheme{
			Theme:     models.Ptr(models.ThemeLight),
			AutoTheme: models.Ptr(true),
			Detected:  models.ColorSchemeDark,
		})

		assert.True(t, next.AutoTheme)
		assert.Equal(t, models.ThemeDark, next.Theme)
	})
}

func TestReducePreferences_SingleFields(t *testing.T) {
	base := models.DefaultPreferences()

	tests := []struct {
		name   string
		intent Intent
		check  func(t *testing.T, s models.UserPreferencesState)
	}{
		{"collapse sidebar", SetSidebarCollapsed{Collapsed: true}, func(t *testing.T, s models.UserPreferencesState) {
			assert.True(t, s.SidebarCollapsed)
		}},
		{"toggle sidebar", ToggleSidebar{}, func(t *testing.T, s models.UserPreferencesState) {
			assert.True(t, s.SidebarCollapsed)
		}},
		{"reduced motion", SetReducedMotion{Enabled: true}, func(t *testing.T, s models.UserPreferencesState) {
			assert.True(t, s.ReducedMotion)
		}},
		{"high contrast", SetHighContrast{Enabled: true}, func(t *testing.T, s models.UserPreferencesState) {
			assert.True(t, s.HighContrast)
		}},
		{"font size", SetFontSize{Size: models.FontSizeLarge}, func(t *testing.T, s models.UserPreferencesState) {
			assert.Equal(t, models.FontSizeLarge, s.FontSize)
		}},
		{"language", SetLanguage{Language: "de-AT"}, func(t *testing.T, s models.UserPreferencesState) {
			assert.Equal(t, "de-AT", s.Language)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := ReducePreferences(base, tt.intent)
			tt.check(t, next)
			assert.Equal(t, base.Notifications, next.Notifications)
			assert.Equal(t, base.Accessibility, next.Accessibility)
		})
	}
}

func TestReducePreferences_ToggleSidebarTwice(t *testing.T) {
	s := models.DefaultPreferences()
	s = ReducePreferences(s, ToggleSidebar{})
	s = ReducePreferences(s, ToggleSidebar{})
	assert.False(t, s.SidebarCollapsed)
}

func TestReducePreferences_NotificationPartialMerge(t *testing.T) {
	s := models.DefaultPreferences()
	s.Notifications = models.NotificationPreferences{Enabled: true, Sound: true, Desktop: true}

	next := ReducePreferences(s, SetNotificationPreferences{Patch: models.NotificationPatch{Enabled: models.Ptr(false)}})

	assert.False(t, next.Notifications.Enabled)
	assert.True(t, next.Notifications.Sound)
	assert.True(t, next.Notifications.Desktop)
}

func TestReducePreferences_AccessibilityPartialMerge(t *testing.T) {
	s := models.DefaultPreferences()

	next := ReducePreferences(s, SetAccessibilityPreferences{Patch: models.AccessibilityPatch{ScreenReader: models.Ptr(true)}})

	assert.True(t, next.Accessibility.ScreenReader)
	assert.Equal(t, s.Accessibility.KeyboardNavigation, next.Accessibility.KeyboardNavigation)
	assert.Equal(t, s.Accessibility.FocusVisible, next.Accessibility.FocusVisible)
}

func TestReducePreferences_InitializeMergesPresentFields(t *testing.T) {
	patch := models.PreferencesPatch{
		SidebarCollapsed: models.Ptr(true),
		Language:         models.Ptr("fr"),
		Notifications:    &models.NotificationPatch{Desktop: models.Ptr(true)},
	}

	next := ReducePreferences(models.DefaultPreferences(), InitializePreferences{Patch: patch})

	assert.True(t, next.SidebarCollapsed)
	assert.Equal(t, "fr", next.Language)
	assert.Equal(t, models.FontSizeMedium, next.FontSize)
	assert.Equal(t, models.NotificationPreferences{Enabled: true, Sound: true, Desktop: true}, next.Notifications)
}

func TestReducePreferences_Reset(t *testing.T) {
	s := models.DefaultPreferences()
	s.SidebarCollapsed = true
	s.FontSize = models.FontSizeSmall
	s.Notifications.Enabled = false

	assert.Equal(t, models.DefaultPreferences(), ReducePreferences(s, ResetPreferences{}))
}

func TestReduce_SlicesAreIndependent(t *testing.T) {
	s := Default()

	afterTheme := Reduce(s, SetTheme{Theme: models.ThemeDark})
	assert.Equal(t, s.Preferences, afterTheme.Preferences)

	afterPrefs := Reduce(s, SetFontSize{Size: models.FontSizeSmall})
	assert.Equal(t, s.Theme, afterPrefs.Theme)
}

type unknownIntent struct{}

func (unknownIntent) Name() string { return "unknown" }

func TestReduce_UnknownIntentIsNoop(t *testing.T) {
	s := Default()
	assert.Equal(t, s, Reduce(s, unknownIntent{}))
}

func TestReduceAll_AppliesInOrder(t *testing.T) {
	s := ReduceAll(Default(),
		SetAutoTheme{Enabled: true, Detected: models.ColorSchemeDark},
		SetTheme{Theme: models.ThemeHCLight},
		ToggleSidebar{},
	)

	assert.Equal(t, models.ThemeHCLight, s.Theme.Theme)
	assert.False(t, s.Theme.AutoTheme)
	assert.True(t, s.Preferences.SidebarCollapsed)
}
