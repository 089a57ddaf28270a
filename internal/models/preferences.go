package models

// FontSize is the base font size preference.
type FontSize string

const (
	FontSizeSmall  FontSize = "small"
	FontSizeMedium FontSize = "medium"
	FontSizeLarge  FontSize = "large"
)

// IsValid reports whether f is one of the supported sizes.
func (f FontSize) IsValid() bool {
	switch f {
	case FontSizeSmall, FontSizeMedium, FontSizeLarge:
		return true
	}
	return false
}

// NotificationPreferences controls which notification channels are active.
type NotificationPreferences struct {
	Enabled bool `json:"enabled"`
	Sound   bool `json:"sound"`
	Desktop bool `json:"desktop"`
}

// AccessibilityPreferences holds assistive technology settings.
type AccessibilityPreferences struct {
	ScreenReader       bool `json:"screenReader"`
	KeyboardNavigation bool `json:"keyboardNavigation"`
	FocusVisible       bool `json:"focusVisible"`
}

// UserPreferencesState is the preferences slice of the store.
// The whole object is persisted.
type UserPreferencesState struct {
	SidebarCollapsed bool                     `json:"sidebarCollapsed"`
	ReducedMotion    bool                     `json:"reducedMotion"`
	HighContrast     bool                     `json:"highContrast"`
	FontSize         FontSize                 `json:"fontSize"`
	Language         string                   `json:"language"`
	Notifications    NotificationPreferences  `json:"notifications"`
	Accessibility    AccessibilityPreferences `json:"accessibility"`
}

// DefaultPreferences returns the hard-coded preference defaults.
func DefaultPreferences() UserPreferencesState {
	return UserPreferencesState{
		SidebarCollapsed: false,
		ReducedMotion:    false,
		HighContrast:     false,
		FontSize:         FontSizeMedium,
		Language:         "en",
		Notifications: NotificationPreferences{
			Enabled: true,
			Sound:   true,
			Desktop: false,
		},
		Accessibility: AccessibilityPreferences{
			ScreenReader:       false,
			KeyboardNavigation: true,
			FocusVisible:       true,
		},
	}
}

// NotificationPatch is a partial update of NotificationPreferences.
type NotificationPatch struct {
	Enabled *bool `json:"enabled,omitempty"`
	Sound   *bool `json:"sound,omitempty"`
	Desktop *bool `json:"desktop,omitempty"`
}

// Merge returns n with the present patch fields applied.
func (p NotificationPatch) Merge(n NotificationPreferences) NotificationPreferences {
	if p.Enabled != nil {
		n.Enabled = *p.Enabled
	}
	if p.Sound != nil {
		n.Sound = *p.Sound
	}
	if p.Desktop != nil {
		n.Desktop = *p.Desktop
	}
	return n
}

// AccessibilityPatch is a partial update of AccessibilityPreferences.
type AccessibilityPatch struct {
	ScreenReader       *bool `json:"screenReader,omitempty"`
	KeyboardNavigation *bool `json:"keyboardNavigation,omitempty"`
	FocusVisible       *bool `json:"focusVisible,omitempty"`
}

// Merge returns a with the present patch fields applied.
func (p AccessibilityPatch) Merge(a AccessibilityPreferences) AccessibilityPreferences {
	if p.ScreenReader != nil {
		a.ScreenReader = *p.ScreenReader
	}
	if p.KeyboardNavigation != nil {
		a.KeyboardNavigation = *p.KeyboardNavigation
	}
	if p.FocusVisible != nil {
		a.FocusVisible = *p.FocusVisible
	}
	return a
}

// PreferencesPatch is a partial update of UserPreferencesState.
// It doubles as the decoding target for the persisted preferences entry, so a
// record written by an older build with missing fields still merges cleanly.
type PreferencesPatch struct {
	SidebarCollapsed *bool               `json:"sidebarCollapsed,omitempty"`
	ReducedMotion    *bool               `json:"reducedMotion,omitempty"`
	HighContrast     *bool               `json:"highContrast,omitempty"`
	FontSize         *FontSize           `json:"fontSize,omitempty"`
	Language         *string             `json:"language,omitempty"`
	Notifications    *NotificationPatch  `json:"notifications,omitempty"`
	Accessibility    *AccessibilityPatch `json:"accessibility,omitempty"`
}

// IsEmpty reports whether no field is present.
func (p PreferencesPatch) IsEmpty() bool {
	return p.SidebarCollapsed == nil && p.ReducedMotion == nil && p.HighContrast == nil &&
		p.FontSize == nil && p.Language == nil && p.Notifications == nil && p.Accessibility == nil
}

// Merge returns s with the present patch fields applied.
func (p PreferencesPatch) Merge(s UserPreferencesState) UserPreferencesState {
	if p.SidebarCollapsed != nil {
		s.SidebarCollapsed = *p.SidebarCollapsed
	}
	if p.ReducedMotion != nil {
		s.ReducedMotion = *p.ReducedMotion
	}
	if p.HighContrast != nil {
		s.HighContrast = *p.HighContrast
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Notifications != nil {
		s.Notifications = p.Notifications.Merge(s.Notifications)
	}
	if p.Accessibility != nil {
		s.Accessibility = p.Accessibility.Merge(s.Accessibility)
	}
	return s
}

// Over layers p on top of base: fields present in p win, everything else
// falls through to base.
func (p PreferencesPatch) Over(base PreferencesPatch) PreferencesPatch {
	out := base
	if p.SidebarCollapsed != nil {
		out.SidebarCollapsed = p.SidebarCollapsed
	}
	if p.ReducedMotion != nil {
		out.ReducedMotion = p.ReducedMotion
	}
	if p.HighContrast != nil {
		out.HighContrast = p.HighContrast
	}
	if p.FontSize != nil {
		out.FontSize = p.FontSize
	}
	if p.Language != nil {
		out.Language = p.Language
	}
	if p.Notifications != nil {
		merged := overNotifications(*p.Notifications, base.Notifications)
		out.Notifications = &merged
	}
	if p.Accessibility != nil {
		merged := overAccessibility(*p.Accessibility, base.Accessibility)
		out.Accessibility = &merged
	}
	return out
}

func overNotifications(top NotificationPatch, base *NotificationPatch) NotificationPatch {
	if base == nil {
		return top
	}
	out := *base
	if top.Enabled != nil {
		out.Enabled = top.Enabled
	}
	if top.Sound != nil {
		out.Sound = top.Sound
	}
	if top.Desktop != nil {
		out.Desktop = top.Desktop
	}
	return out
}

func overAccessibility(top AccessibilityPatch, base *AccessibilityPatch) AccessibilityPatch {
	if base == nil {
		return top
	}
	out := *base
	if top.ScreenReader != nil {
		out.ScreenReader = top.ScreenReader
	}
	if top.KeyboardNavigation != nil {
		out.KeyboardNavigation = top.KeyboardNavigation
	}
	if top.FocusVisible != nil {
		out.FocusVisible = top.FocusVisible
	}
	return out
}
