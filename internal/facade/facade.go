// Package facade is the consumer-facing surface of the preference store.
// Call sites read grouped accessors and dispatch through them; they never
// touch storage or the presentation target directly.
package facade

import (
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
)

// Dispatcher is the store contract the facade depends on.
type Dispatcher interface {
	Dispatch(intents ...state.Intent) state.State
	Commit(intents ...state.Intent) (state.State, models.Revision)
	Snapshot() state.State
	SnapshotRevision() (state.State, models.Revision)
}

// SchemeReader supplies the last known OS color scheme.
type SchemeReader interface {
	Current() models.ColorScheme
}

// Facade groups state and actions by concern.
type Facade struct {
	store  Dispatcher
	scheme SchemeReader
}

// New creates a facade. scheme may be nil when no detection is available.
func New(store Dispatcher, scheme SchemeReader) *Facade {
	return &Facade{store: store, scheme: scheme}
}

// Snapshot returns the full current state.
func (f *Facade) Snapshot() state.State {
	return f.store.Snapshot()
}

// SnapshotRevision returns the current state and the revision that produced it.
func (f *Facade) SnapshotRevision() (state.State, models.Revision) {
	return f.store.SnapshotRevision()
}

// ThemeAccessor exposes the theme slice.
type ThemeAccessor struct {
	Theme            models.Theme       `json:"theme"`
	Brand            models.Brand       `json:"brand"`
	SystemPreference models.ColorScheme `json:"systemPreference"`
	AutoTheme        bool               `json:"autoTheme"`

	f *Facade
}

// SetTheme selects a theme explicitly and leaves auto mode.
func (a ThemeAccessor) SetTheme(t models.Theme) { a.f.store.Dispatch(state.SetTheme{Theme: t}) }

// SetBrand selects a brand.
func (a ThemeAccessor) SetBrand(b models.Brand) { a.f.store.Dispatch(state.SetBrand{Brand: b}) }

// ToggleTheme flips between the light and dark member of the current contrast family.
func (a ThemeAccessor) ToggleTheme() { a.f.store.Dispatch(state.ToggleTheme{}) }

// SetAutoTheme switches auto mode. Enabling it adopts the current OS scheme.
func (a ThemeAccessor) SetAutoTheme(enabled bool) { a.f.store.Dispatch(a.f.autoTheme(enabled)) }

// SidebarAccessor exposes the sidebar preference.
type SidebarAccessor struct {
	Collapsed bool `json:"collapsed"`

	f *Facade
}

// SetCollapsed sets the sidebar state.
func (a SidebarAccessor) SetCollapsed(collapsed bool) {
	a.f.store.Dispatch(state.SetSidebarCollapsed{Collapsed: collapsed})
}

// Toggle flips the sidebar state.
func (a SidebarAccessor) Toggle() { a.f.store.Dispatch(state.ToggleSidebar{}) }

// AccessibilityAccessor exposes the accessibility and locale preferences.
type AccessibilityAccessor struct {
	ReducedMotion bool                            `json:"reducedMotion"`
	HighContrast  bool                            `json:"highContrast"`
	FontSize      models.FontSize                 `json:"fontSize"`
	Language      string                          `json:"language"`
	Accessibility models.AccessibilityPreferences `json:"accessibility"`

	f *Facade
}

// SetReducedMotion sets the reduced motion preference.
func (a AccessibilityAccessor) SetReducedMotion(enabled bool) {
	a.f.store.Dispatch(state.SetReducedMotion{Enabled: enabled})
}

// SetHighContrast sets the high contrast preference. The theme is not changed.
func (a AccessibilityAccessor) SetHighContrast(enabled bool) {
	a.f.store.Dispatch(state.SetHighContrast{Enabled: enabled})
}

// SetFontSize sets the base font size.
func (a AccessibilityAccessor) SetFontSize(size models.FontSize) {
	a.f.store.Dispatch(state.SetFontSize{Size: size})
}

// SetLanguage sets the UI language tag.
func (a AccessibilityAccessor) SetLanguage(lang string) {
	a.f.store.Dispatch(state.SetLanguage{Language: lang})
}

// UpdateAccessibilitySettings merges the present fields of patch.
func (a AccessibilityAccessor) UpdateAccessibilitySettings(patch models.AccessibilityPatch) {
	a.f.store.Dispatch(state.SetAccessibilityPreferences{Patch: patch})
}

// NotificationsAccessor exposes the notification preferences.
type NotificationsAccessor struct {
	Notifications models.NotificationPreferences `json:"notifications"`

	f *Facade
}

// UpdateNotificationSettings merges the present fields of patch.
func (a NotificationsAccessor) UpdateNotificationSettings(patch models.NotificationPatch) {
	a.f.store.Dispatch(state.SetNotificationPreferences{Patch: patch})
}

// Combined aggregates every accessor from one snapshot.
type Combined struct {
	Theme         ThemeAccessor         `json:"theme"`
	Sidebar       SidebarAccessor       `json:"sidebar"`
	Accessibility AccessibilityAccessor `json:"accessibility"`
	Notifications NotificationsAccessor `json:"notifications"`

	f *Facade
}

// Batch applies every change recorded by fn as one transition.
func (c Combined) Batch(fn func(*Batch)) state.State { return c.f.Batch(fn) }

// Theme returns the theme accessor.
func (f *Facade) Theme() ThemeAccessor { return f.themeFrom(f.store.Snapshot()) }

// Sidebar returns the sidebar accessor.
func (f *Facade) Sidebar() SidebarAccessor { return f.sidebarFrom(f.store.Snapshot()) }

// Accessibility returns the accessibility accessor.
func (f *Facade) Accessibility() AccessibilityAccessor {
	return f.accessibilityFrom(f.store.Snapshot())
}

// Notifications returns the notifications accessor.
func (f *Facade) Notifications() NotificationsAccessor {
	return f.notificationsFrom(f.store.Snapshot())
}

// All returns every accessor built from a single snapshot.
func (f *Facade) All() Combined {
	s := f.store.Snapshot()
	return Combined{
		Theme:         f.themeFrom(s),
		Sidebar:       f.sidebarFrom(s),
		Accessibility: f.accessibilityFrom(s),
		Notifications: f.notificationsFrom(s),
		f:             f,
	}
}

// ResetPreferences restores the preference defaults. The theme slice is untouched.
func (f *Facade) ResetPreferences() state.State {
	return f.store.Dispatch(state.ResetPreferences{})
}

// Batch applies every change recorded by fn as one transition.
func (f *Facade) Batch(fn func(*Batch)) state.State {
	s, _ := f.Commit(fn)
	return s
}

// Commit is Batch that also reports the revision of the returned state.
func (f *Facade) Commit(fn func(*Batch)) (state.State, models.Revision) {
	b := &Batch{f: f}
	fn(b)
	return f.store.Commit(b.intents...)
}

func (f *Facade) themeFrom(s state.State) ThemeAccessor {
	return ThemeAccessor{
		Theme:            s.Theme.Theme,
		Brand:            s.Theme.Brand,
		SystemPreference: s.Theme.SystemPreference,
		AutoTheme:        s.Theme.AutoTheme,
		f:                f,
	}
}

func (f *Facade) sidebarFrom(s state.State) SidebarAccessor {
	return SidebarAccessor{Collapsed: s.Preferences.SidebarCollapsed, f: f}
}

func (f *Facade) accessibilityFrom(s state.State) AccessibilityAccessor {
	p := s.Preferences
	return AccessibilityAccessor{
		ReducedMotion: p.ReducedMotion,
		HighContrast:  p.HighContrast,
		FontSize:      p.FontSize,
		Language:      p.Language,
		Accessibility: p.Accessibility,
		f:             f,
	}
}

func (f *Facade) notificationsFrom(s state.State) NotificationsAccessor {
	return NotificationsAccessor{Notifications: s.Preferences.Notifications, f: f}
}

// autoTheme builds the intent for switching auto mode. The detected scheme
// comes from the watcher, then the last stored preference.
func (f *Facade) autoTheme(enabled bool) state.SetAutoTheme {
	in := state.SetAutoTheme{Enabled: enabled}
	if !enabled {
		return in
	}
	if f.scheme != nil {
		in.Detected = f.scheme.Current()
	}
	if !in.Detected.IsKnown() {
		in.Detected = f.store.Snapshot().Theme.SystemPreference
	}
	return in
}
