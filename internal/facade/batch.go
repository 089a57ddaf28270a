package facade

import (
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
)

// Batch records intents to apply atomically. Its methods mirror the
// accessor actions.
type Batch struct {
	f       *Facade
	intents []state.Intent
}

func (b *Batch) add(in state.Intent) *Batch {
	b.intents = append(b.intents, in)
	return b
}

func (b *Batch) SetTheme(t models.Theme) *Batch   { return b.add(state.SetTheme{Theme: t}) }
func (b *Batch) SetBrand(br models.Brand) *Batch  { return b.add(state.SetBrand{Brand: br}) }
func (b *Batch) ToggleTheme() *Batch              { return b.add(state.ToggleTheme{}) }
func (b *Batch) SetAutoTheme(enabled bool) *Batch { return b.add(b.f.autoTheme(enabled)) }
func (b *Batch) SetSidebarCollapsed(c bool) *Batch {
	return b.add(state.SetSidebarCollapsed{Collapsed: c})
}
func (b *Batch) ToggleSidebar() *Batch                { return b.add(state.ToggleSidebar{}) }
func (b *Batch) SetReducedMotion(on bool) *Batch      { return b.add(state.SetReducedMotion{Enabled: on}) }
func (b *Batch) SetHighContrast(on bool) *Batch       { return b.add(state.SetHighContrast{Enabled: on}) }
func (b *Batch) SetFontSize(s models.FontSize) *Batch { return b.add(state.SetFontSize{Size: s}) }
func (b *Batch) SetLanguage(lang string) *Batch       { return b.add(state.SetLanguage{Language: lang}) }
func (b *Batch) ResetPreferences() *Batch             { return b.add(state.ResetPreferences{}) }

// UpdateNotificationSettings merges the present fields of patch.
func (b *Batch) UpdateNotificationSettings(patch models.NotificationPatch) *Batch {
	return b.add(state.SetNotificationPreferences{Patch: patch})
}

// UpdateAccessibilitySettings merges the present fields of patch.
func (b *Batch) UpdateAccessibilitySettings(patch models.AccessibilityPatch) *Batch {
	return b.add(state.SetAccessibilityPreferences{Patch: patch})
}
