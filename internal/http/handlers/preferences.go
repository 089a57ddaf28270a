package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/prefstore/internal/facade"
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"golang.org/x/text/language"
)

// PreferencesHandler exposes the store facade over HTTP.
type PreferencesHandler struct {
	facade *facade.Facade
	logger *slog.Logger
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(f *facade.Facade) *PreferencesHandler {
	return &PreferencesHandler{
		facade: f,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the handler.
func (h *PreferencesHandler) WithLogger(logger *slog.Logger) *PreferencesHandler {
	h.logger = logger
	return h
}

// Register registers the preference routes with the API.
func (h *PreferencesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getPreferences",
		Method:      "GET",
		Path:        "/api/v1/preferences",
		Summary:     "Get preferences",
		Description: "Returns the current theme and user preferences",
		Tags:        []string{"Preferences"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "setTheme",
		Method:      "PUT",
		Path:        "/api/v1/preferences/theme",
		Summary:     "Set theme and brand",
		Description: "Sets the theme and/or brand in one change. Setting a theme turns auto theme off.",
		Tags:        []string{"Preferences"},
	}, h.SetTheme)

	huma.Register(api, huma.Operation{
		OperationID: "toggleTheme",
		Method:      "POST",
		Path:        "/api/v1/preferences/theme/toggle",
		Summary:     "Toggle theme",
		Description: "Switches between the light and dark theme of the current contrast family",
		Tags:        []string{"Preferences"},
	}, h.ToggleTheme)

	huma.Register(api, huma.Operation{
		OperationID: "setAutoTheme",
		Method:      "PUT",
		Path:        "/api/v1/preferences/theme/auto",
		Summary:     "Set auto theme",
		Description: "Enables or disables following the operating system color scheme",
		Tags:        []string{"Preferences"},
	}, h.SetAutoTheme)

	huma.Register(api, huma.Operation{
		OperationID: "setSidebar",
		Method:      "PUT",
		Path:        "/api/v1/preferences/sidebar",
		Summary:     "Set sidebar state",
		Tags:        []string{"Preferences"},
	}, h.SetSidebar)

	huma.Register(api, huma.Operation{
		OperationID: "toggleSidebar",
		Method:      "POST",
		Path:        "/api/v1/preferences/sidebar/toggle",
		Summary:     "Toggle sidebar",
		Tags:        []string{"Preferences"},
	}, h.ToggleSidebar)

	huma.Register(api, huma.Operation{
		OperationID: "updateAccessibility",
		Method:      "PATCH",
		Path:        "/api/v1/preferences/accessibility",
		Summary:     "Update accessibility settings",
		Description: "Merges the supplied fields; omitted fields keep their value",
		Tags:        []string{"Preferences"},
	}, h.UpdateAccessibility)

	huma.Register(api, huma.Operation{
		OperationID: "updateNotifications",
		Method:      "PATCH",
		Path:        "/api/v1/preferences/notifications",
		Summary:     "Update notification settings",
		Description: "Merges the supplied fields; omitted fields keep their value",
		Tags:        []string{"Preferences"},
	}, h.UpdateNotifications)

	huma.Register(api, huma.Operation{
		OperationID: "resetPreferences",
		Method:      "POST",
		Path:        "/api/v1/preferences/reset",
		Summary:     "Reset preferences",
		Description: "Restores preference defaults. Theme and brand are kept.",
		Tags:        []string{"Preferences"},
	}, h.Reset)
}

// PreferencesOutput is the output shared by every preference operation.
type PreferencesOutput struct {
	Body PreferencesResponse
}

func output(s state.State, rev models.Revision) *PreferencesOutput {
	return &PreferencesOutput{Body: PreferencesFromState(s, rev)}
}

// GetPreferencesInput is the input for getting preferences.
type GetPreferencesInput struct{}

// Get returns the current state.
func (h *PreferencesHandler) Get(ctx context.Context, input *GetPreferencesInput) (*PreferencesOutput, error) {
	return output(h.facade.SnapshotRevision()), nil
}

// SetThemeInput is the input for setting theme and brand.
type SetThemeInput struct {
	Body struct {
		Theme *string `json:"theme,omitempty" enum:"light,dark,hc-light,hc-dark" doc:"Theme to apply"`
		Brand *string `json:"brand,omitempty" enum:"default,vibrant,corporate" doc:"Brand to apply"`
	}
}

// SetTheme sets theme and brand atomically.
func (h *PreferencesHandler) SetTheme(ctx context.Context, input *SetThemeInput) (*PreferencesOutput, error) {
	if input.Body.Theme == nil && input.Body.Brand == nil {
		return nil, huma.Error422UnprocessableEntity("theme or brand is required")
	}

	return output(h.facade.Commit(func(b *facade.Batch) {
		if input.Body.Theme != nil {
			b.SetTheme(models.Theme(*input.Body.Theme))
		}
		if input.Body.Brand != nil {
			b.SetBrand(models.Brand(*input.Body.Brand))
		}
	})), nil
}

// ToggleThemeInput is the input for toggling the theme.
type ToggleThemeInput struct{}

// ToggleTheme flips the theme within its contrast family.
func (h *PreferencesHandler) ToggleTheme(ctx context.Context, input *ToggleThemeInput) (*PreferencesOutput, error) {
	return output(h.facade.Commit(func(b *facade.Batch) { b.ToggleTheme() })), nil
}

// SetAutoThemeInput is the input for switching auto theme.
type SetAutoThemeInput struct {
	Body struct {
		Enabled bool `json:"enabled" doc:"Follow the operating system color scheme"`
	}
}

// SetAutoTheme enables or disables auto theme.
func (h *PreferencesHandler) SetAutoTheme(ctx context.Context, input *SetAutoThemeInput) (*PreferencesOutput, error) {
	return output(h.facade.Commit(func(b *facade.Batch) { b.SetAutoTheme(input.Body.Enabled) })), nil
}

// SetSidebarInput is the input for setting the sidebar state.
type SetSidebarInput struct {
	Body struct {
		Collapsed bool `json:"collapsed"`
	}
}

// SetSidebar sets the sidebar state.
func (h *PreferencesHandler) SetSidebar(ctx context.Context, input *SetSidebarInput) (*PreferencesOutput, error) {
	return output(h.facade.Commit(func(b *facade.Batch) { b.SetSidebarCollapsed(input.Body.Collapsed) })), nil
}

// ToggleSidebarInput is the input for toggling the sidebar.
type ToggleSidebarInput struct{}

// ToggleSidebar flips the sidebar state.
func (h *PreferencesHandler) ToggleSidebar(ctx context.Context, input *ToggleSidebarInput) (*PreferencesOutput, error) {
	return output(h.facade.Commit(func(b *facade.Batch) { b.ToggleSidebar() })), nil
}

// UpdateAccessibilityInput is the input for the accessibility patch.
type UpdateAccessibilityInput struct {
	Body struct {
		ReducedMotion      *bool   `json:"reducedMotion,omitempty"`
		HighContrast       *bool   `json:"highContrast,omitempty"`
		FontSize           *string `json:"fontSize,omitempty" enum:"small,medium,large"`
		Language           *string `json:"language,omitempty" doc:"BCP 47 language tag" maxLength:"35"`
		ScreenReader       *bool   `json:"screenReader,omitempty"`
		KeyboardNavigation *bool   `json:"keyboardNavigation,omitempty"`
		FocusVisible       *bool   `json:"focusVisible,omitempty"`
	}
}

// UpdateAccessibility merges accessibility and locale settings in one change.
func (h *PreferencesHandler) UpdateAccessibility(ctx context.Context, input *UpdateAccessibilityInput) (*PreferencesOutput, error) {
	body := input.Body

	if body.Language != nil {
		if _, err := language.Parse(*body.Language); err != nil {
			return nil, huma.Error422UnprocessableEntity("invalid language tag", err)
		}
	}

	patch := models.AccessibilityPatch{
		ScreenReader:       body.ScreenReader,
		KeyboardNavigation: body.KeyboardNavigation,
		FocusVisible:       body.FocusVisible,
	}

	return output(h.facade.Commit(func(b *facade.Batch) {
		if body.ReducedMotion != nil {
			b.SetReducedMotion(*body.ReducedMotion)
		}
		if body.HighContrast != nil {
			b.SetHighContrast(*body.HighContrast)
		}
		if body.FontSize != nil {
			b.SetFontSize(models.FontSize(*body.FontSize))
		}
		if body.Language != nil {
			b.SetLanguage(*body.Language)
		}
		if patch != (models.AccessibilityPatch{}) {
			b.UpdateAccessibilitySettings(patch)
		}
	})), nil
}

// UpdateNotificationsInput is the input for the notifications patch.
type UpdateNotificationsInput struct {
	Body models.NotificationPatch
}

// UpdateNotifications merges notification settings.
func (h *PreferencesHandler) UpdateNotifications(ctx context.Context, input *UpdateNotificationsInput) (*PreferencesOutput, error) {
	return output(h.facade.Commit(func(b *facade.Batch) {
		b.UpdateNotificationSettings(input.Body)
	})), nil
}

// ResetPreferencesInput is the input for resetting preferences.
type ResetPreferencesInput struct{}

// Reset restores the preference defaults.
func (h *PreferencesHandler) Reset(ctx context.Context, input *ResetPreferencesInput) (*PreferencesOutput, error) {
	s, rev := h.facade.Commit(func(b *facade.Batch) { b.ResetPreferences() })
	h.logger.InfoContext(ctx, "preferences reset")
	return output(s, rev), nil
}
