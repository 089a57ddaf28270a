package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/prefstore/internal/observability"
	"github.com/jmylchreest/prefstore/internal/version"
)

// logLevels are the levels accepted by PUT /api/v1/settings, most verbose first.
var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// SettingsHandler exposes the process-wide logging knobs. They are not part
// of the preference state and are never persisted.
type SettingsHandler struct{}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{}
}

// Register registers the settings routes with the API.
func (h *SettingsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get runtime settings",
		Tags:        []string{"Settings"},
	}, h.GetSettings)

	huma.Register(api, huma.Operation{
		OperationID: "updateSettings",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings",
		Summary:     "Update runtime settings",
		Description: "Changes take effect immediately for every logger in the process.",
		Tags:        []string{"Settings"},
	}, h.UpdateSettings)

	huma.Register(api, huma.Operation{
		OperationID: "getSettingsInfo",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/info",
		Summary:     "Describe runtime settings",
		Tags:        []string{"Settings"},
	}, h.GetSettingsInfo)
}

// RuntimeSettings is the current value of every runtime setting.
type RuntimeSettings struct {
	LogLevel             string `json:"log_level"`
	EnableRequestLogging bool   `json:"enable_request_logging"`
}

func currentSettings() RuntimeSettings {
	return RuntimeSettings{
		LogLevel:             observability.GetLogLevel(),
		EnableRequestLogging: observability.IsRequestLoggingEnabled(),
	}
}

// SettingsBody is returned by both the read and the update operation.
// AppliedChanges is empty on reads.
type SettingsBody struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	Settings       RuntimeSettings `json:"settings"`
	AppliedChanges []string        `json:"applied_changes"`
}

// SettingsOutput wraps SettingsBody.
type SettingsOutput struct {
	Body SettingsBody
}

func settingsOutput(message string, applied []string) *SettingsOutput {
	if applied == nil {
		applied = []string{}
	}
	return &SettingsOutput{Body: SettingsBody{
		Success:        true,
		Message:        message,
		Settings:       currentSettings(),
		AppliedChanges: applied,
	}}
}

// GetSettings returns current runtime settings.
func (h *SettingsHandler) GetSettings(_ context.Context, _ *struct{}) (*SettingsOutput, error) {
	return settingsOutput("Settings retrieved", nil), nil
}

// UpdateSettingsInput carries the settings to change. Absent fields keep
// their current value.
type UpdateSettingsInput struct {
	Body struct {
		LogLevel             *string `json:"log_level,omitempty" enum:"trace,debug,info,warn,error"`
		EnableRequestLogging *bool   `json:"enable_request_logging,omitempty"`
	}
}

// UpdateSettings applies the present fields.
func (h *SettingsHandler) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	var applied []string

	if lvl := input.Body.LogLevel; lvl != nil {
		observability.SetLogLevel(*lvl)
		applied = append(applied, "log_level")
	}
	if enabled := input.Body.EnableRequestLogging; enabled != nil {
		observability.SetRequestLogging(*enabled)
		applied = append(applied, "enable_request_logging")
	}

	if len(applied) > 0 {
		slog.InfoContext(ctx, "runtime settings updated",
			slog.Any("applied_changes", applied),
			slog.String("log_level", observability.GetLogLevel()),
			slog.Bool("request_logging", observability.IsRequestLoggingEnabled()),
		)
	}

	return settingsOutput("Settings updated", applied), nil
}

// SettingOption is one allowed value of a select setting.
type SettingOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SettingField describes one runtime setting for UI rendering.
type SettingField struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Default     any             `json:"default"`
	Options     []SettingOption `json:"options,omitempty"`
}

// SettingsInfoOutput lists every runtime setting.
type SettingsInfoOutput struct {
	Body struct {
		Fields    []SettingField `json:"fields"`
		Version   string         `json:"version"`
		Timestamp time.Time      `json:"timestamp"`
	}
}

// GetSettingsInfo returns metadata about available settings.
func (h *SettingsHandler) GetSettingsInfo(_ context.Context, _ *struct{}) (*SettingsInfoOutput, error) {
	levels := make([]SettingOption, len(logLevels))
	for i, l := range logLevels {
		levels[i] = SettingOption{Value: l, Label: strings.ToUpper(l[:1]) + l[1:]}
	}

	resp := &SettingsInfoOutput{}
	resp.Body.Fields = []SettingField{
		{
			Name:        "log_level",
			Type:        "select",
			Description: "Minimum level written to the log",
			Default:     "info",
			Options:     levels,
		},
		{
			Name:        "enable_request_logging",
			Type:        "boolean",
			Description: "Log successful HTTP requests; failures are always logged",
			Default:     true,
		},
	}
	resp.Body.Version = version.Short()
	resp.Body.Timestamp = time.Now().UTC()
	return resp, nil
}
