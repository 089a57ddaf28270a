// Package handlers provides HTTP API handlers for prefstore.
package handlers

import (
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
)

// PreferencesResponse is the full preference state as served by the API.
type PreferencesResponse struct {
	Revision    string                      `json:"revision" doc:"ULID of the last committed change; empty before the first"`
	Theme       models.ThemeState           `json:"theme"`
	Preferences models.UserPreferencesState `json:"preferences"`
}

// PreferencesFromState converts a state snapshot to a response.
func PreferencesFromState(s state.State, revision models.Revision) PreferencesResponse {
	return PreferencesResponse{
		Revision:    revision.String(),
		Theme:       s.Theme,
		Preferences: s.Preferences,
	}
}

// ChangeEvent is the payload of one server-sent change event.
type ChangeEvent struct {
	Revision string                      `json:"revision"`
	Intents  []string                    `json:"intents"`
	Theme    models.ThemeState           `json:"theme"`
	Prefs    models.UserPreferencesState `json:"preferences"`
	At       string                      `json:"at"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status        string            `json:"status"`
	Timestamp     string            `json:"timestamp"`
	Version       string            `json:"version"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Ready         bool              `json:"ready"`
	Storage       string            `json:"storage"`
	Listeners     int               `json:"listeners"`
	CPUInfo       CPUInfo           `json:"cpu_info"`
	Memory        MemoryInfo        `json:"memory"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// CPUInfo holds CPU load information.
type CPUInfo struct {
	Cores              int     `json:"cores"`
	Load1Min           float64 `json:"load_1min"`
	Load5Min           float64 `json:"load_5min"`
	Load15Min          float64 `json:"load_15min"`
	LoadPercentage1Min float64 `json:"load_percentage_1min"`
}

// MemoryInfo holds system and process memory usage.
type MemoryInfo struct {
	TotalMemoryMB     float64 `json:"total_memory_mb"`
	UsedMemoryMB      float64 `json:"used_memory_mb"`
	AvailableMemoryMB float64 `json:"available_memory_mb"`
	ProcessMemoryMB   float64 `json:"process_memory_mb"`
	ProcessPercentage float64 `json:"process_percentage"`
}
