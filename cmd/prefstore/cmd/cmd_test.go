package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/prefstore/internal/config"
	"github.com/jmylchreest/prefstore/internal/database/migrations"
	"github.com/jmylchreest/prefstore/internal/effects"
	"github.com/jmylchreest/prefstore/internal/facade"
	"github.com/jmylchreest/prefstore/internal/http/handlers"
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/jmylchreest/prefstore/internal/store"
)

func newTestFacade() (*facade.Facade, *store.Store) {
	s := store.New(state.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return facade.New(s, nil), s
}

func TestApplySettings(t *testing.T) {
	t.Run("applies pairs as one change", func(t *testing.T) {
		f, s := newTestFacade()
		changes := 0
		s.Subscribe(func(store.Change) { changes++ })

		err := applySettings(f, []string{
			"theme", "hc-dark",
			"font-size", "large",
			"notifications.desktop", "true",
			"accessibility.focus-visible", "false",
		})
		require.NoError(t, err)

		snap := s.Snapshot()
		assert.Equal(t, models.ThemeHCDark, snap.Theme.Theme)
		assert.Equal(t, models.FontSizeLarge, snap.Preferences.FontSize)
		assert.True(t, snap.Preferences.Notifications.Desktop)
		assert.True(t, snap.Preferences.Notifications.Enabled)
		assert.False(t, snap.Preferences.Accessibility.FocusVisible)
		assert.Equal(t, 1, changes)
	})

	t.Run("auto theme without detection falls back to light", func(t *testing.T) {
		f, s := newTestFacade()
		require.NoError(t, applySettings(f, []string{"theme", "dark", "auto-theme", "true"}))

		snap := s.Snapshot()
		assert.True(t, snap.Theme.AutoTheme)
		assert.Equal(t, models.ThemeLight, snap.Theme.Theme)
	})

	tests := []struct {
		name string
		args []string
	}{
		{"unknown field", []string{"wallpaper", "cats"}},
		{"invalid theme", []string{"theme", "sepia"}},
		{"invalid brand", []string{"brand", "neon"}},
		{"invalid bool", []string{"sidebar", "maybe"}},
		{"invalid font size", []string{"font-size", "huge"}},
		{"invalid language", []string{"language", "not a tag!"}},
		{"valid then invalid", []string{"theme", "dark", "font-size", "huge"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, s := newTestFacade()
			err := applySettings(f, tt.args)
			require.Error(t, err)
			assert.Equal(t, state.Default(), s.Snapshot(), "nothing dispatched on error")
		})
	}
}

func TestSettableFields_Sorted(t *testing.T) {
	fields := settableFields()
	assert.Len(t, fields, len(setters))
	assert.IsNonDecreasing(t, fields)
	assert.Contains(t, fields, "theme")
	assert.Contains(t, fields, "accessibility.screen-reader")
}

func TestWriteState(t *testing.T) {
	resp := handlers.PreferencesFromState(state.Default(), "")
	doc := effects.DocumentSnapshot{Styles: map[string]string{"--background": "#ffffff"}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeState(&buf, "json", resp, doc))

		var decoded handlers.PreferencesResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, resp, decoded)
	})

	t.Run("yaml uses api keys", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeState(&buf, "yaml", resp, doc))
		assert.Contains(t, buf.String(), "sidebarCollapsed: false")
		assert.Contains(t, buf.String(), "fontSize: medium")
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeState(&buf, "text", resp, doc))
		out := buf.String()
		assert.Contains(t, out, "theme:             light")
		assert.Contains(t, out, "#ffffff")
		assert.Contains(t, out, "Revision")
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, writeState(&buf, "xml", resp, doc))
	})
}

func TestToMap_RedactsSecrets(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: 8080, ReadTimeout: 30 * time.Second},
		Database: config.DatabaseConfig{DSN: "postgres://user:pw@db/prefs"},
		Redis:    config.RedisConfig{Password: "hunter2"},
	}

	m := toMap(cfg)
	redact(m)

	server := m["server"].(map[string]any)
	assert.Equal(t, "30s", server["read_timeout"])
	assert.Equal(t, 8080, server["port"])
	assert.Equal(t, "[REDACTED]", m["database"].(map[string]any)["dsn"])
	assert.Equal(t, "[REDACTED]", m["redis"].(map[string]any)["password"])
}

func TestWriteMigrations(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer

	require.NoError(t, writeMigrations(&buf, []migrations.MigrationStatus{
		{Version: "001", Description: "Create setting_entries table", AppliedAt: &at},
		{Version: "002", Description: "Index setting_entries.updated_at"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "VERSION")
	assert.Contains(t, lines[1], "2026-03-01T12:00:00Z")
	assert.Contains(t, lines[2], "pending")
}
