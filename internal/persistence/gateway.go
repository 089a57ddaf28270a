package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
)

// Default storage keys.
const (
	DefaultThemeKey       = "theme-storage"
	DefaultPreferencesKey = "user-preferences"
)

// Keys names the two persisted entries.
type Keys struct {
	Theme       string
	Preferences string
}

// DefaultKeys returns the default entry names.
func DefaultKeys() Keys {
	return Keys{Theme: DefaultThemeKey, Preferences: DefaultPreferencesKey}
}

// Snapshot is what Load recovered. Absent fields were not persisted.
type Snapshot struct {
	Theme       models.ThemePatch
	Preferences models.PreferencesPatch
}

// Gateway serializes the store slices to a Backend.
type Gateway struct {
	backend Backend
	keys    Keys
	logger  *slog.Logger
}

// NewGateway creates a Gateway. Empty keys fall back to DefaultKeys.
func NewGateway(backend Backend, keys Keys, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if keys.Theme == "" {
		keys.Theme = DefaultThemeKey
	}
	if keys.Preferences == "" {
		keys.Preferences = DefaultPreferencesKey
	}
	return &Gateway{
		backend: backend,
		keys:    keys,
		logger:  logger.With(slog.String("component", "persistence"), slog.String("backend", backend.Name())),
	}
}

// Backend returns the underlying backend.
func (g *Gateway) Backend() Backend {
	return g.backend
}

// Load reads both entries. It never fails: a missing entry yields an empty
// patch, and an unreadable or malformed one is logged and treated as missing.
func (g *Gateway) Load(ctx context.Context) Snapshot {
	var snap Snapshot
	g.load(ctx, g.keys.Theme, &snap.Theme)
	g.load(ctx, g.keys.Preferences, &snap.Preferences)
	return snap
}

func (g *Gateway) load(ctx context.Context, key string, into any) {
	data, err := g.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			g.logger.DebugContext(ctx, "no persisted entry", slog.String("key", key))
			return
		}
		g.logger.WarnContext(ctx, "reading persisted entry failed, using defaults",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := json.Unmarshal(data, into); err != nil {
		g.logger.WarnContext(ctx, "persisted entry is malformed, using defaults",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
}

// Save writes both entries.
func (g *Gateway) Save(ctx context.Context, s state.State) error {
	return errors.Join(
		g.SaveTheme(ctx, s.Theme),
		g.SavePreferences(ctx, s.Preferences),
	)
}

// SaveTheme writes the theme entry. Only theme, brand and autoTheme are
// persisted; the system preference is always re-detected.
func (g *Gateway) SaveTheme(ctx context.Context, t models.ThemeState) error {
	return g.save(ctx, g.keys.Theme, ThemeProjection(t))
}

// SavePreferences writes the whole preferences slice.
func (g *Gateway) SavePreferences(ctx context.Context, p models.UserPreferencesState) error {
	return g.save(ctx, g.keys.Preferences, p)
}

func (g *Gateway) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := g.backend.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	g.logger.DebugContext(ctx, "persisted entry written", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

// ThemeProjection returns the persisted subset of the theme slice.
func ThemeProjection(t models.ThemeState) models.ThemePatch {
	return models.ThemePatch{
		Theme:     models.Ptr(t.Theme),
		Brand:     models.Ptr(t.Brand),
		AutoTheme: models.Ptr(t.AutoTheme),
	}
}
