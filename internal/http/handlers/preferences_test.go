package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/prefstore/internal/facade"
	"github.com/jmylchreest/prefstore/internal/http/handlers"
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/jmylchreest/prefstore/internal/store"
)

type fixedScheme models.ColorScheme

func (f fixedScheme) Current() models.ColorScheme { return models.ColorScheme(f) }

func newTestStore() *store.Store {
	return store.New(state.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupPreferencesRouter(s *store.Store, scheme facade.SchemeReader) *chi.Mux {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test API", "1.0.0"))
	handlers.NewPreferencesHandler(facade.New(s, scheme)).Register(api)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodePreferences(t *testing.T, rec *httptest.ResponseRecorder) handlers.PreferencesResponse {
	t.Helper()
	var resp handlers.PreferencesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestPreferencesHandler_Get(t *testing.T) {
	s := newTestStore()
	router := setupPreferencesRouter(s, nil)

	rec := doJSON(t, router, "GET", "/api/v1/preferences", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePreferences(t, rec)
	assert.Empty(t, resp.Revision)
	assert.Equal(t, models.DefaultThemeState(), resp.Theme)
	assert.Equal(t, models.DefaultPreferences(), resp.Preferences)
}

func TestPreferencesHandler_SetTheme(t *testing.T) {
	t.Run("sets theme and brand in one change", func(t *testing.T) {
		s := newTestStore()
		router := setupPreferencesRouter(s, nil)

		changes := 0
		s.Subscribe(func(store.Change) { changes++ })

		rec := doJSON(t, router, "PUT", "/api/v1/preferences/theme", map[string]string{
			"theme": "hc-dark",
			"brand": "corporate",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodePreferences(t, rec)
		assert.Equal(t, models.ThemeHCDark, resp.Theme.Theme)
		assert.Equal(t, models.BrandCorporate, resp.Theme.Brand)
		assert.NotEmpty(t, resp.Revision)
		assert.Equal(t, 1, changes)
	})

	t.Run("rejects unknown theme", func(t *testing.T) {
		s := newTestStore()
		router := setupPreferencesRouter(s, nil)

		rec := doJSON(t, router, "PUT", "/api/v1/preferences/theme", map[string]string{"theme": "sepia"})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, models.ThemeLight, s.Snapshot().Theme.Theme)
	})

	t.Run("requires a field", func(t *testing.T) {
		s := newTestStore()
		router := setupPreferencesRouter(s, nil)

		rec := doJSON(t, router, "PUT", "/api/v1/preferences/theme", map[string]string{})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestPreferencesHandler_ToggleTheme(t *testing.T) {
	s := newTestStore()
	router := setupPreferencesRouter(s, nil)

	rec := doJSON(t, router, "POST", "/api/v1/preferences/theme/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ThemeDark, decodePreferences(t, rec).Theme.Theme)

	rec = doJSON(t, router, "POST", "/api/v1/preferences/theme/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ThemeLight, decodePreferences(t, rec).Theme.Theme)
}

func TestPreferencesHandler_SetAutoTheme(t *testing.T) {
	s := newTestStore()
	router := setupPreferencesRouter(s, fixedScheme(models.ColorSchemeDark))

	rec := doJSON(t, router, "PUT", "/api/v1/preferences/theme/auto", map[string]bool{"enabled": true})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePreferences(t, rec)
	assert.True(t, resp.Theme.AutoTheme)
	assert.Equal(t, models.ThemeDark, resp.Theme.Theme)
	assert.Equal(t, models.ColorSchemeDark, resp.Theme.SystemPreference)
}

func TestPreferencesHandler_Sidebar(t *testing.T) {
	s := newTestStore()
	router := setupPreferencesRouter(s, nil)

	rec := doJSON(t, router, "PUT", "/api/v1/preferences/sidebar", map[string]bool{"collapsed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodePreferences(t, rec).Preferences.SidebarCollapsed)

	rec = doJSON(t, router, "POST", "/api/v1/preferences/sidebar/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodePreferences(t, rec).Preferences.SidebarCollapsed)
}

func TestPreferencesHandler_UpdateAccessibility(t *testing.T) {
	t.Run("merges present fields", func(t *testing.T) {
		s := newTestStore()
		router := setupPreferencesRouter(s, nil)

		rec := doJSON(t, router, "PATCH", "/api/v1/preferences/accessibility", map[string]any{
			"fontSize":     "large",
			"language":     "de-AT",
			"screenReader": true,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		prefs := decodePreferences(t, rec).Preferences
		assert.Equal(t, models.FontSizeLarge, prefs.FontSize)
		assert.Equal(t, "de-AT", prefs.Language)
		assert.True(t, prefs.Accessibility.ScreenReader)
		assert.True(t, prefs.Accessibility.KeyboardNavigation, "omitted field keeps its value")
		assert.False(t, prefs.ReducedMotion)
	})

	t.Run("rejects invalid language tag", func(t *testing.T) {
		s := newTestStore()
		router := setupPreferencesRouter(s, nil)

		rec := doJSON(t, router, "PATCH", "/api/v1/preferences/accessibility", map[string]any{
			"language": "not a tag!",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "en", s.Snapshot().Preferences.Language)
	})

	t.Run("rejects unknown font size", func(t *testing.T) {
		s := newTestStore()
		router := setupPreferencesRouter(s, nil)

		rec := doJSON(t, router, "PATCH", "/api/v1/preferences/accessibility", map[string]any{
			"fontSize": "huge",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestPreferencesHandler_UpdateNotifications(t *testing.T) {
	s := newTestStore()
	router := setupPreferencesRouter(s, nil)

	rec := doJSON(t, router, "PATCH", "/api/v1/preferences/notifications", map[string]bool{"desktop": true})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.NotificationPreferences{Enabled: true, Sound: true, Desktop: true},
		decodePreferences(t, rec).Preferences.Notifications)
}

func TestPreferencesHandler_ResponseMatchesItsRevision(t *testing.T) {
	s := newTestStore()
	router := setupPreferencesRouter(s, nil)

	var mu sync.Mutex
	committed := make(map[string]state.State)
	s.Subscribe(func(c store.Change) {
		mu.Lock()
		committed[c.Revision.String()] = c.Current
		mu.Unlock()
	})

	// Concurrent OS scheme updates land between requests.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		schemes := []models.ColorScheme{models.ColorSchemeDark, models.ColorSchemeLight}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				s.Dispatch(state.UpdateSystemPreference{Preference: schemes[i%2]})
			}
		}
	}()

	for i := 0; i < 20; i++ {
		rec := doJSON(t, router, "PATCH", "/api/v1/preferences/notifications", map[string]bool{"sound": i%2 == 1})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodePreferences(t, rec)

		mu.Lock()
		want, ok := committed[resp.Revision]
		mu.Unlock()
		require.True(t, ok, "revision %q was committed", resp.Revision)
		assert.Equal(t, want.Theme, resp.Theme)
		assert.Equal(t, want.Preferences, resp.Preferences)
	}

	close(stop)
	<-done
}

func TestPreferencesHandler_Reset(t *testing.T) {
	s := newTestStore()
	s.Dispatch(
		state.SetTheme{Theme: models.ThemeDark},
		state.SetFontSize{Size: models.FontSizeSmall},
		state.SetSidebarCollapsed{Collapsed: true},
	)
	router := setupPreferencesRouter(s, nil)

	rec := doJSON(t, router, "POST", "/api/v1/preferences/reset", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePreferences(t, rec)
	assert.Equal(t, models.DefaultPreferences(), resp.Preferences)
	assert.Equal(t, models.ThemeDark, resp.Theme.Theme, "theme survives reset")
}
