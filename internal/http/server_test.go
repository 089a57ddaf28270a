package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/prefstore/internal/app"
	"github.com/jmylchreest/prefstore/internal/config"
	internalhttp "github.com/jmylchreest/prefstore/internal/http"
	"github.com/jmylchreest/prefstore/internal/http/handlers"
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/persistence"
)

func newTestServer(t *testing.T) (*internalhttp.Server, *app.App) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: config.StorageConfig{
			Backend:        config.BackendMemory,
			ThemeKey:       persistence.DefaultThemeKey,
			PreferencesKey: persistence.DefaultPreferencesKey,
		},
		ColorScheme: config.ColorSchemeConfig{Source: config.ColorSourceNone},
	}

	a, err := app.New(context.Background(), cfg, logger, app.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	server := internalhttp.NewServer(cfg.Server, logger, "test")
	a.RegisterRoutes(server)
	return server, a
}

func TestServer_Routes(t *testing.T) {
	server, a := newTestServer(t)

	t.Run("readyz reports ready after bootstrap", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("change through the api reaches the document", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/v1/preferences/theme", strings.NewReader(`{"theme":"dark"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handlers.PreferencesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, models.ThemeDark, resp.Theme.Theme)
		assert.Equal(t, a.Store.Revision().String(), resp.Revision)

		assert.Equal(t, "dark", a.Document.Snapshot().Attributes["data-theme"])
	})

	t.Run("openapi document is served", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/openapi.json", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/v1/preferences/theme")
	})
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := internalhttp.NewServer(config.ServerConfig{ShutdownTimeout: 5 * time.Second}, logger, "test")
	server.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
