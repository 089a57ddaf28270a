// Package app wires configuration into a running preference store: storage
// backend, persistence writer, document effects, color scheme watcher and the
// startup sequence.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/prefstore/internal/bootstrap"
	"github.com/jmylchreest/prefstore/internal/colorscheme"
	"github.com/jmylchreest/prefstore/internal/config"
	"github.com/jmylchreest/prefstore/internal/database"
	"github.com/jmylchreest/prefstore/internal/effects"
	"github.com/jmylchreest/prefstore/internal/facade"
	internalhttp "github.com/jmylchreest/prefstore/internal/http"
	"github.com/jmylchreest/prefstore/internal/http/handlers"
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/persistence"
	"github.com/jmylchreest/prefstore/internal/repository"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/jmylchreest/prefstore/internal/store"
	"github.com/jmylchreest/prefstore/internal/version"
)

// Options controls which long-running parts are started.
type Options struct {
	// FollowColorScheme starts the OS color scheme watcher. One-shot CLI
	// commands leave it off and only detect once.
	FollowColorScheme bool
}

// App is a running preference store.
type App struct {
	Store    *store.Store
	Facade   *facade.Facade
	Document *effects.Document
	Session  *bootstrap.Session

	cfg     *config.Config
	backend persistence.Backend
	logger  *slog.Logger
}

// New opens the configured backend and runs the startup sequence. The
// returned App is ready: its store holds rehydrated and seeded state.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	palettes, err := effects.DefaultPalettes()
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("loading brand palettes: %w", err)
	}

	s := store.New(state.Default(), logger)
	gateway := persistence.NewGateway(backend, persistence.Keys{
		Theme:       cfg.Storage.ThemeKey,
		Preferences: cfg.Storage.PreferencesKey,
	}, logger)
	doc := effects.NewDocument()

	detectors, source := colorscheme.FromConfig(cfg.ColorScheme)
	deps := bootstrap.Deps{
		Store:     s,
		Gateway:   gateway,
		Writer:    persistence.NewWriter(gateway, logger),
		Applier:   effects.NewApplier(doc, palettes, logger),
		Detectors: detectors,
		Logger:    logger,
	}

	var scheme facade.SchemeReader
	if opts.FollowColorScheme {
		watcher := colorscheme.NewWatcher(source, s, logger)
		deps.Watcher = watcher
		scheme = watcher
	}

	session := bootstrap.New(deps).Start(ctx, BootstrapOptions(cfg.Appearance))

	logger.Debug("preference store ready",
		slog.String("backend", backend.Name()),
		slog.String("color_scheme_source", cfg.ColorScheme.Source),
	)

	return &App{
		Store:    s,
		Facade:   facade.New(s, scheme),
		Document: doc,
		Session:  session,
		cfg:      cfg,
		backend:  backend,
		logger:   logger,
	}, nil
}

// Backend returns the storage backend.
func (a *App) Backend() persistence.Backend {
	return a.backend
}

// Close tears the session down, flushing pending writes, then closes the
// backend.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Session.Teardown(ctx), a.backend.Close())
}

// RegisterRoutes registers every API handler on server.
func (a *App) RegisterRoutes(server *internalhttp.Server) {
	api := server.API()

	handlers.NewHealthHandler(version.Version).
		WithReadiness(a.Session).
		WithStorage(a.backend.Name()).
		WithListenerCount(a.Store.ListenerCount).
		Register(api)

	handlers.NewPreferencesHandler(a.Facade).WithLogger(a.logger).Register(api)
	handlers.NewDocumentHandler(a.Document).Register(api)
	handlers.NewSettingsHandler().Register(api)

	events := handlers.NewEventsHandler(a.Store)
	if a.cfg.Server.HeartbeatInterval > 0 {
		events.SetHeartbeatInterval(a.cfg.Server.HeartbeatInterval)
	}
	if a.cfg.Server.EventBuffer > 0 {
		events.SetBuffer(a.cfg.Server.EventBuffer)
	}
	events.RegisterSSE(server.Router())
}

// OpenBackend opens the storage backend selected by cfg.Storage.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (persistence.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return persistence.NewMemoryBackend(), nil

	case config.BackendFile:
		backend, err := persistence.NewFileBackend(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening file storage: %w", err)
		}
		return backend, nil

	case config.BackendDatabase:
		logger.Debug("opening database storage", slog.Any("database", cfg.Database))
		db, err := database.New(cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return persistence.NewDatabaseBackend(repository.NewSettingRepository(db.DB), db), nil

	case config.BackendRedis:
		logger.Debug("opening redis storage", slog.Any("redis", cfg.Redis))
		backend, err := persistence.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return backend, nil
	}

	return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
}

// BootstrapOptions converts configured appearance values into caller
// options. Empty values are not supplied.
func BootstrapOptions(cfg config.AppearanceConfig) bootstrap.Options {
	var opts bootstrap.Options
	if cfg.Theme != "" {
		opts.Theme = models.Ptr(models.Theme(cfg.Theme))
	}
	if cfg.Brand != "" {
		opts.Brand = models.Ptr(models.Brand(cfg.Brand))
	}
	if cfg.Language != "" {
		opts.Preferences.Language = models.Ptr(cfg.Language)
	}
	return opts
}
