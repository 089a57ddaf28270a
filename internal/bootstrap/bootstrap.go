// Package bootstrap sequences store startup: rehydrate, seed, apply effects,
// start following the OS color scheme, then persist later changes.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jmylchreest/prefstore/internal/colorscheme"
	"github.com/jmylchreest/prefstore/internal/effects"
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/persistence"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/jmylchreest/prefstore/internal/store"
)

// Options carries caller-supplied initial values. They win over persisted
// values, which win over the hard-coded defaults.
type Options struct {
	Theme       *models.Theme
	Brand       *models.Brand
	AutoTheme   *bool
	Preferences models.PreferencesPatch
}

// Deps are the components the orchestrator wires together. Everything but
// Store is optional.
type Deps struct {
	Store     *store.Store
	Gateway   *persistence.Gateway
	Writer    *persistence.Writer
	Applier   *effects.Applier
	Watcher   *colorscheme.Watcher
	Detectors []colorscheme.Detector
	Logger    *slog.Logger
}

// Orchestrator runs the startup sequence once.
type Orchestrator struct {
	deps    Deps
	logger  *slog.Logger
	session *Session
	once    sync.Once
}

// New creates an orchestrator.
func New(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		deps:   deps,
		logger: logger.With(slog.String("component", "bootstrap")),
		session: &Session{
			ready: make(chan struct{}),
		},
	}
}

// Session returns the session handle. It is available before Start so
// readiness can be observed while startup runs.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Start runs the startup sequence. Only the first call does any work; later
// calls return the same session. Start never fails: storage and detection
// problems degrade to defaults.
func (o *Orchestrator) Start(ctx context.Context, opts Options) *Session {
	o.once.Do(func() { o.start(ctx, opts) })
	return o.session
}

func (o *Orchestrator) start(ctx context.Context, opts Options) {
	d := o.deps
	s := o.session

	// 1. rehydrate
	var persisted persistence.Snapshot
	if d.Gateway != nil {
		persisted = d.Gateway.Load(ctx)
	}

	// 2. merge
	themeInit, prefsInit := Merge(opts, persisted)

	// 3. seed. The applier paints the defaults first, then follows the
	// seeding dispatch through its subscription.
	if d.Applier != nil {
		d.Applier.ApplyAll(d.Store.Snapshot())
		d.Applier.Attach(d.Store)
		s.applier = d.Applier
	}

	detected, source := colorscheme.Detect(ctx, d.Detectors...)
	themeInit.Detected = detected

	seeded := d.Store.Dispatch(themeInit, prefsInit)
	s.markReady()

	o.logger.Info("preferences initialized",
		slog.String("theme", string(seeded.Theme.Theme)),
		slog.String("brand", string(seeded.Theme.Brand)),
		slog.Bool("auto_theme", seeded.Theme.AutoTheme),
		slog.String("system_preference", string(detected)),
		slog.String("detected_by", source),
	)

	// 4. follow the OS scheme from the seeded value onwards
	if d.Watcher != nil {
		if err := d.Watcher.Start(context.WithoutCancel(ctx), seeded.Theme.SystemPreference); err != nil {
			o.logger.Warn("color scheme watcher not started", slog.String("error", err.Error()))
		}
		s.watcher = d.Watcher
	}

	// 5. persist everything after the seed
	if d.Writer != nil {
		d.Writer.Attach(d.Store)
		s.writer = d.Writer
	}
}

// Merge combines caller options with persisted values into the seeding
// intents. A caller-supplied theme is an explicit choice, so it turns a
// persisted auto mode off unless the caller also sets AutoTheme.
func Merge(opts Options, persisted persistence.Snapshot) (state.InitializeTheme, state.InitializePreferences) {
	t := persisted.Theme

	if opts.Theme != nil {
		t.Theme = opts.Theme
		t.AutoTheme = models.Ptr(false)
	}
	if opts.Brand != nil {
		t.Brand = opts.Brand
	}
	if opts.AutoTheme != nil {
		t.AutoTheme = opts.AutoTheme
	}

	themeInit := state.InitializeTheme{
		Theme:     t.Theme,
		Brand:     t.Brand,
		AutoTheme: t.AutoTheme,
	}
	prefsInit := state.InitializePreferences{
		Patch: opts.Preferences.Over(persisted.Preferences),
	}
	return themeInit, prefsInit
}

// Session is the running instance produced by Start.
type Session struct {
	ready     chan struct{}
	readyOnce sync.Once

	watcher *colorscheme.Watcher
	writer  *persistence.Writer
	applier *effects.Applier

	teardownOnce sync.Once
	teardownErr  error
}

// Ready is closed once the store holds rehydrated state.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether Ready is closed.
func (s *Session) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Teardown stops the watcher, flushes and detaches the writer and detaches
// the applier. It is safe to call more than once; later calls return the
// first result.
func (s *Session) Teardown(ctx context.Context) error {
	s.teardownOnce.Do(func() {
		var errs []error
		if s.watcher != nil {
			s.watcher.Stop()
		}
		if s.writer != nil {
			if err := s.writer.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if s.applier != nil {
			s.applier.Detach()
		}
		s.teardownErr = errors.Join(errs...)
	})
	return s.teardownErr
}
