package colorscheme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
)

// Dispatcher receives the system preference intents.
type Dispatcher interface {
	Dispatch(intents ...state.Intent) state.State
}

// Watcher relays OS color scheme changes into a Dispatcher.
//
// Only values that differ from the last seen value are dispatched. The last
// seen value starts at the baseline passed to Start, so a value already
// captured at startup never produces a second transition.
type Watcher struct {
	source     Source
	dispatcher Dispatcher
	logger     *slog.Logger

	mu      sync.Mutex
	current models.ColorScheme
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher creates a watcher. A nil source makes Start a no-op, which is
// how headless environments without a change signal are handled.
func NewWatcher(source Source, dispatcher Dispatcher, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		source:     source,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "colorscheme")),
	}
}

// Start registers the change listener. Calling Start while running is a no-op.
func (w *Watcher) Start(ctx context.Context, baseline models.ColorScheme) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.logger.Debug("watcher already running")
		return nil
	}

	w.current = baseline

	if w.source == nil {
		w.logger.Debug("no color scheme source, skipping watch")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	go func() {
		defer close(done)
		if err := w.source.Watch(watchCtx, w.emit); err != nil && watchCtx.Err() == nil {
			w.logger.Warn("color scheme watch stopped", slog.String("error", err.Error()))
		}
	}()

	w.logger.Info("watching system color scheme", slog.String("baseline", string(baseline)))
	return nil
}

// Stop deregisters the listener and waits for the watch goroutine. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	w.logger.Debug("stopped watching system color scheme")
}

// Running reports whether a watch goroutine is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Current returns the last known system color scheme.
func (w *Watcher) Current() models.ColorScheme {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Watcher) emit(scheme models.ColorScheme) {
	if !scheme.IsKnown() {
		return
	}

	w.mu.Lock()
	if scheme == w.current || w.cancel == nil {
		w.mu.Unlock()
		return
	}
	w.current = scheme
	w.mu.Unlock()

	w.logger.Info("system color scheme changed", slog.String("scheme", string(scheme)))
	w.dispatcher.Dispatch(state.UpdateSystemPreference{Preference: scheme})
}
