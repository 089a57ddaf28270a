package persistence

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/jmylchreest/prefstore/internal/store"
)

const defaultWriteTimeout = 5 * time.Second

// Source is the part of the store the Writer observes.
type Source interface {
	Snapshot() state.State
	Subscribe(store.Listener) func()
}

// Writer persists committed changes in the background. Changes arriving while
// a write is in progress are coalesced and only the latest state is written.
// A slice is written only when its persisted projection changed.
type Writer struct {
	gateway *Gateway
	logger  *slog.Logger
	timeout time.Duration

	mu          sync.Mutex
	pending     *state.State
	savedTheme  models.ThemeState
	savedPrefs  models.UserPreferencesState
	unsubscribe func()

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	done     chan struct{}

	attached  atomic.Bool
	startOnce sync.Once
	closeOnce sync.Once
}

// NewWriter creates a Writer that saves through gateway.
func NewWriter(gateway *Gateway, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		gateway:  gateway,
		logger:   logger.With(slog.String("component", "persistence-writer")),
		timeout:  defaultWriteTimeout,
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Attach subscribes to src and starts the background loop. The state at
// attach time is taken as already persisted, so only later changes are
// written. Calling Attach more than once has no effect.
func (w *Writer) Attach(src Source) {
	w.startOnce.Do(func() {
		current := src.Snapshot()

		w.mu.Lock()
		w.savedTheme = current.Theme
		w.savedPrefs = current.Preferences
		w.mu.Unlock()

		w.unsubscribe = src.Subscribe(w.onChange)
		w.attached.Store(true)
		go w.run()
	})
}

func (w *Writer) onChange(c store.Change) {
	w.mu.Lock()
	next := c.Current
	w.pending = &next
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.writePending()
		case req := <-w.flushReq:
			w.writePending()
			close(req)
		case <-w.stop:
			w.writePending()
			return
		}
	}
}

func (w *Writer) writePending() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	savedTheme, savedPrefs := w.savedTheme, w.savedPrefs
	w.mu.Unlock()

	if pending == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if !sameTheme(pending.Theme, savedTheme) {
		if err := w.gateway.SaveTheme(ctx, pending.Theme); err != nil {
			w.logger.Warn("persisting theme failed", slog.String("error", err.Error()))
		} else {
			w.mu.Lock()
			w.savedTheme = pending.Theme
			w.mu.Unlock()
		}
	}

	if pending.Preferences != savedPrefs {
		if err := w.gateway.SavePreferences(ctx, pending.Preferences); err != nil {
			w.logger.Warn("persisting preferences failed", slog.String("error", err.Error()))
		} else {
			w.mu.Lock()
			w.savedPrefs = pending.Preferences
			w.mu.Unlock()
		}
	}
}

// sameTheme compares the persisted fields of two theme slices.
func sameTheme(a, b models.ThemeState) bool {
	return a.Theme == b.Theme && a.Brand == b.Brand && a.AutoTheme == b.AutoTheme
}

// Flush blocks until every change received so far has been written.
func (w *Writer) Flush(ctx context.Context) error {
	if !w.attached.Load() {
		return nil
	}

	req := make(chan struct{})
	select {
	case w.flushReq <- req:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close detaches from the store, writes anything pending and stops the loop.
// It is safe to call more than once and on a Writer that was never attached.
func (w *Writer) Close(ctx context.Context) error {
	var err error
	w.closeOnce.Do(func() {
		started := true
		w.startOnce.Do(func() { started = false })
		if !started {
			close(w.done)
			return
		}

		if w.unsubscribe != nil {
			w.unsubscribe()
		}
		close(w.stop)

		select {
		case <-w.done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}
