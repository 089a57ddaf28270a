// Package store holds the single in-memory copy of the preference state and
// serializes every transition through Dispatch.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/oklog/ulid/v2"
)

// Change describes one committed dispatch.
type Change struct {
	Revision models.Revision `json:"revision"`
	Intents  []string        `json:"intents"`
	Previous state.State     `json:"previous"`
	Current  state.State     `json:"current"`
	At       time.Time       `json:"at"`
}

// ThemeChanged reports whether the theme slice differs between Previous and Current.
func (c Change) ThemeChanged() bool {
	return c.Previous.Theme != c.Current.Theme
}

// PreferencesChanged reports whether the preferences slice differs between Previous and Current.
func (c Change) PreferencesChanged() bool {
	return c.Previous.Preferences != c.Current.Preferences
}

// Listener is notified synchronously after every committed change.
// A listener must not call Dispatch.
type Listener func(Change)

// Store is the preference state container.
type Store struct {
	// dispatchMu orders transitions and their notifications.
	dispatchMu sync.Mutex

	mu       sync.RWMutex
	current  state.State
	revision models.Revision

	listenersMu sync.RWMutex
	listeners   map[string]Listener
	streams     map[string]chan Change

	logger *slog.Logger
	now    func() time.Time
}

// New creates a store seeded with initial.
func New(initial state.State, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		current:   initial,
		listeners: make(map[string]Listener),
		streams:   make(map[string]chan Change),
		logger:    logger.With(slog.String("component", "store")),
		now:       time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() state.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Revision returns the revision of the last committed change, or "" before the first one.
func (s *Store) Revision() models.Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// SnapshotRevision returns the current state together with the revision that
// produced it, read under one lock.
func (s *Store) SnapshotRevision() (state.State, models.Revision) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.revision
}

// Dispatch applies intents in order as a single transition and returns the
// resulting state. Listeners are notified once if the state changed.
func (s *Store) Dispatch(intents ...state.Intent) state.State {
	next, _ := s.Commit(intents...)
	return next
}

// Commit is Dispatch that also reports the revision of the returned state.
// A dispatch that changes nothing reports the revision already current.
func (s *Store) Commit(intents ...state.Intent) (state.State, models.Revision) {
	if len(intents) == 0 {
		return s.SnapshotRevision()
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.current
	next := state.ReduceAll(prev, intents...)
	if next == prev {
		rev := s.revision
		s.mu.Unlock()
		s.logger.Debug("dispatch produced no change", slog.Any("intents", intentNames(intents)))
		return next, rev
	}

	at := s.now()
	rev := models.NewRevision(at)
	s.current = next
	s.revision = rev
	s.mu.Unlock()

	change := Change{
		Revision: rev,
		Intents:  intentNames(intents),
		Previous: prev,
		Current:  next,
		At:       at,
	}

	s.logger.Debug("state committed",
		slog.String("revision", rev.String()),
		slog.Any("intents", change.Intents),
	)

	s.notify(change)
	return next, rev
}

// Subscribe registers l and returns a function that removes it.
// The returned function may be called more than once.
func (s *Store) Subscribe(l Listener) func() {
	id := ulid.Make().String()

	s.listenersMu.Lock()
	s.listeners[id] = l
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// Events returns a buffered channel receiving every change. A full channel
// drops the change rather than blocking Dispatch. cancel closes the channel.
func (s *Store) Events(buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	id := ulid.Make().String()
	ch := make(chan Change, buffer)

	s.listenersMu.Lock()
	s.streams[id] = ch
	s.listenersMu.Unlock()

	s.logger.Debug("event stream added", slog.String("stream_id", id))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.listenersMu.Lock()
			if _, ok := s.streams[id]; ok {
				close(ch)
				delete(s.streams, id)
			}
			s.listenersMu.Unlock()
			s.logger.Debug("event stream removed", slog.String("stream_id", id))
		})
	}
}

// ListenerCount returns the number of registered listeners and streams.
func (s *Store) ListenerCount() int {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	return len(s.listeners) + len(s.streams)
}

func (s *Store) notify(change Change) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	for id, ch := range s.streams {
		select {
		case ch <- change:
		default:
			s.logger.Warn("event stream full, dropping change",
				slog.String("stream_id", id),
				slog.String("revision", change.Revision.String()),
			)
		}
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(change)
	}
}

func intentNames(intents []state.Intent) []string {
	names := make([]string, len(intents))
	for i, in := range intents {
		names[i] = in.Name()
	}
	return names
}
