package store

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return New(state.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_DispatchNotifiesOncePerBatch(t *testing.T) {
	s := newTestStore()

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })
	defer unsubscribe()

	s.Dispatch(
		state.SetTheme{Theme: models.ThemeDark},
		state.SetBrand{Brand: models.BrandVibrant},
		state.SetFontSize{Size: models.FontSizeLarge},
	)

	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, []string{"setTheme", "setBrand", "setFontSize"}, c.Intents)
	assert.Equal(t, state.Default(), c.Previous)
	assert.Equal(t, models.ThemeDark, c.Current.Theme.Theme)
	assert.Equal(t, models.BrandVibrant, c.Current.Theme.Brand)
	assert.Equal(t, models.FontSizeLarge, c.Current.Preferences.FontSize)
	assert.True(t, c.ThemeChanged())
	assert.True(t, c.PreferencesChanged())
	assert.NotEmpty(t, c.Revision)
	assert.Equal(t, c.Revision, s.Revision())
}

func TestStore_NoChangeNoNotification(t *testing.T) {
	s := newTestStore()

	calls := 0
	s.Subscribe(func(Change) { calls++ })

	s.Dispatch(state.SetTheme{Theme: models.ThemeLight})
	s.Dispatch()

	assert.Equal(t, 0, calls)
	assert.Empty(t, s.Revision())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := newTestStore()

	snap := s.Snapshot()
	snap.Theme.Theme = models.ThemeHCDark

	assert.Equal(t, models.ThemeLight, s.Snapshot().Theme.Theme)
}

func TestStore_UnsubscribeIsIdempotent(t *testing.T) {
	s := newTestStore()

	calls := 0
	unsubscribe := s.Subscribe(func(Change) { calls++ })
	s.Dispatch(state.ToggleTheme{})

	unsubscribe()
	unsubscribe()
	s.Dispatch(state.ToggleTheme{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.ListenerCount())
}

func TestStore_ListenersSeeSerializedOrder(t *testing.T) {
	s := newTestStore()

	var mu sync.Mutex
	var revisions []models.Revision
	s.Subscribe(func(c Change) {
		mu.Lock()
		revisions = append(revisions, c.Revision)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(state.ToggleSidebar{})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, revisions, 50)
	for i := 1; i < len(revisions); i++ {
		assert.Less(t, revisions[i-1], revisions[i], "revisions must be strictly increasing")
	}
	assert.False(t, s.Snapshot().Preferences.SidebarCollapsed, "even number of toggles")
}

func TestStore_Events(t *testing.T) {
	s := newTestStore()

	events, cancel := s.Events(1)

	s.Dispatch(state.SetTheme{Theme: models.ThemeDark})
	s.Dispatch(state.SetTheme{Theme: models.ThemeLight}) // dropped, buffer full

	c := <-events
	assert.Equal(t, models.ThemeDark, c.Current.Theme.Theme)

	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok, "channel closed after cancel")
	assert.Equal(t, 0, s.ListenerCount())
}

func TestStore_ListenerMayReadSnapshot(t *testing.T) {
	s := newTestStore()

	var seen models.Theme
	s.Subscribe(func(Change) { seen = s.Snapshot().Theme.Theme })

	s.Dispatch(state.SetTheme{Theme: models.ThemeHCLight})

	assert.Equal(t, models.ThemeHCLight, seen)
}

func TestStore_CommitReportsRevision(t *testing.T) {
	s := newTestStore()

	snap, rev := s.Commit(state.SetTheme{Theme: models.ThemeDark})
	require.NotEmpty(t, rev)
	assert.Equal(t, models.ThemeDark, snap.Theme.Theme)

	cur, curRev := s.SnapshotRevision()
	assert.Equal(t, snap, cur)
	assert.Equal(t, rev, curRev)

	_, unchanged := s.Commit(state.SetTheme{Theme: models.ThemeDark})
	assert.Equal(t, rev, unchanged, "no-op keeps the current revision")
}

func TestStore_CommitPairsStateWithItsRevision(t *testing.T) {
	s := newTestStore()

	var mu sync.Mutex
	committed := make(map[models.Revision]state.State)
	s.Subscribe(func(c Change) {
		mu.Lock()
		committed[c.Revision] = c.Current
		mu.Unlock()
	})

	type result struct {
		state state.State
		rev   models.Revision
	}
	results := make(chan result, 40)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var r result
			if i%2 == 0 {
				r.state, r.rev = s.Commit(state.ToggleSidebar{})
			} else {
				r.state, r.rev = s.Commit(state.ToggleTheme{})
			}
			results <- r
		}()
	}
	wg.Wait()
	close(results)

	mu.Lock()
	defer mu.Unlock()
	for r := range results {
		assert.Equal(t, committed[r.rev], r.state)
	}
}
