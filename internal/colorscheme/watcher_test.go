package colorscheme

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmylchreest/prefstore/internal/config"
	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/rymdport/portal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingDispatcher struct {
	mu      sync.Mutex
	intents []state.Intent
}

func (r *recordingDispatcher) Dispatch(intents ...state.Intent) state.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, intents...)
	return state.Default()
}

func (r *recordingDispatcher) preferences() []models.ColorScheme {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ColorScheme
	for _, in := range r.intents {
		if u, ok := in.(state.UpdateSystemPreference); ok {
			out = append(out, u.Preference)
		}
	}
	return out
}

// chanSource forwards values sent on its channel.
type chanSource struct {
	values   chan models.ColorScheme
	watching atomic.Int32
}

func newChanSource() *chanSource {
	return &chanSource{values: make(chan models.ColorScheme)}
}

func (c *chanSource) Watch(ctx context.Context, emit func(models.ColorScheme)) error {
	c.watching.Add(1)
	defer c.watching.Add(-1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case v := <-c.values:
			emit(v)
		}
	}
}

func (c *chanSource) send(t *testing.T, v models.ColorScheme) {
	t.Helper()
	select {
	case c.values <- v:
	case <-time.After(time.Second):
		t.Fatal("source not watching")
	}
}

func TestWatcher_DispatchesOnlyChanges(t *testing.T) {
	src := newChanSource()
	d := &recordingDispatcher{}
	w := NewWatcher(src, d, discardLogger())

	require.NoError(t, w.Start(context.Background(), models.ColorSchemeDark))
	defer w.Stop()

	src.send(t, models.ColorSchemeDark) // same as baseline
	src.send(t, models.ColorSchemeLight)
	src.send(t, models.ColorSchemeLight)
	src.send(t, models.ColorSchemeUnknown)
	src.send(t, models.ColorSchemeDark)

	// A final round trip guarantees the previous emit completed.
	src.send(t, models.ColorSchemeDark)

	assert.Equal(t, []models.ColorScheme{models.ColorSchemeLight, models.ColorSchemeDark}, d.preferences())
	assert.Equal(t, models.ColorSchemeDark, w.Current())
}

func TestWatcher_StartTwiceRegistersOnce(t *testing.T) {
	src := newChanSource()
	w := NewWatcher(src, &recordingDispatcher{}, discardLogger())

	require.NoError(t, w.Start(context.Background(), models.ColorSchemeLight))
	require.NoError(t, w.Start(context.Background(), models.ColorSchemeDark))
	defer w.Stop()

	assert.Eventually(t, func() bool { return src.watching.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), src.watching.Load())
	assert.Equal(t, models.ColorSchemeLight, w.Current(), "second Start must not reset the baseline")
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	src := newChanSource()
	d := &recordingDispatcher{}
	w := NewWatcher(src, d, discardLogger())

	require.NoError(t, w.Start(context.Background(), models.ColorSchemeLight))
	assert.True(t, w.Running())

	w.Stop()
	w.Stop()

	assert.False(t, w.Running())
	assert.Equal(t, int32(0), src.watching.Load())

	select {
	case src.values <- models.ColorSchemeDark:
		t.Fatal("source still receiving after Stop")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Empty(t, d.preferences())
}

func TestWatcher_NilSourceIsHeadless(t *testing.T) {
	w := NewWatcher(nil, &recordingDispatcher{}, discardLogger())

	require.NoError(t, w.Start(context.Background(), models.ColorSchemeDark))
	assert.False(t, w.Running())
	assert.Equal(t, models.ColorSchemeDark, w.Current())
	w.Stop()
}

func TestPollingSource_EmitsDetections(t *testing.T) {
	var calls atomic.Int32
	d := DetectorFunc{Label: "flip", Fn: func(context.Context) (models.ColorScheme, bool) {
		if calls.Add(1)%2 == 0 {
			return models.ColorSchemeDark, true
		}
		return models.ColorSchemeLight, true
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan models.ColorScheme, 16)
	done := make(chan error, 1)
	go func() {
		done <- NewPollingSource(d, 5*time.Millisecond).Watch(ctx, func(s models.ColorScheme) {
			select {
			case got <- s:
			default:
			}
		})
	}()

	assert.Equal(t, models.ColorSchemeLight, <-got, "polls immediately")
	assert.Equal(t, models.ColorSchemeDark, <-got)

	cancel()
	assert.NoError(t, <-done)
}

func TestPollingSource_NoDetector(t *testing.T) {
	err := (&PollingSource{}).Watch(context.Background(), func(models.ColorScheme) {})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestFileSource_FollowsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "color-scheme")
	require.NoError(t, os.WriteFile(path, []byte("light"), 0o644))

	src := NewFileSource(path)
	d := &recordingDispatcher{}
	w := NewWatcher(src, d, discardLogger())

	require.NoError(t, w.Start(context.Background(), models.ColorSchemeLight))
	defer w.Stop()

	// Give the watch time to arm before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("dark"), 0o644))

	assert.Eventually(t, func() bool {
		return w.Current() == models.ColorSchemeDark
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []models.ColorScheme{models.ColorSchemeDark}, d.preferences())
}

func TestFileSource_NoPath(t *testing.T) {
	err := (&FileSource{}).Watch(context.Background(), func(models.ColorScheme) {})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestFromConfig(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		detectors, source := FromConfig(config.ColorSchemeConfig{Source: config.ColorSourceNone})
		assert.Empty(t, detectors)
		assert.Nil(t, source)
	})

	t.Run("file", func(t *testing.T) {
		detectors, source := FromConfig(config.ColorSchemeConfig{Source: config.ColorSourceFile, File: "/tmp/x"})
		require.Len(t, detectors, 1)
		assert.Equal(t, "file", detectors[0].Name())
		assert.IsType(t, &FileSource{}, source)
	})

	t.Run("env is read once", func(t *testing.T) {
		detectors, source := FromConfig(config.ColorSchemeConfig{Source: config.ColorSourceEnv})
		require.Len(t, detectors, 1)
		assert.Nil(t, source)
	})

	t.Run("portal follows the signal", func(t *testing.T) {
		detectors, source := FromConfig(config.ColorSchemeConfig{Source: config.ColorSourcePortal, PollInterval: time.Second})
		require.Len(t, detectors, 1)
		require.IsType(t, &PortalSource{}, source)
		assert.Equal(t, time.Second, source.(*PortalSource).interval)
	})

	t.Run("auto layers sources in detection order", func(t *testing.T) {
		detectors, source := FromConfig(config.ColorSchemeConfig{Source: config.ColorSourceAuto, PollInterval: time.Second})
		require.Len(t, detectors, 3)
		assert.Equal(t, "env", detectors[0].Name())
		require.IsType(t, &LayeredSource{}, source)
		layers := source.(*LayeredSource).layers
		require.Len(t, layers, 2)
		assert.Equal(t, "env", layers[0].Detector.Name())
		assert.Nil(t, layers[0].Source, "environment is read once")
		assert.IsType(t, &PortalSource{}, layers[1].Source)
	})

	t.Run("auto with file", func(t *testing.T) {
		detectors, source := FromConfig(config.ColorSchemeConfig{Source: config.ColorSourceAuto, File: "/tmp/x"})
		require.Len(t, detectors, 4)
		assert.Equal(t, []string{"env", "file", "portal"}, []string{detectors[0].Name(), detectors[1].Name(), detectors[2].Name()})
		layers := source.(*LayeredSource).layers
		require.Len(t, layers, 3)
		assert.Nil(t, layers[0].Source)
		assert.IsType(t, &FileSource{}, layers[1].Source)
		assert.IsType(t, &PortalSource{}, layers[2].Source)
	})
}

type schemeLog struct {
	mu     sync.Mutex
	values []models.ColorScheme
}

func (l *schemeLog) emit(s models.ColorScheme) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = append(l.values, s)
}

func (l *schemeLog) last() models.ColorScheme {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.values) == 0 {
		return models.ColorSchemeUnknown
	}
	return l.values[len(l.values)-1]
}

func TestLayeredSource_EnvOverrideSurvivesFileWatch(t *testing.T) {
	t.Setenv("PREFSTORE_TEST_SCHEME", "dark")
	path := filepath.Join(t.TempDir(), "color-scheme")
	require.NoError(t, os.WriteFile(path, []byte("light"), 0o644))

	src := NewLayeredSource(
		Layer{Detector: NewEnvDetector("PREFSTORE_TEST_SCHEME")},
		Layer{Detector: NewFileDetector(path), Source: NewFileSource(path)},
	)
	d := &recordingDispatcher{}
	w := NewWatcher(src, d, discardLogger())

	require.NoError(t, w.Start(context.Background(), models.ColorSchemeDark))
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("light"), 0o644))

	assert.Never(t, func() bool { return len(d.preferences()) > 0 }, 200*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, models.ColorSchemeDark, w.Current())
}

func TestLayeredSource_HigherLayerWins(t *testing.T) {
	high, low := newChanSource(), newChanSource()
	var log schemeLog

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewLayeredSource(Layer{Source: high}, Layer{Source: low}).Watch(ctx, log.emit) }()

	low.send(t, models.ColorSchemeLight)
	assert.Eventually(t, func() bool { return log.last() == models.ColorSchemeLight }, time.Second, 5*time.Millisecond,
		"lower layer is followed while the higher one has no answer")

	high.send(t, models.ColorSchemeDark)
	assert.Eventually(t, func() bool { return log.last() == models.ColorSchemeDark }, time.Second, 5*time.Millisecond)

	low.send(t, models.ColorSchemeLight)
	assert.Never(t, func() bool { return log.last() == models.ColorSchemeLight }, 100*time.Millisecond, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestLayeredSource_SeedsFromDetectorsInOrder(t *testing.T) {
	var log schemeLog
	err := NewLayeredSource(
		Layer{Detector: DetectorFunc{Label: "env", Fn: func(context.Context) (models.ColorScheme, bool) {
			return models.ColorSchemeUnknown, false
		}}},
		Layer{Detector: DetectorFunc{Label: "file", Fn: func(context.Context) (models.ColorScheme, bool) {
			return models.ColorSchemeDark, true
		}}},
		Layer{Detector: DetectorFunc{Label: "portal", Fn: func(context.Context) (models.ColorScheme, bool) {
			return models.ColorSchemeLight, true
		}}},
	).Watch(context.Background(), log.emit)

	require.NoError(t, err, "detector-only layers stop after seeding")
	assert.Equal(t, []models.ColorScheme{models.ColorSchemeDark}, log.values)
}

func TestLayeredSource_StopsWhenAllLayersStop(t *testing.T) {
	err := NewLayeredSource(Layer{Source: &FileSource{}}, Layer{Source: &PollingSource{}}).
		Watch(context.Background(), func(models.ColorScheme) {})
	assert.ErrorIs(t, err, ErrNoSource)

	err = NewLayeredSource().Watch(context.Background(), func(models.ColorScheme) {})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestPortalSource_FollowsSettingChanged(t *testing.T) {
	signals := make(chan settings.Changed)
	src := &PortalSource{
		detector: &PortalDetector{read: func(string, string) (any, error) { return portalPreferLight, nil }},
		subscribe: func(cb func(settings.Changed)) error {
			for c := range signals {
				cb(c)
			}
			return nil
		},
	}

	got := make(chan models.ColorScheme, 16)
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(context.Background(), func(s models.ColorScheme) { got <- s })
	}()

	assert.Equal(t, models.ColorSchemeLight, <-got, "reads the current value once")

	signals <- settings.Changed{Namespace: appearanceNamespace, Key: "accent-color", Value: uint32(1)}
	signals <- settings.Changed{Namespace: "org.gnome.desktop.interface", Key: colorSchemeKey, Value: uint32(1)}
	signals <- settings.Changed{Namespace: appearanceNamespace, Key: colorSchemeKey, Value: portalPreferDark}
	assert.Equal(t, models.ColorSchemeDark, <-got)

	signals <- settings.Changed{Namespace: appearanceNamespace, Key: colorSchemeKey, Value: portalNoPreference}
	close(signals)

	assert.NoError(t, <-done)
	assert.Empty(t, got)
}

func TestPortalSource_PollsWithoutSignal(t *testing.T) {
	var reads atomic.Int32
	src := &PortalSource{
		detector: &PortalDetector{read: func(string, string) (any, error) {
			reads.Add(1)
			return portalPreferDark, nil
		}},
		subscribe: func(func(settings.Changed)) error { return errors.New("no SettingChanged signal") },
		interval:  5 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	var log schemeLog
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx, log.emit) }()

	assert.Eventually(t, func() bool { return reads.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.ColorSchemeDark, log.last())

	cancel()
	assert.NoError(t, <-done)
}

func TestPortalSource_NoDetector(t *testing.T) {
	err := (&PortalSource{}).Watch(context.Background(), func(models.ColorScheme) {})
	assert.ErrorIs(t, err, ErrNoSource)
}
