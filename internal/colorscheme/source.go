package colorscheme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jmylchreest/prefstore/internal/models"
)

// ErrNoSource is returned when a watch is requested without a change source.
var ErrNoSource = errors.New("no color scheme source")

// DefaultPollInterval is used by PollingSource when no interval is set.
const DefaultPollInterval = 5 * time.Second

// Source pushes OS color scheme values to emit until ctx is done.
// Implementations may emit the same value repeatedly; the Watcher dedups.
type Source interface {
	Watch(ctx context.Context, emit func(models.ColorScheme)) error
}

// Layer is one input of a LayeredSource. Detector seeds the layer's value
// before any Source starts; Source follows it afterwards. Either may be nil.
type Layer struct {
	Detector Detector
	Source   Source
}

// LayeredSource follows several layers ordered by priority, highest first.
// Whenever one reports, the value of the highest layer that has a known
// value is emitted, so a lower layer never overrides a higher one.
type LayeredSource struct {
	layers []Layer
}

// NewLayeredSource creates a LayeredSource.
func NewLayeredSource(layers ...Layer) *LayeredSource {
	return &LayeredSource{layers: layers}
}

type layerReport struct {
	layer  int
	scheme models.ColorScheme
}

// Watch implements Source. It returns once ctx is done or every layer
// source has stopped, joining the errors of the sources that failed.
func (l *LayeredSource) Watch(ctx context.Context, emit func(models.ColorScheme)) error {
	if len(l.layers) == 0 {
		return ErrNoSource
	}

	latest := make([]models.ColorScheme, len(l.layers))
	emitWinner := func() {
		for _, scheme := range latest {
			if scheme.IsKnown() {
				emit(scheme)
				return
			}
		}
	}

	for i, layer := range l.layers {
		if layer.Detector == nil {
			continue
		}
		if scheme, ok := layer.Detector.Detect(ctx); ok {
			latest[i] = scheme
		}
	}
	emitWinner()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	reports := make(chan layerReport)
	stopped := make(chan error, len(l.layers))

	running := 0
	for i, layer := range l.layers {
		if layer.Source == nil {
			continue
		}
		running++
		wg.Add(1)
		go func() {
			defer wg.Done()
			stopped <- layer.Source.Watch(ctx, func(scheme models.ColorScheme) {
				select {
				case reports <- layerReport{layer: i, scheme: scheme}:
				case <-ctx.Done():
				}
			})
		}()
	}
	if running == 0 {
		return nil
	}

	var errs []error
	for running > 0 {
		select {
		case <-ctx.Done():
			return nil
		case r := <-reports:
			latest[r.layer] = r.scheme
			emitWinner()
		case err := <-stopped:
			running--
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// PollingSource re-runs a detector on a fixed interval.
type PollingSource struct {
	Detector Detector
	Interval time.Duration
}

// NewPollingSource creates a PollingSource.
func NewPollingSource(d Detector, interval time.Duration) *PollingSource {
	return &PollingSource{Detector: d, Interval: interval}
}

// Watch implements Source.
func (p *PollingSource) Watch(ctx context.Context, emit func(models.ColorScheme)) error {
	if p.Detector == nil {
		return ErrNoSource
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	poll := func() {
		if scheme, ok := p.Detector.Detect(ctx); ok {
			emit(scheme)
		}
	}

	poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

// FileSource watches a color scheme file with fsnotify. The parent directory
// is watched so the file can be created, replaced or renamed into place.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Watch implements Source.
func (f *FileSource) Watch(ctx context.Context, emit func(models.ColorScheme)) error {
	if f.Path == "" {
		return ErrNoSource
	}

	target := filepath.Clean(f.Path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating watch directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	detector := NewFileDetector(target)
	read := func() {
		if scheme, ok := detector.Detect(ctx); ok {
			emit(scheme)
		}
	}

	// Pick up anything written between detection and the watch being armed.
	read()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				read()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher: %w", err)
		}
	}
}
