package colorscheme

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/rymdport/portal/settings"
)

const (
	appearanceNamespace = "org.freedesktop.appearance"
	colorSchemeKey      = "color-scheme"
)

// Values of org.freedesktop.appearance color-scheme.
const (
	portalNoPreference uint32 = 0
	portalPreferDark   uint32 = 1
	portalPreferLight  uint32 = 2
)

// PortalDetector asks the XDG desktop portal settings interface over D-Bus.
type PortalDetector struct {
	read func(namespace, key string) (any, error)
}

// NewPortalDetector creates a PortalDetector using the session bus.
func NewPortalDetector() *PortalDetector {
	return &PortalDetector{read: settings.ReadOne}
}

// Name implements Detector.
func (p *PortalDetector) Name() string { return "portal" }

// Detect implements Detector. "No preference" is not an answer.
func (p *PortalDetector) Detect(ctx context.Context) (models.ColorScheme, bool) {
	if ctx.Err() != nil {
		return models.ColorSchemeUnknown, false
	}

	value, err := p.read(appearanceNamespace, colorSchemeKey)
	if err != nil {
		return models.ColorSchemeUnknown, false
	}

	scheme, err := portalScheme(value)
	if err != nil {
		return models.ColorSchemeUnknown, false
	}
	return scheme, scheme.IsKnown()
}

func portalScheme(value any) (models.ColorScheme, error) {
	v, ok := value.(uint32)
	if !ok {
		return models.ColorSchemeUnknown, fmt.Errorf("unexpected color-scheme type %T", value)
	}
	switch v {
	case portalPreferDark:
		return models.ColorSchemeDark, nil
	case portalPreferLight:
		return models.ColorSchemeLight, nil
	case portalNoPreference:
		return models.ColorSchemeUnknown, nil
	}
	// Unknown values are treated as no preference.
	return models.ColorSchemeUnknown, nil
}

// PortalSource follows the portal's SettingChanged signal. Portals that do
// not emit the signal are polled instead.
type PortalSource struct {
	detector  *PortalDetector
	subscribe func(func(settings.Changed)) error
	interval  time.Duration
}

// NewPortalSource creates a PortalSource for d. interval is the polling
// fallback period.
func NewPortalSource(d *PortalDetector, interval time.Duration) *PortalSource {
	return &PortalSource{detector: d, subscribe: settings.OnSignalSettingChanged, interval: interval}
}

// Watch implements Source.
func (p *PortalSource) Watch(ctx context.Context, emit func(models.ColorScheme)) error {
	if p.detector == nil {
		return ErrNoSource
	}

	changes := make(chan models.ColorScheme)
	failed := make(chan error, 1)

	// The subscription cannot be dropped; once ctx is done signals are discarded.
	go func() {
		failed <- p.subscribe(func(c settings.Changed) {
			if c.Namespace != appearanceNamespace || c.Key != colorSchemeKey {
				return
			}
			scheme, err := portalScheme(c.Value)
			if err != nil || !scheme.IsKnown() {
				return
			}
			select {
			case changes <- scheme:
			case <-ctx.Done():
			}
		})
	}()

	// Pick up a change made between detection and the subscription.
	if scheme, ok := p.detector.Detect(ctx); ok {
		emit(scheme)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case scheme := <-changes:
			emit(scheme)
		case err := <-failed:
			if err == nil {
				return nil
			}
			return NewPollingSource(p.detector, p.interval).Watch(ctx, emit)
		}
	}
}
