package effects

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/prefstore/internal/models"
	"github.com/jmylchreest/prefstore/internal/state"
	"github.com/jmylchreest/prefstore/internal/store"
	"golang.org/x/text/language"
)

// Projection names written to the target.
const (
	AttrTheme          = "data-theme"
	AttrBrand          = "data-brand"
	AttrFontSize       = "data-font-size"
	AttrLang           = "lang"
	ClassDark          = "dark"
	ClassHighContrast  = "high-contrast"
	StyleMotion        = "--motion-preference"
	MotionReduce       = "reduce"
	MotionNoPreference = "no-preference"
)

// Subscriber is the part of the store the applier attaches to.
type Subscriber interface {
	Subscribe(store.Listener) func()
}

// Applier mirrors state onto a Target. It keeps no state of its own beyond
// the palettes; every call is driven by a (previous, current) pair.
type Applier struct {
	target   Target
	palettes Palettes
	logger   *slog.Logger

	mu          sync.Mutex
	unsubscribe func()
}

// NewApplier creates an applier. A nil target turns every operation into a
// no-op, which is how environments without a presentation surface run.
func NewApplier(target Target, palettes Palettes, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		target:   target,
		palettes: palettes,
		logger:   logger.With(slog.String("component", "effects")),
	}
}

// Attach subscribes the applier to s. Attaching twice is a no-op.
func (a *Applier) Attach(s Subscriber) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsubscribe != nil {
		return
	}
	a.unsubscribe = s.Subscribe(func(c store.Change) {
		a.Apply(c.Previous, c.Current)
	})
}

// Detach removes the subscription. Idempotent.
func (a *Applier) Detach() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// ApplyAll writes every projection of s regardless of what changed.
func (a *Applier) ApplyAll(s state.State) {
	if a.target == nil {
		return
	}
	a.applyTheme(s.Theme)
	a.applyPalette(s.Theme)
	a.target.SetAttribute(AttrBrand, string(s.Theme.Brand))
	a.target.SetStyleProperty(StyleMotion, motion(s.Preferences.ReducedMotion))
	a.target.SetClass(ClassHighContrast, s.Preferences.HighContrast)
	a.target.SetAttribute(AttrFontSize, string(s.Preferences.FontSize))
	a.target.SetAttribute(AttrLang, a.lang(s.Preferences.Language))
}

// Apply writes only the projections whose inputs differ between prev and cur.
func (a *Applier) Apply(prev, cur state.State) {
	if a.target == nil {
		return
	}

	pt, ct := prev.Theme, cur.Theme
	if pt.Theme != ct.Theme {
		a.applyTheme(ct)
	}
	if pt.Brand != ct.Brand {
		a.target.SetAttribute(AttrBrand, string(ct.Brand))
	}
	if pt.Theme != ct.Theme || pt.Brand != ct.Brand {
		a.applyPalette(ct)
	}

	pp, cp := prev.Preferences, cur.Preferences
	if pp.ReducedMotion != cp.ReducedMotion {
		a.target.SetStyleProperty(StyleMotion, motion(cp.ReducedMotion))
	}
	if pp.HighContrast != cp.HighContrast {
		a.target.SetClass(ClassHighContrast, cp.HighContrast)
	}
	if pp.FontSize != cp.FontSize {
		a.target.SetAttribute(AttrFontSize, string(cp.FontSize))
	}
	if pp.Language != cp.Language {
		a.target.SetAttribute(AttrLang, a.lang(cp.Language))
	}
}

func (a *Applier) applyTheme(t models.ThemeState) {
	a.target.SetAttribute(AttrTheme, string(t.Theme))
	a.target.SetClass(ClassDark, t.Theme.IsDark())
}

func (a *Applier) applyPalette(t models.ThemeState) {
	palette, ok := a.palettes.Lookup(t.Brand, t.Theme)
	if !ok {
		return
	}
	for _, kv := range cssVariables(palette) {
		a.target.SetStyleProperty(kv[0], kv[1])
	}
}

// lang returns the canonical BCP 47 form of tag, or tag unchanged when it
// does not parse.
func (a *Applier) lang(tag string) string {
	parsed, err := language.Parse(tag)
	if err != nil {
		a.logger.Debug("language tag not canonicalized",
			slog.String("language", tag),
			slog.String("error", err.Error()),
		)
		return tag
	}
	return parsed.String()
}

func motion(reduced bool) string {
	if reduced {
		return MotionReduce
	}
	return MotionNoPreference
}
