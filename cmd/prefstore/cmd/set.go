package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/jmylchreest/prefstore/internal/app"
	"github.com/jmylchreest/prefstore/internal/facade"
	"github.com/jmylchreest/prefstore/internal/http/handlers"
	"github.com/jmylchreest/prefstore/internal/models"
)

// setter parses value and returns the batch operation applying it.
type setter func(value string) (func(b *facade.Batch), error)

// setters maps a field name to its setter.
var setters = map[string]setter{
	"theme": func(v string) (func(*facade.Batch), error) {
		t := models.Theme(v)
		if !t.IsValid() {
			return nil, fmt.Errorf("invalid theme %q (want light, dark, hc-light or hc-dark)", v)
		}
		return func(b *facade.Batch) { b.SetTheme(t) }, nil
	},
	"brand": func(v string) (func(*facade.Batch), error) {
		br := models.Brand(v)
		if !br.IsValid() {
			return nil, fmt.Errorf("invalid brand %q (want default, vibrant or corporate)", v)
		}
		return func(b *facade.Batch) { b.SetBrand(br) }, nil
	},
	"auto-theme":     boolSetter(func(b *facade.Batch, on bool) { b.SetAutoTheme(on) }),
	"sidebar":        boolSetter(func(b *facade.Batch, on bool) { b.SetSidebarCollapsed(on) }),
	"reduced-motion": boolSetter(func(b *facade.Batch, on bool) { b.SetReducedMotion(on) }),
	"high-contrast":  boolSetter(func(b *facade.Batch, on bool) { b.SetHighContrast(on) }),
	"font-size": func(v string) (func(*facade.Batch), error) {
		size := models.FontSize(v)
		if !size.IsValid() {
			return nil, fmt.Errorf("invalid font size %q (want small, medium or large)", v)
		}
		return func(b *facade.Batch) { b.SetFontSize(size) }, nil
	},
	"language": func(v string) (func(*facade.Batch), error) {
		if _, err := language.Parse(v); err != nil {
			return nil, fmt.Errorf("invalid language tag %q: %w", v, err)
		}
		return func(b *facade.Batch) { b.SetLanguage(v) }, nil
	},
	"notifications.enabled": boolSetter(func(b *facade.Batch, on bool) {
		b.UpdateNotificationSettings(models.NotificationPatch{Enabled: &on})
	}),
	"notifications.sound": boolSetter(func(b *facade.Batch, on bool) {
		b.UpdateNotificationSettings(models.NotificationPatch{Sound: &on})
	}),
	"notifications.desktop": boolSetter(func(b *facade.Batch, on bool) {
		b.UpdateNotificationSettings(models.NotificationPatch{Desktop: &on})
	}),
	"accessibility.screen-reader": boolSetter(func(b *facade.Batch, on bool) {
		b.UpdateAccessibilitySettings(models.AccessibilityPatch{ScreenReader: &on})
	}),
	"accessibility.keyboard-navigation": boolSetter(func(b *facade.Batch, on bool) {
		b.UpdateAccessibilitySettings(models.AccessibilityPatch{KeyboardNavigation: &on})
	}),
	"accessibility.focus-visible": boolSetter(func(b *facade.Batch, on bool) {
		b.UpdateAccessibilitySettings(models.AccessibilityPatch{FocusVisible: &on})
	}),
}

func boolSetter(apply func(b *facade.Batch, on bool)) setter {
	return func(v string) (func(*facade.Batch), error) {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", v)
		}
		return func(b *facade.Batch) { apply(b, on) }, nil
	}
}

func settableFields() []string {
	fields := make([]string, 0, len(setters))
	for name := range setters {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

var setCmd = &cobra.Command{
	Use:   "set <field> <value> [<field> <value>...]",
	Short: "Change one or more preferences",
	Long: `Change preferences and write them to the configured storage.

All pairs are applied as one change. Fields:
  ` + strings.Join(settableFields(), "\n  "),
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected field/value pairs, got %d arguments", len(args))
		}
		return nil
	},
	RunE: runSet,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore preference defaults",
	Long:  "Restore every preference to its default. Theme and brand are kept.",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	setCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "output format (text, json, yaml)")
	resetCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "output format (text, json, yaml)")
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(resetCmd)
}

// applySettings parses every pair, then dispatches them as one batch.
// Nothing is dispatched if any pair is invalid.
func applySettings(f *facade.Facade, args []string) error {
	ops := make([]func(*facade.Batch), 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		field, value := args[i], args[i+1]
		set, ok := setters[field]
		if !ok {
			return fmt.Errorf("unknown field %q", field)
		}
		op, err := set(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		ops = append(ops, op)
	}

	f.Batch(func(b *facade.Batch) {
		for _, op := range ops {
			op(b)
		}
	})
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		return applySettings(a.Facade, args)
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app.App) error {
		a.Facade.ResetPreferences()
		return nil
	})
}

// withApp runs fn against a started app, flushes writes and prints the result.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, slog.Default(), app.Options{})
	if err != nil {
		return err
	}

	if err := fn(a); err != nil {
		_ = a.Close(ctx)
		return err
	}
	if err := a.Close(ctx); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}

	resp := handlers.PreferencesFromState(a.Store.SnapshotRevision())
	return writeState(cmd.OutOrStdout(), showFormat, resp, a.Document.Snapshot())
}
