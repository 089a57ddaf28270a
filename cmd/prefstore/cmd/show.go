package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/prefstore/internal/app"
	"github.com/jmylchreest/prefstore/internal/effects"
	"github.com/jmylchreest/prefstore/internal/http/handlers"
	"github.com/jmylchreest/prefstore/internal/models"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current preferences",
	Long: `Load preferences from the configured storage, apply configured appearance
overrides and OS color scheme detection, and print the resulting state.

Nothing is written back to storage.`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "output format (text, json, yaml)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, slog.Default(), app.Options{})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	resp := handlers.PreferencesFromState(a.Store.SnapshotRevision())
	return writeState(cmd.OutOrStdout(), showFormat, resp, a.Document.Snapshot())
}

// writeState renders resp in the requested format.
func writeState(w io.Writer, format string, resp handlers.PreferencesResponse, doc effects.DocumentSnapshot) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		// Round-trip through JSON so keys match the API.
		data, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("marshaling state: %w", err)
		}
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("converting state: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("marshaling yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "text":
		return writeText(w, resp, doc)
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}

func writeText(w io.Writer, resp handlers.PreferencesResponse, doc effects.DocumentSnapshot) error {
	out := termenv.NewOutput(w)
	bold := func(s string) termenv.Style { return out.String(s).Bold() }

	t := resp.Theme
	p := resp.Preferences

	fmt.Fprintf(w, "%s\n", bold("Theme"))
	fmt.Fprintf(w, "  theme:             %s\n", t.Theme)
	fmt.Fprintf(w, "  brand:             %s\n", t.Brand)
	fmt.Fprintf(w, "  auto theme:        %t\n", t.AutoTheme)
	fmt.Fprintf(w, "  system preference: %s\n", orDash(string(t.SystemPreference)))
	fmt.Fprintf(w, "  palette:           %s\n", swatches(out, doc))

	fmt.Fprintf(w, "%s\n", bold("Preferences"))
	fmt.Fprintf(w, "  sidebar collapsed: %t\n", p.SidebarCollapsed)
	fmt.Fprintf(w, "  reduced motion:    %t\n", p.ReducedMotion)
	fmt.Fprintf(w, "  high contrast:     %t\n", p.HighContrast)
	fmt.Fprintf(w, "  font size:         %s\n", p.FontSize)
	fmt.Fprintf(w, "  language:          %s\n", p.Language)
	fmt.Fprintf(w, "  notifications:     enabled=%t sound=%t desktop=%t\n",
		p.Notifications.Enabled, p.Notifications.Sound, p.Notifications.Desktop)
	fmt.Fprintf(w, "  accessibility:     screenReader=%t keyboardNavigation=%t focusVisible=%t\n",
		p.Accessibility.ScreenReader, p.Accessibility.KeyboardNavigation, p.Accessibility.FocusVisible)

	fmt.Fprintf(w, "%s %s\n", bold("Revision"), orDash(resp.Revision))
	return nil
}

// swatches renders the applied palette variables as colored blocks. Without
// color support only the values are printed.
func swatches(out *termenv.Output, doc effects.DocumentSnapshot) string {
	var s string
	for _, name := range models.RequiredCSSVariables {
		v, ok := doc.Styles[name]
		if !ok || v == "" {
			continue
		}
		block := out.String("  ").Background(out.Color(v)).String()
		s += block + " " + v + " "
	}
	return orDash(s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
