package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/prefstore/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing prefstore configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the default configuration",
	Long: `Dump the default configuration values in YAML format.

This shows all available configuration options with their default values.
You can redirect this output to a file to create a configuration template:

  prefstore config dump > prefstore.yaml

Configuration can be set via:
  - Config file (prefstore.yaml in ., ~/.config/prefstore or /etc/prefstore)
  - Environment variables (PREFSTORE_SERVER_PORT, PREFSTORE_STORAGE_BACKEND, etc.)
  - Command-line flags (for some options)

Environment variables use the PREFSTORE_ prefix and underscores for nesting.
Example: storage.backend -> PREFSTORE_STORAGE_BACKEND`,
	RunE: runConfigDump,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Show the configuration after merging defaults, config file, environment and flags. Secrets are redacted.",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
	configCmd.AddCommand(configShowCmd)
}

// redactedKeys are replaced before printing the effective configuration.
var redactedKeys = map[string]bool{"password": true, "dsn": true}

// toMap converts a struct to a map keyed by mapstructure tags, formatting
// durations for human readability.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		key := fieldType.Tag.Get("mapstructure")
		if key == "" {
			key = fieldType.Name
		}

		switch v := field.Interface().(type) {
		case time.Duration:
			result[key] = v.String()
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(field.Interface())
			} else {
				result[key] = field.Interface()
			}
		}
	}
	return result
}

func redact(m map[string]any) {
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			redact(nested)
			continue
		}
		if s, ok := v.(string); ok && redactedKeys[k] && s != "" {
			m[k] = "[REDACTED]"
		}
	}
}

func runConfigDump(cmd *cobra.Command, args []string) error {
	v := viper.New()
	config.SetDefaults(v)

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("loading defaults: %w", err)
	}

	yamlData, err := yaml.Marshal(toMap(&cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# prefstore Configuration File")
	fmt.Fprintln(out, "# =============================")
	fmt.Fprintln(out, "#")
	fmt.Fprintln(out, "# All values shown below are defaults.")
	fmt.Fprintln(out, "# Duration format: 30s, 5m, 1h")
	fmt.Fprintln(out, "#")
	fmt.Fprintln(out, "# Environment variable overrides:")
	fmt.Fprintln(out, "#   PREFSTORE_SERVER_HOST, PREFSTORE_SERVER_PORT")
	fmt.Fprintln(out, "#   PREFSTORE_STORAGE_BACKEND, PREFSTORE_STORAGE_DIR")
	fmt.Fprintln(out, "#   PREFSTORE_DATABASE_DRIVER, PREFSTORE_DATABASE_DSN")
	fmt.Fprintln(out, "#   PREFSTORE_REDIS_ADDR, PREFSTORE_COLOR_SCHEME_SOURCE")
	fmt.Fprintln(out, "#   PREFSTORE_LOGGING_LEVEL, PREFSTORE_LOGGING_FORMAT")
	fmt.Fprintln(out, "#   etc.")
	fmt.Fprintln(out, "#")
	fmt.Fprintln(out, "")
	fmt.Fprint(out, string(yamlData))

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m := toMap(cfg)
	redact(m)

	yamlData, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(yamlData))
	return nil
}
