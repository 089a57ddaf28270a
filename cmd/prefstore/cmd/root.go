// Package cmd implements the CLI commands for prefstore.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmylchreest/prefstore/internal/config"
	"github.com/jmylchreest/prefstore/internal/observability"
	"github.com/jmylchreest/prefstore/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "prefstore",
	Short:   "Theme and user preference store",
	Version: version.Short(),
	Long: `prefstore keeps theme, brand and user preferences in one place, restores
them from storage on startup, follows the operating system light/dark setting
and serves the state over an HTTP API with live change events.

Preferences can be stored in memory, in files, in a database (SQLite,
PostgreSQL, MySQL) or in Redis.`,
	SilenceUsage: true,
}

// Execute runs the command selected by os.Args.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	// Assigned here: initLogging refers to rootCmd.
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initLogging()
	}

	// log-level and log-format are read in initLogging rather than bound, so
	// an unset flag does not mask the environment.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./prefstore.yaml, ~/.config/prefstore/prefstore.yaml or /etc/prefstore/prefstore.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("storage", "", "storage backend (memory, file, database, redis)")
	mustBindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("storage"))
}

// initConfig layers defaults, the config file and PREFSTORE_* variables
// onto the global viper, which also carries the bound flags.
func initConfig() {
	cobra.CheckErr(config.Configure(viper.GetViper(), cfgFile))
	if f := viper.ConfigFileUsed(); f != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", f)
	}
}

func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// initLogging builds the process logger. An explicitly set --log-level or
// --log-format wins over PREFSTORE_LOGGING_* and the config file. The level
// can be changed later through PUT /api/v1/settings.
func initLogging() error {
	logCfg := config.LoggingConfig{
		Level:      normalizeLevel(flagOrViper("log-level", "logging.level", "info")),
		Format:     strings.ToLower(flagOrViper("log-format", "logging.format", "text")),
		AddSource:  viper.GetBool("logging.add_source"),
		TimeFormat: viper.GetString("logging.time_format"),
	}
	viper.Set("logging.level", logCfg.Level)
	viper.Set("logging.format", logCfg.Format)

	observability.SetDefault(observability.NewLoggerWithWriter(logCfg, os.Stderr))
	return nil
}

func flagOrViper(flag, key, fallback string) string {
	flags := rootCmd.PersistentFlags()
	if flags.Changed(flag) {
		v, _ := flags.GetString(flag)
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func normalizeLevel(level string) string {
	level = strings.ToLower(level)
	if level == "warning" {
		return "warn"
	}
	return level
}

// mustBindPFlag binds a viper key to a cobra flag and panics if binding fails.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %q to key %q: %v", flag.Name, key, err))
	}
}
