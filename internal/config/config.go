// Package config defines prefstore's configuration and loads it with viper
// from defaults, a YAML file and PREFSTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultPollInterval    = 5 * time.Second
	defaultEventBuffer     = 32
	defaultHeartbeat       = 30 * time.Second
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

// Color scheme sources.
const (
	ColorSourceAuto     = "auto"
	ColorSourceEnv      = "env"
	ColorSourcePortal   = "portal"
	ColorSourceTerminal = "terminal"
	ColorSourceFile     = "file"
	ColorSourceNone     = "none"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Appearance  AppearanceConfig  `mapstructure:"appearance"`
	ColorScheme ColorSchemeConfig `mapstructure:"color_scheme"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	EventBuffer       int           `mapstructure:"event_buffer"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend        string `mapstructure:"backend"` // memory, file, database, redis
	Dir            string `mapstructure:"dir"`     // file backend directory
	ThemeKey       string `mapstructure:"theme_key"`
	PreferencesKey string `mapstructure:"preferences_key"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn" masq:"secret"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// RedisConfig holds the Redis backend connection settings.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password" masq:"secret"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// AppearanceConfig holds caller-supplied initial values. Empty fields are
// treated as not supplied, so persisted values and defaults apply.
type AppearanceConfig struct {
	Theme    string `mapstructure:"theme"`
	Brand    string `mapstructure:"brand"`
	Language string `mapstructure:"language"`
}

// ColorSchemeConfig selects how the OS light/dark preference is observed.
type ColorSchemeConfig struct {
	Source       string        `mapstructure:"source"` // auto, env, portal, terminal, file, none
	File         string        `mapstructure:"file"`
	EnvVar       string        `mapstructure:"env_var"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// EnvPrefix prefixes every environment override, with "." and "-" in keys
// replaced by "_": PREFSTORE_STORAGE_BACKEND=redis sets storage.backend.
const EnvPrefix = "PREFSTORE"

// Load reads configuration from defaults, an optional file and the
// environment, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if err := Configure(v, configPath); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Configure installs defaults and environment binding on v and reads the
// config file. With an empty configPath the usual locations are searched and
// a missing file is not an error.
func Configure(v *viper.Viper, configPath string) error {
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("prefstore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/prefstore")
		v.AddConfigPath("/etc/prefstore")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults registers the default of every key. `prefstore config dump`
// prints exactly these values.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.event_buffer", defaultEventBuffer)
	v.SetDefault("server.heartbeat_interval", defaultHeartbeat)

	// Storage defaults
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.theme_key", "theme-storage")
	v.SetDefault("storage.preferences_key", "user-preferences")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "prefstore.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "prefstore:")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Appearance defaults (empty = not supplied)
	v.SetDefault("appearance.theme", "")
	v.SetDefault("appearance.brand", "")
	v.SetDefault("appearance.language", "")

	// Color scheme defaults
	v.SetDefault("color_scheme.source", ColorSourceAuto)
	v.SetDefault("color_scheme.file", "")
	v.SetDefault("color_scheme.env_var", "PREFSTORE_COLOR_SCHEME")
	v.SetDefault("color_scheme.poll_interval", defaultPollInterval)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validBackends := map[string]bool{BackendMemory: true, BackendFile: true, BackendDatabase: true, BackendRedis: true}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("storage.backend must be one of: memory, file, database, redis")
	}
	if c.Storage.Backend == BackendFile && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required for the file backend")
	}
	if c.Storage.ThemeKey == "" || c.Storage.PreferencesKey == "" {
		return fmt.Errorf("storage.theme_key and storage.preferences_key are required")
	}
	if c.Storage.ThemeKey == c.Storage.PreferencesKey {
		return fmt.Errorf("storage.theme_key and storage.preferences_key must differ")
	}

	if c.Storage.Backend == BackendDatabase {
		validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
		if !validDrivers[c.Database.Driver] {
			return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
		}
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required")
		}
	}

	if c.Storage.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the redis backend")
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	validThemes := map[string]bool{"": true, "light": true, "dark": true, "hc-light": true, "hc-dark": true}
	if !validThemes[c.Appearance.Theme] {
		return fmt.Errorf("appearance.theme must be one of: light, dark, hc-light, hc-dark")
	}
	validBrands := map[string]bool{"": true, "default": true, "vibrant": true, "corporate": true}
	if !validBrands[c.Appearance.Brand] {
		return fmt.Errorf("appearance.brand must be one of: default, vibrant, corporate")
	}

	validSources := map[string]bool{
		ColorSourceAuto: true, ColorSourceEnv: true, ColorSourcePortal: true,
		ColorSourceTerminal: true, ColorSourceFile: true, ColorSourceNone: true,
	}
	if !validSources[c.ColorScheme.Source] {
		return fmt.Errorf("color_scheme.source must be one of: auto, env, portal, terminal, file, none")
	}
	if c.ColorScheme.Source == ColorSourceFile && c.ColorScheme.File == "" {
		return fmt.Errorf("color_scheme.file is required when color_scheme.source is file")
	}
	if c.ColorScheme.PollInterval < 0 {
		return fmt.Errorf("color_scheme.poll_interval must not be negative")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
