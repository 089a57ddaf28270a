// Package observability provides logging for prefstore.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/prefstore/internal/config"
	"github.com/m-mizutani/masq"
)

type contextKey string

// RequestIDKey is the context key for request IDs.
const RequestIDKey contextKey = "request_id"

// LevelTrace is more verbose than debug. It is used for per-dispatch detail.
const LevelTrace = slog.Level(-8)

// redacted replaces sensitive values in log output.
const redacted = "[REDACTED]"

var (
	// level is shared by every logger built here so it can be changed at runtime.
	level = new(slog.LevelVar)

	requestLogging atomic.Bool

	// sensitiveKeys are matched case-insensitively against attribute keys.
	sensitiveKeys = map[string]struct{}{
		"password":   {},
		"secret":     {},
		"token":      {},
		"apikey":     {},
		"api_key":    {},
		"credential": {},
		"dsn":        {},
	}

	// sensitiveParamPattern matches sensitive query parameters in URLs.
	sensitiveParamPattern = regexp.MustCompile(`(?i)([?&](?:password|secret|token|apikey|api_key|credential)=)[^&#\s]*`)
)

func init() {
	requestLogging.Store(true)
}

// NewLoggerWithWriter builds the process logger writing to w. Every logger
// built here shares one level, so SetLogLevel affects all of them.
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level.Set(parseLevel(cfg.Level))

	// masq handles struct values logged with slog.Any, e.g. config sections.
	// Fields tagged masq:"secret" are redacted whatever their name.
	structRedactor := masq.New(
		masq.WithFieldName("Password"),
		masq.WithFieldName("DSN"),
		masq.WithTag("secret"),
		masq.WithRedactMessage(redacted),
	)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if cfg.TimeFormat != "" && len(groups) == 0 {
					if t, ok := a.Value.Any().(time.Time); ok {
						return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
					}
				}
				return a
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok && len(groups) == 0 {
					return slog.String("logpos", fmt.Sprintf("%s:%d", relativeSource(src.File), src.Line))
				}
				return a
			case slog.LevelKey:
				if len(groups) == 0 {
					if lvl, ok := a.Value.Any().(slog.Level); ok && lvl <= LevelTrace {
						return slog.String(slog.LevelKey, "TRACE")
					}
				}
				return a
			}

			if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
				return slog.String(a.Key, redacted)
			}

			if a.Value.Kind() == slog.KindString {
				if s := a.Value.String(); strings.Contains(s, "=") {
					return slog.String(a.Key, sensitiveParamPattern.ReplaceAllString(s, "${1}"+redacted))
				}
				return a
			}

			if a.Value.Kind() == slog.KindAny {
				return structRedactor(groups, a)
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// relativeSource trims a source path to its module-relative form.
func relativeSource(file string) string {
	for _, marker := range []string{"/internal/", "/cmd/"} {
		if i := strings.LastIndex(file, marker); i >= 0 {
			return file[i+1:]
		}
	}
	return file
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelName is the inverse of parseLevel.
func levelName(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "trace"
	case l <= slog.LevelDebug:
		return "debug"
	case l <= slog.LevelInfo:
		return "info"
	case l <= slog.LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// GetLogLevel returns the current runtime log level name.
func GetLogLevel() string {
	return levelName(level.Level())
}

// SetLogLevel changes the level of every logger built by this package.
// Unknown names select info.
func SetLogLevel(name string) {
	level.Set(parseLevel(name))
}

// IsRequestLoggingEnabled reports whether successful HTTP requests are logged.
func IsRequestLoggingEnabled() bool {
	return requestLogging.Load()
}

// SetRequestLogging toggles logging of successful HTTP requests. Errors are
// always logged.
func SetRequestLogging(enabled bool) {
	requestLogging.Store(enabled)
}

// WithRequestID adds a request ID to the logger.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String("request_id", requestID))
}

// WithComponent adds a component name to the logger for identifying the source.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// RequestIDFromContext extracts a request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// SetDefault installs logger as the slog default.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
