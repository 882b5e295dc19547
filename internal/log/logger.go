// Package log is a thin layer over log/slog. Loggers carry the component
// that emits them, and HTTP handlers find a request-scoped logger in the
// context.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a slog.Logger tagged with a component. The untagged base is kept
// so WithComponent replaces the tag instead of stacking a second one.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the text handler on stdout built from Level.
	Handler slog.Handler
}

func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo, Component: ComponentApp}
}

// NewHandler builds a text or JSON handler writing to w. Any format other
// than "json" gives text.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = NewHandler(os.Stdout, "text", config.Level)
	}
	return bind(slog.New(handler), config.Component)
}

func bind(base *slog.Logger, component string) *Logger {
	tagged := base
	if component != "" {
		tagged = base.With(FieldComponent, component)
	}
	return &Logger{Logger: tagged, base: base, component: component}
}

// With adds attributes that survive a later WithComponent.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		base:      l.base.With(args...),
		component: l.component,
	}
}

func (l *Logger) WithComponent(component string) *Logger {
	return bind(l.base, component)
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs l as the slog default, so package-level slog calls
// share its handler and component.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
