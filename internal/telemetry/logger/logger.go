package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is what imgcarve components log through. It is satisfied by the
// value New returns; tests usually pass Discard().
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config selects level, layout and destination.
type Config struct {
	Level  string // debug, info, warn or error; empty means info
	Format string // text or json; empty means text
	Output io.Writer
}

type carveLogger struct {
	*slog.Logger
}

func (l carveLogger) With(args ...any) Logger {
	return carveLogger{l.Logger.With(args...)}
}

// New builds a Logger from cfg. Unknown levels and formats are rejected.
func New(cfg Config) (Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	h, err := newHandler(cfg.Format, out, level)
	if err != nil {
		return nil, err
	}
	return carveLogger{slog.New(h)}, nil
}

// Discard returns a Logger that writes nothing.
func Discard() Logger {
	return carveLogger{slog.New(slog.DiscardHandler)}
}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	if lv, ok := levelNames[strings.ToLower(s)]; ok {
		return lv, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ValidLevel reports whether New accepts level.
func ValidLevel(level string) bool {
	_, err := parseLevel(level)
	return err == nil
}

// Slog exposes the *slog.Logger behind l for libraries that want one.
// Loggers not built here map to slog.Default().
func Slog(l Logger) *slog.Logger {
	if cl, ok := l.(carveLogger); ok {
		return cl.Logger
	}
	return slog.Default()
}

var fallback atomic.Pointer[Logger]

func init() {
	l, _ := New(Config{})
	fallback.Store(&l)
}

// SetDefault replaces the logger returned by Default. A nil l is ignored.
func SetDefault(l Logger) {
	if l != nil {
		fallback.Store(&l)
	}
}

// Default returns the process-wide fallback logger.
func Default() Logger {
	return *fallback.Load()
}
