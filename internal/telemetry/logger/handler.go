package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

const clockLayout = "15:04:05"

func newHandler(format string, out io.Writer, level slog.Level) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", "text", "console":
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: level, ReplaceAttr: shorten}), nil
	case "json":
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// shorten keeps text lines narrow: wall-clock time, errors by message and
// durations to the millisecond.
func shorten(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	v := a.Value
	switch v.Kind() {
	case slog.KindTime:
		if a.Key == slog.TimeKey {
			a.Value = slog.StringValue(v.Time().Local().Format(clockLayout))
		}
	case slog.KindDuration:
		a.Value = slog.StringValue(v.Duration().Round(time.Millisecond).String())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			a.Value = slog.StringValue(err.Error())
		}
	}
	return a
}
