package logger

import "context"

type ctxKey struct{}

type scope struct {
	log   Logger
	runID string
}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(ctxKey{}).(scope)
	return s
}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	s := scopeOf(ctx)
	s.log = l
	return context.WithValue(ctx, ctxKey{}, s)
}

// WithRunID tags ctx with the carve run it belongs to.
func WithRunID(ctx context.Context, runID string) context.Context {
	s := scopeOf(ctx)
	s.runID = runID
	return context.WithValue(ctx, ctxKey{}, s)
}

// RunID returns the run attached by WithRunID, or "".
func RunID(ctx context.Context) string {
	return scopeOf(ctx).runID
}

// L returns the logger attached to ctx, or Default(), with run_id set when
// ctx carries one.
func L(ctx context.Context) Logger {
	s := scopeOf(ctx)
	l := s.log
	if l == nil {
		l = Default()
	}
	if s.runID != "" {
		l = l.With("run_id", s.runID)
	}
	return l
}
