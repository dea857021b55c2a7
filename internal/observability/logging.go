// Package observability carries per-build identity through a context so every
// log line emitted during a build can be correlated.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitemapper/internal/logfields"
)

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// LogContext holds the values attached to log records.
type LogContext struct {
	BuildID string
	Stage   string
}

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := GetContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := GetContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context from ctx.
func GetContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// ContextHandler decorates records with the build ID and stage found in the
// context passed to the *Context logging methods.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	lc := GetContext(ctx)
	if lc.BuildID != "" {
		r.AddAttrs(logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		r.AddAttrs(logfields.Stage(lc.Stage))
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}
