package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID      = "build_id"
	KeyStage        = "stage"
	KeyURL          = "url"
	KeyLoc          = "loc"
	KeyContentClass = "content_class"
	KeyField        = "field"
	KeyValue        = "value"
	KeyFallback     = "fallback"
	KeyFormat       = "format"
	KeyPattern      = "pattern"
	KeyPath         = "path"
	KeyFile         = "file"
	KeyCount        = "count"
	KeyReason       = "reason"
	KeyDurationMS   = "duration_ms"
	KeyError        = "error"
)

func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Stage(s string) slog.Attr           { return slog.String(KeyStage, s) }
func URL(u string) slog.Attr             { return slog.String(KeyURL, u) }
func Loc(l string) slog.Attr             { return slog.String(KeyLoc, l) }
func ContentClass(c string) slog.Attr    { return slog.String(KeyContentClass, c) }
func Field(name string) slog.Attr        { return slog.String(KeyField, name) }
func Value(v any) slog.Attr              { return slog.Any(KeyValue, v) }
func Fallback(v any) slog.Attr           { return slog.Any(KeyFallback, v) }
func Format(f string) slog.Attr          { return slog.String(KeyFormat, f) }
func Pattern(p string) slog.Attr         { return slog.String(KeyPattern, p) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func File(f string) slog.Attr            { return slog.String(KeyFile, f) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Reason(r string) slog.Attr          { return slog.String(KeyReason, r) }
func Duration(d time.Duration) slog.Attr { return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
