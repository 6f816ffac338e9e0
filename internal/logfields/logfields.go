package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared by every package.
const (
	KeyBuildID     = "build_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeySource      = "source"
	KeyDestination = "destination"
	KeyCollection  = "collection"
	KeyCount       = "count"
	KeyURL         = "url"
	KeyLayout      = "layout"
	KeyEngine      = "engine"
	KeyTheme       = "theme"
	KeyEvent       = "event"
	KeyError       = "error"
)

// Helpers return slog.Attr so call sites stay terse and keys never drift.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr         { return slog.String(KeySource, p) }
func Destination(p string) slog.Attr    { return slog.String(KeyDestination, p) }
func Collection(name string) slog.Attr  { return slog.String(KeyCollection, name) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Layout(name string) slog.Attr      { return slog.String(KeyLayout, name) }
func Engine(name string) slog.Attr      { return slog.String(KeyEngine, name) }
func Theme(name string) slog.Attr       { return slog.String(KeyTheme, name) }
func Event(name string) slog.Attr       { return slog.String(KeyEvent, name) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000.0)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
