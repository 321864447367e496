package watchkeeper

import (
	"log/slog"
	"os"
)

// Custom severities layered on top of the standard slog levels. Success
// marks a lifecycle milestone (e.g. watchdog started); Notice marks an
// expected but noteworthy terminal condition (e.g. watchdog idle exit).
// Both sit between Info and Warn so default handlers emit them.
const (
	// LevelSuccess is one step above Info.
	LevelSuccess = slog.LevelInfo + 1
	// LevelNotice is two steps above Info.
	LevelNotice = slog.LevelInfo + 2
)

// defaultLogger is the logger used when no WithLogger option is provided.
// It writes JSON to os.Stdout with the custom level names spelled out.
var defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	ReplaceAttr: RenameLevels,
}))

// RenameLevels is a slog HandlerOptions.ReplaceAttr function that renders
// LevelSuccess and LevelNotice under their own names instead of "INFO+1"
// and "INFO+2". Pass it to a handler when building a custom logger:
//
//	slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{ReplaceAttr: watchkeeper.RenameLevels}))
func RenameLevels(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch level {
	case LevelSuccess:
		a.Value = slog.StringValue("SUCCESS")
	case LevelNotice:
		a.Value = slog.StringValue("NOTICE")
	}
	return a
}
