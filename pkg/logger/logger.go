package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib logger that forwards lines to base at info level,
// tagged with the component name. Libraries that only accept a printf-style
// logger (cron) are wired through it.
func New(base *slog.Logger, component string) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), slog.LevelInfo)
}
