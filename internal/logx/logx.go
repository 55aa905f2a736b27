// Package logx is the ambient logging wrapper the cmd/ drivers use
// for progress and trace output, in place of the teacher's bare
// fmt.Printf to stdout — configured once from LUZ_LOG_LEVEL since no
// example repo in the retrieval pack imports a structured-logging
// library. Library packages (asm, link, sim) never log; they return
// errors.
package logx

import (
	"log/slog"
	"os"
)

// New returns a slog.Logger writing plain text to stderr at the
// level named by LUZ_LOG_LEVEL (debug|info|warn|error, default
// info).
func New() *slog.Logger {
	level := parseLevel(os.Getenv("LUZ_LOG_LEVEL"))
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
