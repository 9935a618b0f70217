package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text handler for the process. verbose
// lowers the level to debug, which also turns on request/response
// logging in the instrumented http clients.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
