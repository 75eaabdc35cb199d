package logging

import (
	"log/slog"
	"os"
)

// NewStdoutHandler returns the JSON handler every process logs through.
// Development builds log at debug level.
func NewStdoutHandler(appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}

// Setup installs the stdout JSON logger as the slog default.
func Setup(appEnv string) {
	slog.SetDefault(slog.New(NewStdoutHandler(appEnv)))
}

// SetupWithStore logs to stdout and persists ERROR records through pg.
func SetupWithStore(appEnv string, pg *PGHandler) {
	slog.SetDefault(slog.New(Combine(NewStdoutHandler(appEnv), pg)))
}
