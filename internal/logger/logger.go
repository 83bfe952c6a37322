package logger

import (
	"log/slog"
	"os"
)

// Logger is the structured logger every service and command receives. It is
// slog plus a Fatal for boot-time failures.
type Logger struct {
	*slog.Logger
}

// New builds a text-handler Logger writing to stdout at the given slog level.
func New(level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Fatal logs at error level and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
