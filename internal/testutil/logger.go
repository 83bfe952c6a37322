package testutil

import (
	"io"
	"log/slog"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
)

// MakeNoopLogger returns a logger that discards everything, for tests that
// only need a non-nil logger.
func MakeNoopLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))}
}
