package logger

import (
	"log/slog"

	"github.com/pkg/errors"
)

// NewLogger creates a logger with the given level (DEBUG, INFO, WARN,
// ERROR, case-insensitive).
func NewLogger(logLevel string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, errors.WithStack(err)
	}

	return slog.New(newPlainHandler(&slog.HandlerOptions{
		Level: level,
	})), nil
}

// NewDefaultLogger creates a logger at INFO level.
func NewDefaultLogger() *slog.Logger {
	l, _ := NewLogger("INFO")
	return l
}
