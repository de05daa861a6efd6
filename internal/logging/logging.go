// Package logging builds the structured logger used by the kvs-server
// binary and passed down to its engine and server.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger at the given level (any zap level name: "debug",
// "info", "warn", "error", "dpanic", "panic", "fatal", in lower or upper
// case; anything else defaults to info). Built explicitly and passed to
// callers rather than installed as the global logger, so tests can supply
// their own.
func New(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.TimeKey = "ts"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
