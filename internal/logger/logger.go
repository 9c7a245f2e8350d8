// Package logger configures the global zap logger used across rpmdepgate.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the global logger at the requested level and installs it via
// zap.ReplaceGlobals. Valid levels: debug, info, warn, error.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return nil
}

// Logger returns the global sugared logger.
func Logger() *zap.SugaredLogger {
	return zap.S()
}
