// Package logging builds the debug logger. The terminal is owned by the
// UI, so logs go to a file when a path is configured and nowhere
// otherwise.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a file-backed debug logger, or a no-op logger when path is
// empty. The caller owns Sync on shutdown.
func New(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open debug log %s: %w", path, err)
	}
	return logger, nil
}
