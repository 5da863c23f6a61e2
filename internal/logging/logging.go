// Package logging configures the process-wide zap logger. The TUI owns
// stdout, so logs always go to a file under the data dir.
package logging

import (
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileName = "cf0.log"

// New builds a file logger rooted at the cf0 data dir. CF0_DEBUG=1
// lowers the level to debug.
func New(dir string) (*zap.Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, logFileName)}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debugEnabled() {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// NewOrNop returns a working logger or a no-op one; the editor keeps
// running even when the log file cannot be opened.
func NewOrNop(dir string) *zap.Logger {
	log, err := New(dir)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func debugEnabled() bool {
	b, err := strconv.ParseBool(os.Getenv("CF0_DEBUG"))
	return err == nil && b
}
