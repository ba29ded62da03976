package logger // package logger builds the zap loggers used by both binaries

import (
    "fmt"
    "os"
    "path/filepath"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New returns a console logger in development and a JSON logger
// otherwise.  level is a zap level name such as "debug" or "warn".
func New(dev bool, level string) (*zap.Logger, error) {
    lvl, err := zapcore.ParseLevel(level)
    if err != nil {
        return nil, fmt.Errorf("log level %q: %w", level, err)
    }
    cfg := zap.NewProductionConfig()
    if dev {
        cfg = zap.NewDevelopmentConfig()
    }
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    return cfg.Build()
}

// NewFile returns a JSON logger that appends to path, creating the parent
// directory when needed.  The audit consumer writes through it.
func NewFile(path string) (*zap.Logger, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return nil, fmt.Errorf("create log dir: %w", err)
    }
    cfg := zap.NewProductionConfig()
    cfg.OutputPaths = []string{path}
    cfg.Sampling = nil
    cfg.EncoderConfig.TimeKey = "time"
    cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    return cfg.Build()
}
