// Package logging builds the zap logger used by the CLI.
package logging

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the log level and destination.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string
	// Verbose forces debug level. Quiet forces error level and wins over
	// Verbose.
	Verbose bool
	Quiet   bool
}

// New creates a console logger writing to w.
// Output is line oriented and carries no timestamps, since it is read by a
// person at a terminal.
func New(w io.Writer, cfg Config) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(cfg.level()),
	)
	return zap.New(core)
}

// level resolves the effective level.
func (c Config) level() zapcore.Level {
	switch {
	case c.Quiet:
		return zapcore.ErrorLevel
	case c.Verbose:
		return zapcore.DebugLevel
	default:
		return ParseLevel(c.Level)
	}
}

// ParseLevel converts a level name to zapcore.Level. Unknown names map to
// warn.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
