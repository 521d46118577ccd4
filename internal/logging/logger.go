// Package logging builds the zap logger used for diagnostics. Results meant
// for the user are printed by the commands; the logger carries everything
// else to stderr.
package logging

import (
	"io"
	"os"

	"github.com/awesome-taskwarrior/tw/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level derives the log level from the configuration. Debug wins over
// verbose, and either overrides the configured level.
func Level(cfg config.Config) zapcore.Level {
	switch {
	case cfg.Debug:
		return zapcore.DebugLevel
	case cfg.Verbose:
		return zapcore.InfoLevel
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return zapcore.WarnLevel
	}
	return l
}

// New creates a console logger on stderr.
func New(cfg config.Config) *zap.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a console logger writing to w.
func NewWithWriter(cfg config.Config, w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(cfg.Debug)),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(Level(cfg)),
	)
	opts := []zap.Option{}
	if cfg.Debug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}

// encoderConfig keeps normal output terse; debug adds time and caller.
func encoderConfig(debug bool) zapcore.EncoderConfig {
	enc := zapcore.EncoderConfig{
		LevelKey:       "L",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if debug {
		enc.TimeKey = "T"
		enc.CallerKey = "C"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.EncodeCaller = zapcore.ShortCallerEncoder
	}
	return enc
}
