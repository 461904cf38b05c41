// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package logger builds the loggers
// used by the analysis pipeline.
//
// User facing output of the commands
// is printed to the standard output;
// the logger reports the progress
// of long analysis runs
// on the standard error.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger
// that writes to the standard error
// at the given level
// ("debug", "info", "warn", "error"),
// or is silent with the level "off".
func New(level string) (*zap.Logger, error) {
	if level == "off" {
		return zap.NewNop(), nil
	}

	lv, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: unknown level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lv)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: %v", err)
	}
	return l, nil
}

// Nop returns a logger that discards everything,
// for tests and silent runs.
func Nop() *zap.Logger {
	return zap.NewNop()
}
