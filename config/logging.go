// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string   `yaml:"level"`    // debug, info, warn, error
	Encoding    string   `yaml:"encoding"` // json, console
	Development bool     `yaml:"development"`
	Outputs     []string `yaml:"outputs"` // zap sink URLs; empty means stderr
}

// ParseLevel maps a level name to a zapcore.Level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: log level %q: %w", s, err)
	}

	return lvl, nil
}

// NewLogger builds a logger from cfg. verbose forces debug level.
func NewLogger(cfg LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)

	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if len(cfg.Outputs) > 0 {
		zc.OutputPaths = cfg.Outputs
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}

	return logger, nil
}
