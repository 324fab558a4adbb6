// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the ambient, non-domain configuration: logging and
// filesystem path conventions. The declarative share/alias configuration
// is owned by internal/store, which is where spec.md's Store interface
// lives.
package config

import (
	"sync"

	"github.com/stratastor/logger"
)

// LoggerConfig holds the log level and Sentry settings GetLoggerConfig
// hands to the logger. config.toml has no table for them.
type LoggerConfig struct {
	LogLevel     string `mapstructure:"logLevel"`
	EnableSentry bool   `mapstructure:"enableSentry"`
	SentryDSN    string `mapstructure:"sentryDSN"`
}

var (
	loggerCfg     LoggerConfig
	loggerCfgOnce sync.Once
)

// SetLoggerConfig records cfg as the logger settings; only the first call
// takes effect. Nothing in this module calls it (internal/store does not),
// so GetLoggerConfig returns the INFO default.
func SetLoggerConfig(cfg LoggerConfig) {
	loggerCfgOnce.Do(func() {
		loggerCfg = cfg
	})
}

// GetLoggerConfig returns the effective logger.Config, defaulting to INFO
// with Sentry forwarding disabled before SetLoggerConfig has run (e.g. the
// very first log lines emitted while config.toml is still being read).
func GetLoggerConfig() logger.Config {
	if loggerCfg.LogLevel == "" {
		return logger.Config{LogLevel: "info"}
	}
	return logger.Config{
		LogLevel:     loggerCfg.LogLevel,
		EnableSentry: loggerCfg.EnableSentry,
		SentryDSN:    loggerCfg.SentryDSN,
	}
}
