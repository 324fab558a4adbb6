// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	configDir   string // ~/.mountaineer
	sharesDir   string // default shares_root, overridable per-Globals
	stateDir    string // holds state.json and its corrupted/backup siblings
	logDir      string // operational log file lives here
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}

	configDir = filepath.Join(homeDir, ".mountaineer")
	sharesDir = filepath.Join(homeDir, "Shares")
	stateDir = configDir
	logDir = filepath.Join(configDir, "logs")

	if err := EnsureDirectories(); err != nil {
		panic(fmt.Sprintf("failed to ensure configuration directories: %v", err))
	}
}

// GetConfigDir returns ~/.mountaineer, where config.toml and state.json live.
func GetConfigDir() string {
	return configDir
}

// GetSharesRoot returns the default shares_root, used when Globals.SharesRoot
// is empty (e.g. before the first config load).
func GetSharesRoot() string {
	return sharesDir
}

// GetStateDir returns the directory holding state.json and its
// corrupted-file backups.
func GetStateDir() string {
	return stateDir
}

// GetLogDir returns the directory for the operational log file.
func GetLogDir() string {
	return logDir
}

// EnsureDirectories creates the directories Mountaineer needs on startup.
func EnsureDirectories() error {
	dirs := []string{configDir, logDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
