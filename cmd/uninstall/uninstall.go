// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package uninstall implements spec.md §6's `uninstall`: unloads and
// removes the launchd user agent plist written by `install`. Declared
// mounts and config are left untouched — this only stops the monitor
// from auto-starting.
package uninstall

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

const agentLabel = "com.mountaineer.monitor"

func NewUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the monitor's launchd user agent",
		RunE:  runUninstall,
	}
}

func runUninstall(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	path := filepath.Join(home, "Library", "LaunchAgents", agentLabel+".plist")

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Println("no launch agent installed")
		return nil
	}

	if out, err := exec.Command("launchctl", "unload", "-w", path).CombinedOutput(); err != nil {
		fmt.Printf("warning: launchctl unload failed: %v (%s)\n", err, string(out))
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	fmt.Printf("removed %s\n", path)
	return nil
}
