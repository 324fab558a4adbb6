// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package install implements spec.md §6's `install`: writes a launchd
// user agent plist pointing at `mountaineer monitor` and loads
// it, so the monitor starts at login without a user having to run it by
// hand. Per spec.md §1/§7 this is narrow, external-collaborator logic —
// no templating engine, just text/template over a fixed label.
package install

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	mconfig "github.com/mountaineer/mountaineer/config"
)

const agentLabel = "com.mountaineer.monitor"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.Executable}}</string>
		<string>monitor</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.LogDir}}/monitor.out.log</string>
	<key>StandardErrorPath</key>
	<string>{{.LogDir}}/monitor.err.log</string>
</dict>
</plist>
`

func NewInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the monitor as a launchd user agent",
		RunE:  runInstall,
	}
}

func plistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", agentLabel+".plist"), nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve mountaineer's own path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("failed to resolve mountaineer's own path: %w", err)
	}

	logDir := mconfig.GetLogDir()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path, err := plistPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}

	tmpl := template.Must(template.New("plist").Parse(plistTemplate))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, struct {
		Label      string
		Executable string
		LogDir     string
	}{Label: agentLabel, Executable: exe, LogDir: logDir}); err != nil {
		return fmt.Errorf("failed to render launch agent plist: %w", err)
	}

	if out, err := exec.Command("launchctl", "load", "-w", path).CombinedOutput(); err != nil {
		return fmt.Errorf("launchctl load failed: %w (%s)", err, string(out))
	}

	fmt.Printf("installed and loaded %s\n", path)
	return nil
}
