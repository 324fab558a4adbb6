// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package config implements spec.md §6's `config (set KEY VALUE |
// show)`. Grounded on the teacher's cmd/config/config.go: a `show`
// subcommand that dumps the loaded config as YAML (via gopkg.in/yaml.v3
// here — v2 in the teacher).
package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or change Mountaineer's global settings",
	}
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newSetCmd())
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the currently loaded configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(app.Store.Config())
			if err != nil {
				return fmt.Errorf("failed to marshal config to YAML: %w", err)
			}
			fmt.Printf("# %s\n---\n%s", app.Store.ConfigPath(), string(out))
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one global setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			cfg := app.Store.Config()
			key, value := args[0], args[1]

			switch key {
			case "shares_root":
				cfg.Globals.SharesRoot = value
			case "check_interval_secs":
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("check_interval_secs must be an integer: %w", err)
				}
				cfg.Globals.CheckIntervalSecs = n
			case "auto_failback":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("auto_failback must be true/false: %w", err)
				}
				cfg.Globals.AutoFailback = b
			case "auto_failback_stable_secs":
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("auto_failback_stable_secs must be an integer: %w", err)
				}
				cfg.Globals.AutoFailbackStable = n
			case "connect_timeout_ms":
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("connect_timeout_ms must be an integer: %w", err)
				}
				cfg.Globals.ConnectTimeoutMS = n
			case "require_idle_on_switch":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("require_idle_on_switch must be true/false: %w", err)
				}
				cfg.Globals.RequireIdleOnSwitch = b
			default:
				return fmt.Errorf("unknown setting %q", key)
			}

			if err := app.Store.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", key, value)
			return nil
		},
	}
}
