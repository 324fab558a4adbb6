// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package switchcmd implements spec.md §6's `switch --share X --to
// primary|fallback [--force]`.
package switchcmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/reconciler"
)

var (
	share string
	to    string
	force bool
)

func NewSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Switch a share to the given backend",
		RunE:  runSwitch,
	}
	cmd.Flags().StringVar(&share, "share", "", "Share to switch")
	cmd.Flags().StringVar(&to, "to", "", "Target backend: primary or fallback")
	cmd.Flags().BoolVar(&force, "force", false, "Switch even with open files on the mount")
	cmd.MarkFlagRequired("share")
	cmd.MarkFlagRequired("to")
	return cmd
}

func runSwitch(cmd *cobra.Command, args []string) error {
	var target model.Backend
	switch to {
	case "primary":
		target = model.BackendPrimary
	case "fallback":
		target = model.BackendFallback
	default:
		return fmt.Errorf("--to must be \"primary\" or \"fallback\", got %q", to)
	}

	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	result := app.Controller.SwitchShare(context.Background(), share, target, force)
	switch result.Outcome {
	case reconciler.SwitchSuccess:
		fmt.Printf("switched %s to %s\n", share, target)
		return nil
	case reconciler.SwitchBusyOpenFiles:
		return fmt.Errorf("switch blocked: open files on %s (use --force)", share)
	default:
		return fmt.Errorf("switch failed: %w", result.Err)
	}
}
