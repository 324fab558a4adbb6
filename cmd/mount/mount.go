// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package mount implements spec.md §6's `mount --all`.
package mount

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/surface"
)

var asJSON bool

func NewMountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount",
		Short: "Mount every favorite that has no active backend",
		RunE:  runMount,
	}
	cmd.Flags().Bool("all", true, "Mount every configured share (the only supported mode)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

func runMount(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	statuses := app.Controller.MountAll(context.Background())

	if asJSON {
		return surface.PrintJSON(os.Stdout, statuses)
	}
	surface.PrintStatusTable(os.Stdout, statuses)
	return nil
}
