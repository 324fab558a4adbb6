// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package status implements spec.md §6's `status [--all] [--json]`: a
// read-only reconcile pass (no mounting) whose published ShareStatus is
// printed as a table or JSON.
package status

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/surface"
)

var (
	all    bool
	share  string
	asJSON bool
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current status of configured shares",
		RunE:  runStatus,
	}
	cmd.Flags().BoolVar(&all, "all", true, "Show every configured share")
	cmd.Flags().StringVar(&share, "share", "", "Show only this share")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	statuses := app.Controller.ReconcileNow(context.Background(), false)
	if err := app.Store.Flush(); err != nil {
		app.Log.Warn("failed to flush state after status", "err", err)
	}

	if share != "" {
		filtered := make([]model.ShareStatus, 0, 1)
		for _, s := range statuses {
			if model.FoldName(s.Name) == model.FoldName(share) {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("unknown share %q", share)
		}
		statuses = filtered
	}

	if asJSON {
		return surface.PrintJSON(os.Stdout, statuses)
	}
	surface.PrintStatusTable(os.Stdout, statuses)
	return nil
}
