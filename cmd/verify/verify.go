// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package verify implements spec.md §6's `verify (--all | --share X)
// [--json]`: like status, a read-only reconcile pass, but exits non-zero
// if any in-scope share is not on its desired backend — for scripting
// ("did the last reconcile actually converge").
package verify

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

func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check shares are on their desired backend",
		RunE:  runVerify,
	}
	cmd.Flags().BoolVar(&all, "all", true, "Verify every configured share")
	cmd.Flags().StringVar(&share, "share", "", "Verify only this share")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	statuses := app.Controller.ReconcileNow(context.Background(), false)
	if err := app.Store.Flush(); err != nil {
		app.Log.Warn("failed to flush state after verify", "err", err)
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
		if err := surface.PrintJSON(os.Stdout, statuses); err != nil {
			return err
		}
	} else {
		surface.PrintStatusTable(os.Stdout, statuses)
	}

	unconverged := 0
	for _, s := range statuses {
		if s.Desired != model.BackendNone && s.Active != s.Desired {
			unconverged++
		}
	}
	if unconverged > 0 {
		return fmt.Errorf("%d share(s) not on their desired backend", unconverged)
	}
	return nil
}
