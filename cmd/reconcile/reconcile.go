// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile implements spec.md §6's `reconcile --all`: run one
// cycle immediately (with mounting enabled) and print the result,
// without starting the long-lived monitor loop.
package reconcile

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/surface"
)

var (
	all      bool
	asJSON   bool
)

func NewReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation cycle now",
		RunE:  runReconcile,
	}
	cmd.Flags().BoolVar(&all, "all", true, "Reconcile every configured share")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	statuses := app.Controller.ReconcileNow(context.Background(), true)
	if err := app.Store.Flush(); err != nil {
		app.Log.Warn("failed to flush state after reconcile", "err", err)
	}

	if asJSON {
		return surface.PrintJSON(os.Stdout, statuses)
	}
	surface.PrintStatusTable(os.Stdout, statuses)
	return nil
}
