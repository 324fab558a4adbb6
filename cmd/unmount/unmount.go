// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package unmount implements spec.md §6's `unmount --all [--force]`.
package unmount

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
)

var (
	all   bool
	share string
	force bool
)

func NewUnmountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unmount",
		Short: "Unmount shares",
		RunE:  runUnmount,
	}
	cmd.Flags().BoolVar(&all, "all", false, "Unmount every configured share")
	cmd.Flags().StringVar(&share, "share", "", "Unmount only this share")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the idle check and force unmount")
	return cmd
}

func runUnmount(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	if share != "" {
		if err := app.Controller.UnmountOne(context.Background(), share, force); err != nil {
			return err
		}
		fmt.Printf("unmounted %s\n", share)
		return nil
	}

	if !all {
		return fmt.Errorf("specify --all or --share NAME")
	}

	errs := app.Controller.UnmountAll(context.Background(), force)
	if len(errs) > 0 {
		for name, err := range errs {
			fmt.Printf("%s: %v\n", name, err)
		}
		return fmt.Errorf("%d share(s) failed to unmount", len(errs))
	}
	fmt.Println("unmounted all shares")
	return nil
}
