// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package favorites implements spec.md §6's `favorites (add | list |
// remove [--cleanup])` subcommands.
package favorites

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/surface"
)

func NewFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage configured SMB shares",
	}
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRemoveCmd())
	return cmd
}

func newAddCmd() *cobra.Command {
	var share, primaryHost, fallbackHost, username, remoteShare, mac string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Declare a new favorite share",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			cfg := app.Store.Config()
			if remoteShare == "" {
				remoteShare = share
			}
			cfg.Shares = append(cfg.Shares, model.ShareSpec{
				Name:            share,
				Username:        username,
				PrimaryHost:     primaryHost,
				FallbackHost:    fallbackHost,
				RemoteShareName: remoteShare,
				MAC:             mac,
			})
			if err := app.Store.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("favorite %q added\n", share)
			return nil
		},
	}
	cmd.Flags().StringVar(&share, "share", "", "Share name")
	cmd.Flags().StringVar(&primaryHost, "primary-host", "", "Primary host/IP")
	cmd.Flags().StringVar(&fallbackHost, "fallback-host", "", "Fallback host/IP")
	cmd.Flags().StringVar(&username, "username", "", "SMB username")
	cmd.Flags().StringVar(&remoteShare, "remote-share", "", "Remote share name (default: same as --share)")
	cmd.Flags().StringVar(&mac, "mac", "", "Primary host's MAC address, for the Wake-on-LAN nudge")
	cmd.MarkFlagRequired("share")
	cmd.MarkFlagRequired("primary-host")
	cmd.MarkFlagRequired("fallback-host")
	cmd.MarkFlagRequired("username")
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured favorite shares",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			shares := app.Store.Config().Shares
			if asJSON {
				return surface.PrintJSON(os.Stdout, shares)
			}
			for _, s := range shares {
				fmt.Printf("%s: %s (primary) / %s (fallback)\n", s.Name, s.PrimaryHost, s.FallbackHost)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var share string
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a favorite share",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}

			if cleanup {
				result, err := app.Controller.RemoveFavorite(context.Background(), share)
				if err != nil {
					return err
				}
				fmt.Printf("favorite %q removed\n", share)
				if len(result.AffectedAliases) > 0 {
					fmt.Printf("warning: the following aliases still reference %q and were NOT removed: %v\n", share, result.AffectedAliases)
				}
				return nil
			}

			// Without --cleanup: drop the declaration only. Whatever is
			// currently mounted, and its stable symlink, are left alone —
			// the share just stops being reconciled from the next cycle.
			cfg := app.Store.Config()
			kept := make([]model.ShareSpec, 0, len(cfg.Shares))
			found := false
			for _, s := range cfg.Shares {
				if model.FoldName(s.Name) == model.FoldName(share) {
					found = true
					continue
				}
				kept = append(kept, s)
			}
			if !found {
				return fmt.Errorf("unknown share %q", share)
			}
			cfg.Shares = kept
			if err := app.Store.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("favorite %q removed (mount left untouched; use --cleanup to unmount)\n", share)
			return nil
		},
	}
	cmd.Flags().StringVar(&share, "share", "", "Share to remove")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Unmount and delete the stable symlink before removing")
	cmd.MarkFlagRequired("share")
	return cmd
}
