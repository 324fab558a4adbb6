// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package alias implements spec.md §6's `alias (add | list | remove |
// reconcile --all)` subcommands.
package alias

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/linker"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/surface"
)

func NewAliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage short local names into a share's subpaths",
	}
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newReconcileCmd())
	return cmd
}

func newAddCmd() *cobra.Command {
	var name, share, subpath, linkPath string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Declare a new alias",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			cfg := app.Store.Config()
			if _, ok := bootstrap.FindShare(cfg, share); !ok {
				return fmt.Errorf("unknown share %q", share)
			}
			if linkPath == "" {
				linkPath = fmt.Sprintf("%s/Links/%s", cfg.Globals.SharesRoot, name)
			}
			cfg.Aliases = append(cfg.Aliases, model.AliasSpec{
				Name:      name,
				LinkPath:  linkPath,
				ShareName: share,
				Subpath:   subpath,
			})
			if err := app.Store.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("alias %q added\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Alias name")
	cmd.Flags().StringVar(&share, "share", "", "Share the alias points into")
	cmd.Flags().StringVar(&subpath, "subpath", "", "Subpath under the share's stable path")
	cmd.Flags().StringVar(&linkPath, "path", "", "Link path (default: <shares_root>/Links/<name>)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("share")
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			aliases := app.Store.Config().Aliases
			if asJSON {
				return surface.PrintJSON(os.Stdout, aliases)
			}
			for _, a := range aliases {
				fmt.Printf("%s -> %s/%s (%s)\n", a.Name, a.ShareName, a.Subpath, a.LinkPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a declared alias",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			cfg := app.Store.Config()
			kept := make([]model.AliasSpec, 0, len(cfg.Aliases))
			found := false
			for _, a := range cfg.Aliases {
				if model.FoldName(a.Name) == model.FoldName(name) {
					found = true
					continue
				}
				kept = append(kept, a)
			}
			if !found {
				return fmt.Errorf("unknown alias %q", name)
			}
			cfg.Aliases = kept
			if err := app.Store.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("alias %q removed\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Alias to remove")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-publish every alias's symlink and report its health",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			cfg := app.Store.Config()
			lnk := linker.NewStableLinker(app.Log)

			statuses := make([]linker.AliasStatus, 0, len(cfg.Aliases))
			for _, a := range cfg.Aliases {
				statuses = append(statuses, lnk.ReconcileAlias(a, cfg.Globals))
			}

			if asJSON {
				return surface.PrintJSON(os.Stdout, statuses)
			}
			unhealthy := 0
			for _, s := range statuses {
				status := "ok"
				if !s.Healthy {
					status = "FAIL: " + s.Reason
					unhealthy++
				}
				fmt.Printf("%s: %s\n", s.Name, status)
			}
			if unhealthy > 0 {
				return fmt.Errorf("%d alias(es) failed to reconcile", unhealthy)
			}
			return nil
		},
	}
	cmd.Flags().Bool("all", true, "Reconcile every declared alias (the only supported mode)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}
