// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package folders implements spec.md §12's supplemented `folders --share
// X [--subpath S] [--json]`: lists the immediate subdirectories under a
// share's stable path, so `alias add --subpath` has discoverable values.
package folders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/surface"
)

var (
	share   string
	subpath string
	asJSON  bool
)

func NewFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List subdirectories under a share's stable path",
		RunE:  runFolders,
	}
	cmd.Flags().StringVar(&share, "share", "", "Share to list")
	cmd.Flags().StringVar(&subpath, "subpath", "", "List under this subpath instead of the share root")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	cmd.MarkFlagRequired("share")
	return cmd
}

func runFolders(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	cfg := app.Store.Config()
	spec, ok := bootstrap.FindShare(cfg, share)
	if !ok {
		return fmt.Errorf("unknown share %q", share)
	}

	root := model.StablePathFor(spec, cfg.Globals)
	if subpath != "" {
		root = filepath.Join(root, strings.Trim(subpath, "/"))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("folders: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	if asJSON {
		return surface.PrintJSON(os.Stdout, names)
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
