// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// ExpandHome expands a leading "~" or "~/" to the current user's home
// directory, the way spec.md §6's loader rules require for shares_root,
// alias link paths, and log paths.
func ExpandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

var foldCaser = cases.Fold()

// FoldName returns the case-insensitive folded form of a ShareSpec or
// AliasSpec name, used to enforce Invariant 5 (name uniqueness) and as the
// RuntimeState key. Unicode-aware, unlike strings.ToLower, since share
// names are user-authored and not guaranteed ASCII.
func FoldName(name string) string {
	return foldCaser.String(name)
}

// Validate enforces spec.md §4.4/§6's load-time invariants: non-empty,
// non-duplicate (case-insensitive) share and alias names, non-empty hosts.
func (c *Config) Validate() error {
	seenShares := make(map[string]string, len(c.Shares))
	for _, s := range c.Shares {
		if s.Name == "" {
			return merrors.New(merrors.ConfigValidationFailed, "share name must not be empty")
		}
		if s.PrimaryHost == "" || s.FallbackHost == "" {
			return merrors.New(merrors.ConfigValidationFailed, fmt.Sprintf("share %q must declare both primary_host and fallback_host", s.Name))
		}
		folded := FoldName(s.Name)
		if prior, ok := seenShares[folded]; ok {
			return merrors.New(merrors.ConfigDuplicateName, fmt.Sprintf("share name %q collides with %q (case-insensitive)", s.Name, prior))
		}
		seenShares[folded] = s.Name
	}

	seenAliases := make(map[string]string, len(c.Aliases))
	for _, a := range c.Aliases {
		if a.Name == "" {
			return merrors.New(merrors.ConfigValidationFailed, "alias name must not be empty")
		}
		folded := FoldName(a.Name)
		if prior, ok := seenAliases[folded]; ok {
			return merrors.New(merrors.ConfigDuplicateName, fmt.Sprintf("alias name %q collides with %q (case-insensitive)", a.Name, prior))
		}
		seenAliases[folded] = a.Name
		if _, ok := seenShares[FoldName(a.ShareName)]; !ok {
			return merrors.New(merrors.ConfigUnknownShare, fmt.Sprintf("alias %q references unknown share %q", a.Name, a.ShareName))
		}
	}

	return nil
}

// FillDefaults seeds zero-valued non-bool Globals fields from
// DefaultGlobals, the way Loader rules in spec.md §6 describe ("missing
// fields get defaults"). The bool fields are left as they are; a false
// cannot be told apart from an omitted key here.
func (c *Config) FillDefaults() {
	d := DefaultGlobals()
	if c.Globals.SharesRoot == "" {
		c.Globals.SharesRoot = d.SharesRoot
	}
	if c.Globals.CheckIntervalSecs == 0 {
		c.Globals.CheckIntervalSecs = d.CheckIntervalSecs
	}
	if c.Globals.AutoFailbackStable == 0 {
		c.Globals.AutoFailbackStable = d.AutoFailbackStable
	}
	if c.Globals.ConnectTimeoutMS == 0 {
		c.Globals.ConnectTimeoutMS = d.ConnectTimeoutMS
	}
	if c.SchemaVersion == 0 {
		c.SchemaVersion = 1
	}
}
