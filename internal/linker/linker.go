// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package linker implements StableLinker (spec.md §4.3): atomic stable
// symlink publication and alias-link reconciliation.
package linker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/model"
	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

type StableLinker struct {
	log logger.Logger
}

func NewStableLinker(log logger.Logger) *StableLinker {
	return &StableLinker{log: log}
}

// Publish ensures linkPath is a symlink to target. It creates a sibling
// temporary symlink and renames it over linkPath — the rename is the
// atomicity primitive spec.md §4.3 and §8's "Atomicity of publish"
// property require: for every interleaving, either the old or the new
// target is observable, never neither.
func (l *StableLinker) Publish(target, linkPath string) error {
	parent := filepath.Dir(linkPath)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return merrors.New(merrors.LinkerPublishFailed, err.Error()).WithMetadata("link_path", linkPath)
	}

	if info, err := os.Lstat(linkPath); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return merrors.New(merrors.LinkerNotASymlink, "").WithMetadata("link_path", linkPath)
		}
	}

	tmp := filepath.Join(parent, fmt.Sprintf(".%s.tmp-%d", filepath.Base(linkPath), os.Getpid()))
	_ = os.Remove(tmp)

	if err := os.Symlink(target, tmp); err != nil {
		return merrors.New(merrors.LinkerPublishFailed, err.Error()).WithMetadata("link_path", linkPath)
	}

	if err := os.Rename(tmp, linkPath); err != nil {
		_ = os.Remove(tmp)
		return merrors.New(merrors.LinkerPublishFailed, err.Error()).WithMetadata("link_path", linkPath)
	}

	return nil
}

// Unpublish removes linkPath if and only if it is a symlink, per the
// "unmount" command's cleanup of the stable path (spec.md §4.8). A
// linkPath that doesn't exist, or that isn't a symlink, is left alone.
func (l *StableLinker) Unpublish(linkPath string) error {
	info, err := os.Lstat(linkPath)
	if err != nil {
		return nil
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	if err := os.Remove(linkPath); err != nil {
		return merrors.New(merrors.LinkerPublishFailed, err.Error()).WithMetadata("link_path", linkPath)
	}
	return nil
}

// Resolve reads linkPath's target, resolving a relative target against
// the link's own parent directory.
func (l *StableLinker) Resolve(linkPath string) (string, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		return "", merrors.New(merrors.LinkerResolveFailed, err.Error()).WithMetadata("link_path", linkPath)
	}
	if filepath.IsAbs(target) {
		return target, nil
	}
	return filepath.Join(filepath.Dir(linkPath), target), nil
}

// AliasStatus reports the health of one reconciled alias.
type AliasStatus struct {
	Name    string
	Healthy bool
	Reason  string
}

// ReconcileAlias publishes spec's symlink and reports its health: present,
// resolving to target, and target existing on disk.
func (l *StableLinker) ReconcileAlias(spec model.AliasSpec, globals model.Globals) AliasStatus {
	subpath := strings.Trim(spec.Subpath, "/")
	target := filepath.Join(model.ExpandHome(globals.SharesRoot), spec.ShareName)
	if subpath != "" {
		target = filepath.Join(target, subpath)
	}

	if err := l.Publish(target, model.ExpandHome(spec.LinkPath)); err != nil {
		l.log.Warn("alias reconcile: publish failed", "alias", spec.Name, "err", err)
		return AliasStatus{Name: spec.Name, Healthy: false, Reason: err.Error()}
	}

	resolved, err := l.Resolve(model.ExpandHome(spec.LinkPath))
	if err != nil {
		return AliasStatus{Name: spec.Name, Healthy: false, Reason: err.Error()}
	}
	if resolved != target {
		return AliasStatus{Name: spec.Name, Healthy: false, Reason: "link resolves to unexpected target"}
	}
	if _, err := os.Stat(target); err != nil {
		return AliasStatus{Name: spec.Name, Healthy: false, Reason: "target does not exist"}
	}

	return AliasStatus{Name: spec.Name, Healthy: true}
}
