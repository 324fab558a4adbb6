// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"fmt"

	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/reconciler"
)

// findShare looks up spec by case-insensitive name in the live config.
func findShare(cfg *model.Config, name string) (model.ShareSpec, bool) {
	folded := model.FoldName(name)
	for _, s := range cfg.Shares {
		if model.FoldName(s.Name) == folded {
			return s, true
		}
	}
	return model.ShareSpec{}, false
}

// MountAll implements the `mount --all` command (spec.md §4.8): reconcile
// every share with attempt_mount=true, but only shares with no active
// backend actually mount — shares already running on either backend are
// left alone rather than being candidates for a failover switch.
func (c *Controller) MountAll(ctx context.Context) []model.ShareStatus {
	var result []model.ShareStatus
	c.submit(ctx, func(ctx context.Context) {
		cfg := c.store.Config()
		state := c.store.State()

		statuses := make([]model.ShareStatus, 0, len(cfg.Shares))
		for _, s := range cfg.Shares {
			rt := state[model.FoldName(s.Name)]
			attempt := rt == nil || rt.ActiveBackend == model.BackendNone
			statuses = append(statuses, c.reconciler.ReconcileOne(ctx, cfg.Globals, state, s, attempt))
		}
		if err := c.store.SaveState(); err != nil {
			c.log.Error("mount --all: failed to persist state", "err", err)
		}
		result = statuses
	})
	return result
}

// UnmountAll implements `unmount --all [--force]` (spec.md §4.8): tear
// down every share currently mounted. A share with open handles is
// skipped (not aborted) unless force is set, so one busy share doesn't
// block the rest.
func (c *Controller) UnmountAll(ctx context.Context, force bool) map[string]error {
	errs := make(map[string]error)
	c.submit(ctx, func(ctx context.Context) {
		cfg := c.store.Config()
		state := c.store.State()
		for _, s := range cfg.Shares {
			if err := c.reconciler.UnmountShare(ctx, cfg.Globals, state, s, force); err != nil {
				errs[s.Name] = err
			}
		}
		if err := c.store.SaveState(); err != nil {
			c.log.Error("unmount --all: failed to persist state", "err", err)
		}
	})
	return errs
}

// UnmountOne implements `unmount --share X [--force]`.
func (c *Controller) UnmountOne(ctx context.Context, name string, force bool) error {
	var err error
	c.submit(ctx, func(ctx context.Context) {
		cfg := c.store.Config()
		spec, ok := findShare(cfg, name)
		if !ok {
			err = fmt.Errorf("unknown share %q", name)
			return
		}
		state := c.store.State()
		if uerr := c.reconciler.UnmountShare(ctx, cfg.Globals, state, spec, force); uerr != nil {
			err = uerr
			return
		}
		if serr := c.store.SaveState(); serr != nil {
			c.log.Error("unmount: failed to persist state", "share", name, "err", serr)
		}
	})
	return err
}

// SwitchShare implements `switch --share X --to B [--force]` (spec.md
// §4.8). It requires an active backend already defined and different
// from the requested target — there is nothing to switch from otherwise.
func (c *Controller) SwitchShare(ctx context.Context, name string, to model.Backend, force bool) reconciler.SwitchResult {
	var result reconciler.SwitchResult
	c.submit(ctx, func(ctx context.Context) {
		cfg := c.store.Config()
		spec, ok := findShare(cfg, name)
		if !ok {
			result = reconciler.SwitchResult{Outcome: reconciler.SwitchFailed, Err: fmt.Errorf("unknown share %q", name)}
			return
		}
		state := c.store.State()
		rt := state[model.FoldName(spec.Name)]
		if rt == nil || rt.ActiveBackend == model.BackendNone {
			result = reconciler.SwitchResult{Outcome: reconciler.SwitchFailed, Err: fmt.Errorf("share %q has no active backend to switch from", name)}
			return
		}
		if rt.ActiveBackend == to {
			result = reconciler.SwitchResult{Outcome: reconciler.SwitchFailed, Err: fmt.Errorf("share %q is already on backend %s", name, to)}
			return
		}
		result = c.reconciler.Switch(ctx, cfg.Globals, state, spec, to, force)
		if err := c.store.SaveState(); err != nil {
			c.log.Error("switch: failed to persist state", "share", name, "err", err)
		}
	})
	return result
}

// RemoveFavoriteResult reports what RemoveFavorite found.
type RemoveFavoriteResult struct {
	AffectedAliases []string
}

// RemoveFavorite implements `favorites remove --cleanup` (spec.md §4.8):
// unmount the share and delete its stable symlink, then report (not
// delete) any aliases that still reference it so the caller can warn the
// user their alias is now dangling. The symlink is deleted by
// UnmountShare, so only when the share is mounted at the time; a symlink
// left behind by an unmounted share stays in place.
func (c *Controller) RemoveFavorite(ctx context.Context, name string) (RemoveFavoriteResult, error) {
	var result RemoveFavoriteResult
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		cfg := c.store.Config()
		spec, ok := findShare(cfg, name)
		if !ok {
			opErr = fmt.Errorf("unknown share %q", name)
			return
		}

		state := c.store.State()
		if err := c.reconciler.UnmountShare(ctx, cfg.Globals, state, spec, true); err != nil {
			opErr = err
			return
		}

		remaining := make([]model.ShareSpec, 0, len(cfg.Shares))
		for _, s := range cfg.Shares {
			if model.FoldName(s.Name) != model.FoldName(name) {
				remaining = append(remaining, s)
			}
		}
		cfg.Shares = remaining
		delete(state, model.FoldName(name))

		for _, a := range cfg.Aliases {
			if model.FoldName(a.ShareName) == model.FoldName(name) {
				result.AffectedAliases = append(result.AffectedAliases, a.Name)
			}
		}

		if err := c.store.SaveConfig(cfg); err != nil {
			opErr = err
			return
		}
		if err := c.store.SaveState(); err != nil {
			c.log.Error("favorites remove: failed to persist state", "share", name, "err", err)
		}
	})
	return result, opErr
}
