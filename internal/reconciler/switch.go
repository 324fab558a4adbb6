// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"
	"fmt"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// SwitchOutcome is what a switch attempt settled on; exactly one of the
// three shapes spec.md §4.7 names.
type SwitchOutcome int

const (
	SwitchSuccess SwitchOutcome = iota
	SwitchBusyOpenFiles
	SwitchFailed
)

// SwitchResult is switchBackend's full return value: the outcome plus
// whatever detail applies to it.
type SwitchResult struct {
	Outcome    SwitchOutcome
	RolledBack bool // only meaningful when Outcome == SwitchFailed
	Err        error
}

// switchBackend implements spec.md §4.7's six-step switch protocol:
// idle check, unmount active, stale pre-clean, mount target (retry once,
// rollback on repeated failure), publish, and the caller commits runtime
// state from the result. requireIdle lets the auto-failback path (Step
// E.3) skip step 1 when require_idle_on_switch=false; force additionally
// skips the idle check and forces the unmount.
func (r *Reconciler) switchBackend(ctx context.Context, mountPoint, stablePath string, fromHost, toHost, remoteShare, username string, force, requireIdle bool) SwitchResult {
	// Step 1: idle check.
	if !force && requireIdle && r.driver.IsMounted(ctx, mountPoint) {
		if r.openHandles.OpenHandles(ctx, mountPoint) {
			return SwitchResult{Outcome: SwitchBusyOpenFiles, Err: merrors.New(merrors.SwitchBusy, "open files on current mount")}
		}
	}

	// Step 2: unmount active, if mounted.
	if r.driver.IsMounted(ctx, mountPoint) {
		if err := r.driver.Unmount(ctx, mountPoint, force); err != nil {
			return SwitchResult{Outcome: SwitchFailed, Err: merrors.New(merrors.SwitchPrepareFailed, err.Error()).WithMetadata("step", "unmount_active")}
		}
	}

	// Step 3: stale pre-clean — still mounted (race with OS) and not alive.
	if r.driver.IsMounted(ctx, mountPoint) && !r.driver.IsAlive(ctx, mountPoint, r.aliveTimeout) {
		_ = r.driver.Unmount(ctx, mountPoint, true)
	}

	// Step 4: mount target, retry once.
	mountErr := r.driver.Mount(ctx, toHost, remoteShare, username, mountPoint)
	if mountErr != nil {
		mountErr = r.driver.Mount(ctx, toHost, remoteShare, username, mountPoint)
	}

	if mountErr != nil {
		// 4a/4b: rollback to the previous backend.
		rollbackErr := r.driver.Mount(ctx, fromHost, remoteShare, username, mountPoint)
		if rollbackErr == nil {
			_ = r.linker.Publish(mountPoint, stablePath)
			return SwitchResult{
				Outcome:    SwitchFailed,
				RolledBack: true,
				Err:        merrors.New(merrors.SwitchPrepareFailed, mountErr.Error()).WithMetadata("rolled_back", "true"),
			}
		}
		return SwitchResult{
			Outcome:    SwitchFailed,
			RolledBack: false,
			Err: merrors.New(merrors.SwitchRollbackFailed,
				fmt.Sprintf("mount failed (%s) and rollback also failed (%s)", mountErr, rollbackErr)).
				WithMetadata("rolled_back", "false"),
		}
	}

	// Step 5: publish. A symlink failure after a successful mount is
	// logged but does not roll back the mount.
	if err := r.linker.Publish(mountPoint, stablePath); err != nil {
		r.log.Error("switch: mount succeeded but symlink publish failed", "mount_point", mountPoint, "stable_path", stablePath, "err", err)
	}

	return SwitchResult{Outcome: SwitchSuccess}
}
