//go:build darwin
// +build darwin

// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package mountdriver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/command"
	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// DarwinDriver shells out to mount_smbfs/umount/diskutil, the way spec.md
// §4.1 describes the macOS reference implementation: a direct mount when
// the target directory already exists, and an OS-creates-the-mount-point
// path (a bare mount_smbfs invocation under /Volumes) when it doesn't.
type DarwinDriver struct {
	log      logger.Logger
	executor *command.CommandExecutor
}

func NewDarwinDriver(log logger.Logger) *DarwinDriver {
	return &DarwinDriver{
		log:      log,
		executor: command.NewCommandExecutor(false),
	}
}

func (d *DarwinDriver) Mount(ctx context.Context, host, remoteShare, username, target string) error {
	url := fmt.Sprintf("//%s@%s/%s", username, host, remoteShare)

	if _, err := os.Stat(target); err == nil {
		// Strategy (a): the mount point directory already exists —
		// mount directly onto it.
		out, err := d.executor.ExecuteWithCombinedOutput(ctx, "/sbin/mount_smbfs", url, target)
		if err != nil {
			if isBenignCollision(string(out)) {
				d.log.Info("mount: benign collision with OS mount bookkeeping, ignoring", "target", target)
				return nil
			}
			return merrors.Wrap(err, merrors.MountFailed).WithMetadata("target", target)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return merrors.New(merrors.MountCreateMountPoint, err.Error()).WithMetadata("target", target)
	}

	// Strategy (b): let mount_smbfs create the mount point itself under
	// /Volumes — do not pre-create the final path, per spec.md §4.1.
	out, err := d.executor.ExecuteWithCombinedOutput(ctx, "/sbin/mount_smbfs", url, target)
	if err != nil {
		if isBenignCollision(string(out)) {
			d.log.Info("mount: benign collision with OS mount bookkeeping, ignoring", "target", target)
			return nil
		}
		return merrors.Wrap(err, merrors.MountFailed).WithMetadata("target", target)
	}
	return nil
}

func (d *DarwinDriver) Unmount(ctx context.Context, target string, force bool) error {
	if !force {
		if _, err := d.executor.ExecuteWithCombinedOutput(ctx, "/sbin/umount", target); err == nil {
			return nil
		}
		d.log.Debug("graceful unmount failed, retrying forced", "target", target)
	}

	if _, err := d.executor.ExecuteWithCombinedOutput(ctx, "/usr/sbin/diskutil", "unmount", "force", target); err != nil {
		return merrors.Wrap(err, merrors.MountUnmountFailed).WithMetadata("target", target)
	}
	return nil
}

func (d *DarwinDriver) IsMounted(ctx context.Context, target string) bool {
	out, err := d.executor.Execute(ctx, "/sbin/mount", "-t", "smbfs")
	if err != nil {
		d.log.Warn("is_mounted: failed to list mounts", "err", err)
		return false
	}
	return strings.Contains(string(out), " "+target+" ") || strings.Contains(string(out), " on "+target+" ")
}

// IsAlive stats target in a detached goroutine, racing timeout. A hung
// SMB mount makes os.Stat block indefinitely; the goroutine is simply
// abandoned on timeout (stdlib has no cancellable stat), which is the
// only way spec.md §4.6 Step A's stale-mount detection can work at all.
func (d *DarwinDriver) IsAlive(ctx context.Context, target string, timeout time.Duration) bool {
	done := make(chan bool, 1)
	go func() {
		_, err := os.Stat(target)
		done <- err == nil
	}()

	select {
	case alive := <-done:
		return alive
	case <-time.After(timeout):
		return false
	case <-ctx.Done():
		return false
	}
}

// isBenignCollision implements spec.md §9 Open Question (a): a substring
// match on the mount subprocess's combined output for the documented
// weaker-but-workable signal of a harmless race with the OS's own mount
// bookkeeping.
func isBenignCollision(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "file exists") && strings.Contains(lower, "already mounted")
}
