//go:build linux
// +build linux

// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package mountdriver

import (
	"context"
	"time"

	"github.com/stratastor/logger"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// LinuxDriver exists only so this module type-checks off-macOS. Mountaineer
// is a macOS-only agent (spec.md §1); there is no Linux SMB mount strategy
// to implement here, mirroring the teacher's own GOOS-split convention
// where the non-primary platform gets a minimal same-shape file.
type LinuxDriver struct {
	log logger.Logger
}

func NewLinuxDriver(log logger.Logger) *LinuxDriver {
	return &LinuxDriver{log: log}
}

func (d *LinuxDriver) Mount(ctx context.Context, host, remoteShare, username, target string) error {
	return merrors.New(merrors.MountCommandSpawn, "mountdriver: not supported on this platform")
}

func (d *LinuxDriver) Unmount(ctx context.Context, target string, force bool) error {
	return merrors.New(merrors.MountUnmountFailed, "mountdriver: not supported on this platform")
}

func (d *LinuxDriver) IsMounted(ctx context.Context, target string) bool {
	return false
}

func (d *LinuxDriver) IsAlive(ctx context.Context, target string, timeout time.Duration) bool {
	return false
}
