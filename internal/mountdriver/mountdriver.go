// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package mountdriver implements spec.md §4.1's MountDriver: opaque
// mount/unmount/is-mounted/is-alive operations against the OS, behind an
// interface so the reconciler can be tested with an in-memory fake.
package mountdriver

import (
	"context"
	"time"
)

// Driver is the four-method capability interface spec.md §9 calls out as
// "the only polymorphism the core needs." All methods are synchronous and
// bounded by their own timeouts; they must be safe to call from the
// single reconciler goroutine without further synchronization.
type Driver interface {
	// Mount establishes an SMB mount of remoteShare on host at target,
	// authenticating as username (credentials resolved by the OS
	// keychain, out of this interface's scope).
	Mount(ctx context.Context, host, remoteShare, username, target string) error

	// Unmount removes the mount at target. Graceful when force is
	// false, falling back to forced unmount on a retriable failure;
	// always forced when force is true.
	Unmount(ctx context.Context, target string, force bool) error

	// IsMounted reports whether target appears as a live SMB mount in
	// the OS mount table.
	IsMounted(ctx context.Context, target string) bool

	// IsAlive issues a bounded stat-like probe against target, the only
	// way to detect a hung/stale mount. False on timeout or error.
	IsAlive(ctx context.Context, target string, timeout time.Duration) bool
}
