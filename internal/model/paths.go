// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package model

import "path/filepath"

// MountPointFor is spec.md §6's "Mount point: /Volumes/<remote_share_name>
// ... Both backends use this single path." Exported so internal/surface
// and cmd/folders can show a share's mount point without importing
// internal/reconciler.
func MountPointFor(spec ShareSpec) string {
	return filepath.Join("/Volumes", spec.RemoteShareName)
}

// StablePathFor is spec.md §6's "Stable path: <shares_root>/<name>".
func StablePathFor(spec ShareSpec, globals Globals) string {
	return filepath.Join(ExpandHome(globals.SharesRoot), spec.Name)
}

// HostFor resolves which host backend b refers to for spec. BackendNone
// resolves to "".
func HostFor(spec ShareSpec, b Backend) string {
	switch b {
	case BackendPrimary:
		return spec.PrimaryHost
	case BackendFallback:
		return spec.FallbackHost
	default:
		return ""
	}
}
