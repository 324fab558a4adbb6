// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import "github.com/mountaineer/mountaineer/internal/model"

// mountPointFor, stablePathFor, and hostFor delegate to the model package
// so cmd/* and internal/surface can derive the same paths without
// importing the reconciler.
func mountPointFor(spec model.ShareSpec) string {
	return model.MountPointFor(spec)
}

func stablePathFor(spec model.ShareSpec, globals model.Globals) string {
	return model.StablePathFor(spec, globals)
}

func hostFor(spec model.ShareSpec, b model.Backend) string {
	return model.HostFor(spec, b)
}
