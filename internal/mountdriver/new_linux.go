//go:build linux
// +build linux

// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package mountdriver

import "github.com/stratastor/logger"

// New returns the platform's Driver implementation. On Linux this is the
// non-functional stub that exists only so the module type-checks
// off-macOS (see LinuxDriver's doc comment).
func New(log logger.Logger) Driver {
	return NewLinuxDriver(log)
}
