//go:build darwin
// +build darwin

// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package mountdriver

import "github.com/stratastor/logger"

// New returns the platform's Driver implementation. cmd/* packages call
// this rather than constructing DarwinDriver/LinuxDriver directly so they
// don't need their own build tags.
func New(log logger.Logger) Driver {
	return NewDarwinDriver(log)
}
