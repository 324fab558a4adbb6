//go:build darwin
// +build darwin

// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package mountdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBenignCollision(t *testing.T) {
	assert.True(t, isBenignCollision("mount_smbfs: mount(): File exists\nmounted on a secondary path, already mounted"))
	assert.False(t, isBenignCollision("mount_smbfs: Authentication error"))
	assert.False(t, isBenignCollision("File exists"))
}
