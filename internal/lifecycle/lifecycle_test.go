// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSingleInstanceWritesPIDFile(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "mountaineer.pid")

	require.NoError(t, EnsureSingleInstance(pidPath))

	content, err := os.ReadFile(pidPath)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(content))
}

func TestEnsureSingleInstanceReclaimsStalePIDFile(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "mountaineer.pid")
	require.NoError(t, os.WriteFile(pidPath, []byte("999999999"), 0644))

	assert.NoError(t, EnsureSingleInstance(pidPath))
}

func TestEnsureSingleInstanceRejectsEmptyPath(t *testing.T) {
	assert.Error(t, EnsureSingleInstance(""))
}
