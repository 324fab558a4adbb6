// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountaineer/mountaineer/internal/faketesting"
	"github.com/mountaineer/mountaineer/internal/linker"
)

func newTestSwitchReconciler(t *testing.T) (*Reconciler, *faketesting.FakeDriver, *faketesting.FakeOpenHandlesChecker) {
	t.Helper()
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "switch-test")
	require.NoError(t, err)
	driver := faketesting.NewFakeDriver()
	checker := &faketesting.FakeOpenHandlesChecker{}
	r := New(log, driver, faketesting.NewFakeProber(), linker.NewStableLinker(log), WithOpenHandlesChecker(checker))
	return r, driver, checker
}

func TestSwitchBackendSucceeds(t *testing.T) {
	r, driver, _ := newTestSwitchReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	mountPoint := filepath.Join(dir, "Volumes", "core")
	stablePath := filepath.Join(dir, "Shares", "Core")

	require.NoError(t, driver.Mount(ctx, "tb.local", "core", "alice", mountPoint))

	result := r.switchBackend(ctx, mountPoint, stablePath, "tb.local", "wifi.local", "core", "alice", false, true)

	assert.Equal(t, SwitchSuccess, result.Outcome)
	assert.Equal(t, "wifi.local", driver.MountedHost(mountPoint))
	resolved, err := r.linker.Resolve(stablePath)
	require.NoError(t, err)
	assert.Equal(t, mountPoint, resolved)
}

func TestSwitchBackendBlockedByOpenFiles(t *testing.T) {
	r, driver, checker := newTestSwitchReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	mountPoint := filepath.Join(dir, "Volumes", "core")
	stablePath := filepath.Join(dir, "Shares", "Core")

	require.NoError(t, driver.Mount(ctx, "tb.local", "core", "alice", mountPoint))
	checker.Busy = mountPoint

	result := r.switchBackend(ctx, mountPoint, stablePath, "tb.local", "wifi.local", "core", "alice", false, true)

	assert.Equal(t, SwitchBusyOpenFiles, result.Outcome)
	assert.Equal(t, "tb.local", driver.MountedHost(mountPoint), "must not have touched the active mount")
}

func TestSwitchBackendForceSkipsIdleCheck(t *testing.T) {
	r, driver, checker := newTestSwitchReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	mountPoint := filepath.Join(dir, "Volumes", "core")
	stablePath := filepath.Join(dir, "Shares", "Core")

	require.NoError(t, driver.Mount(ctx, "tb.local", "core", "alice", mountPoint))
	checker.Busy = mountPoint

	result := r.switchBackend(ctx, mountPoint, stablePath, "tb.local", "wifi.local", "core", "alice", true, true)

	assert.Equal(t, SwitchSuccess, result.Outcome)
	assert.Equal(t, "wifi.local", driver.MountedHost(mountPoint))
}

func TestSwitchBackendRollsBackOnRepeatedMountFailure(t *testing.T) {
	r, driver, _ := newTestSwitchReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	mountPoint := filepath.Join(dir, "Volumes", "core")
	stablePath := filepath.Join(dir, "Shares", "Core")

	require.NoError(t, driver.Mount(ctx, "tb.local", "core", "alice", mountPoint))
	driver.FailMountHosts["wifi.local"] = true

	result := r.switchBackend(ctx, mountPoint, stablePath, "tb.local", "wifi.local", "core", "alice", false, true)

	assert.Equal(t, SwitchFailed, result.Outcome)
	assert.True(t, result.RolledBack)
	assert.Equal(t, "tb.local", driver.MountedHost(mountPoint), "rollback must remount the previous backend")
	resolved, err := r.linker.Resolve(stablePath)
	require.NoError(t, err)
	assert.Equal(t, mountPoint, resolved, "rollback must republish the symlink")
}

func TestSwitchBackendCompoundErrorWhenRollbackAlsoFails(t *testing.T) {
	r, driver, _ := newTestSwitchReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	mountPoint := filepath.Join(dir, "Volumes", "core")
	stablePath := filepath.Join(dir, "Shares", "Core")

	require.NoError(t, driver.Mount(ctx, "tb.local", "core", "alice", mountPoint))
	driver.FailMountHosts["wifi.local"] = true
	driver.FailMountHosts["tb.local"] = true

	result := r.switchBackend(ctx, mountPoint, stablePath, "tb.local", "wifi.local", "core", "alice", false, true)

	assert.Equal(t, SwitchFailed, result.Outcome)
	assert.False(t, result.RolledBack)
	require.Error(t, result.Err)
}

func TestSwitchBackendUnmountFailureStopsBeforeMounting(t *testing.T) {
	r, driver, _ := newTestSwitchReconciler(t)
	ctx := context.Background()
	dir := t.TempDir()
	mountPoint := filepath.Join(dir, "Volumes", "core")
	stablePath := filepath.Join(dir, "Shares", "Core")

	require.NoError(t, driver.Mount(ctx, "tb.local", "core", "alice", mountPoint))
	driver.FailUnmount = true

	result := r.switchBackend(ctx, mountPoint, stablePath, "tb.local", "wifi.local", "core", "alice", false, true)

	assert.Equal(t, SwitchFailed, result.Outcome)
	assert.Equal(t, "tb.local", driver.MountedHost(mountPoint), "mount must be untouched when unmount fails")
}
