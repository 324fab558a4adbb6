// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountaineer/mountaineer/internal/faketesting"
	"github.com/mountaineer/mountaineer/internal/linker"
	"github.com/mountaineer/mountaineer/internal/model"
)

func newTestReconciler(t *testing.T, driver *faketesting.FakeDriver, prober *faketesting.FakeProber) *Reconciler {
	t.Helper()
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "reconciler-test")
	require.NoError(t, err)
	lnk := linker.NewStableLinker(log)
	return New(log, driver, prober, lnk, WithOpenHandlesChecker(&faketesting.FakeOpenHandlesChecker{}))
}

func testShare(t *testing.T) (model.ShareSpec, model.Globals, string) {
	t.Helper()
	dir := t.TempDir()
	spec := model.ShareSpec{
		Name:            "Core",
		Username:        "alice",
		PrimaryHost:     "tb.local",
		FallbackHost:    "wifi.local",
		RemoteShareName: "core",
	}
	globals := model.Globals{
		SharesRoot:          dir,
		CheckIntervalSecs:   2,
		AutoFailback:        false,
		AutoFailbackStable:  30,
		ConnectTimeoutMS:    800,
		RequireIdleOnSwitch: true,
	}
	return spec, globals, dir
}

func TestReconcileOneInitialMountsPrimaryWhenReachable(t *testing.T) {
	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	spec, globals, _ := testShare(t)
	prober.SetReachable(spec.PrimaryHost, true)

	r := newTestReconciler(t, driver, prober)
	state := model.RuntimeState{}

	status := r.ReconcileOne(context.Background(), globals, state, spec, true)

	assert.Equal(t, model.BackendPrimary, status.Active)
	assert.True(t, driver.IsMounted(context.Background(), mountPointFor(spec)))
	assert.Equal(t, spec.PrimaryHost, driver.MountedHost(mountPointFor(spec)))
}

func TestReconcileOneFailsOverWhenPrimaryDrops(t *testing.T) {
	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	spec, globals, _ := testShare(t)
	prober.SetReachable(spec.PrimaryHost, true)

	r := newTestReconciler(t, driver, prober)
	state := model.RuntimeState{}
	r.ReconcileOne(context.Background(), globals, state, spec, true)
	require.Equal(t, model.BackendPrimary, state[model.FoldName(spec.Name)].ActiveBackend)

	// Primary drops, Fallback comes up.
	prober.SetReachable(spec.PrimaryHost, false)
	prober.SetReachable(spec.FallbackHost, true)
	driver.MarkStale(mountPointFor(spec))

	status := r.ReconcileOne(context.Background(), globals, state, spec, true)

	assert.Equal(t, model.BackendFallback, status.Active)
	assert.Equal(t, spec.FallbackHost, driver.MountedHost(mountPointFor(spec)))
}

func TestReconcileOneHoldsAutoFailbackPendingWhenDisabled(t *testing.T) {
	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	spec, globals, _ := testShare(t)
	globals.AutoFailback = false
	prober.SetReachable(spec.FallbackHost, true)

	r := newTestReconciler(t, driver, prober)
	state := model.RuntimeState{}
	r.ReconcileOne(context.Background(), globals, state, spec, true)
	require.Equal(t, model.BackendFallback, state[model.FoldName(spec.Name)].ActiveBackend)

	// Primary returns.
	prober.SetReachable(spec.PrimaryHost, true)
	status := r.ReconcileOne(context.Background(), globals, state, spec, true)

	assert.Equal(t, model.BackendFallback, status.Active, "must not auto-switch when auto_failback is off")
	assert.True(t, status.PrimaryRecoveryPending)
}

func TestReconcileOneAutoFailsBackAfterStableWindow(t *testing.T) {
	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	spec, globals, _ := testShare(t)
	globals.AutoFailback = true
	globals.AutoFailbackStable = 30
	prober.SetReachable(spec.FallbackHost, true)

	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTestReconciler(t, driver, prober)
	r.now = func() time.Time { return current }

	state := model.RuntimeState{}
	r.ReconcileOne(context.Background(), globals, state, spec, true)
	require.Equal(t, model.BackendFallback, state[model.FoldName(spec.Name)].ActiveBackend)

	// Primary becomes reachable; not yet stable.
	prober.SetReachable(spec.PrimaryHost, true)
	status := r.ReconcileOne(context.Background(), globals, state, spec, true)
	assert.Equal(t, model.BackendFallback, status.Active)

	// Advance clock past the stability window.
	current = current.Add(31 * time.Second)
	status = r.ReconcileOne(context.Background(), globals, state, spec, true)
	assert.Equal(t, model.BackendPrimary, status.Active)
}

func TestReconcileOneDetectsStaleMountAndClearsIt(t *testing.T) {
	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	spec, globals, _ := testShare(t)
	prober.SetReachable(spec.PrimaryHost, true)

	r := newTestReconciler(t, driver, prober)
	state := model.RuntimeState{}
	r.ReconcileOne(context.Background(), globals, state, spec, true)

	driver.MarkStale(mountPointFor(spec))
	prober.SetReachable(spec.FallbackHost, true)

	status := r.ReconcileOne(context.Background(), globals, state, spec, true)
	assert.Equal(t, model.BackendFallback, status.Active)
}

func TestReconcileOneSwitchBlockedByOpenFilesRecordsError(t *testing.T) {
	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	spec, globals, _ := testShare(t)
	prober.SetReachable(spec.PrimaryHost, true)

	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "reconciler-test")
	require.NoError(t, err)
	lnk := linker.NewStableLinker(log)
	checker := &faketesting.FakeOpenHandlesChecker{}
	r := New(log, driver, prober, lnk, WithOpenHandlesChecker(checker))

	state := model.RuntimeState{}
	r.ReconcileOne(context.Background(), globals, state, spec, true)

	// Primary goes unreachable (mount stays alive, just not routable),
	// so Step B's ready computation flips to false without the mount
	// itself being stale — a reactive failover is attempted, but the
	// current mount has open files.
	prober.SetReachable(spec.PrimaryHost, false)
	prober.SetReachable(spec.FallbackHost, true)
	checker.Busy = mountPointFor(spec)

	status := r.ReconcileOne(context.Background(), globals, state, spec, true)

	assert.Equal(t, model.BackendPrimary, status.Active, "blocked switch must not change active backend")
	assert.Equal(t, "BusyOpenFiles", status.LastError)
}

func TestReconcileAllRunsEveryShare(t *testing.T) {
	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	spec, globals, _ := testShare(t)
	other := spec
	other.Name = "Archive"
	other.RemoteShareName = "archive"
	prober.SetReachable(spec.PrimaryHost, true)
	prober.SetReachable(other.PrimaryHost, true)

	r := newTestReconciler(t, driver, prober)
	cfg := &model.Config{Globals: globals, Shares: []model.ShareSpec{spec, other}}
	state := model.RuntimeState{}

	statuses := r.ReconcileAll(context.Background(), cfg, state, true)

	require.Len(t, statuses, 2)
	assert.Equal(t, model.BackendPrimary, statuses[0].Active)
	assert.Equal(t, model.BackendPrimary, statuses[1].Active)
}
