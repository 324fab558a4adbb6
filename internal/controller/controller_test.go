// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountaineer/mountaineer/internal/faketesting"
	"github.com/mountaineer/mountaineer/internal/linker"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/netnotify"
	"github.com/mountaineer/mountaineer/internal/reconciler"
	"github.com/mountaineer/mountaineer/internal/store"
)

type testRig struct {
	ctrl   *Controller
	driver *faketesting.FakeDriver
	prober *faketesting.FakeProber
	st     *store.Store
}

func newTestRig(t *testing.T) testRig {
	t.Helper()
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "controller-test")
	require.NoError(t, err)

	dir := t.TempDir()
	st := store.New(log, filepath.Join(dir, "config.toml"), filepath.Join(dir, "state.json"))

	cfg, err := st.LoadConfig()
	require.NoError(t, err)
	cfg.Shares = []model.ShareSpec{
		{
			Name:            "Core",
			Username:        "alice",
			PrimaryHost:     "tb.local",
			FallbackHost:    "wifi.local",
			RemoteShareName: "core",
		},
	}
	require.NoError(t, st.SaveConfig(cfg))
	require.NoError(t, st.LoadState())

	driver := faketesting.NewFakeDriver()
	prober := faketesting.NewFakeProber()
	lnk := linker.NewStableLinker(log)
	rec := reconciler.New(log, driver, prober, lnk, reconciler.WithOpenHandlesChecker(&faketesting.FakeOpenHandlesChecker{}))

	sched, err := gocron.NewScheduler()
	require.NoError(t, err)

	notifier := netnotify.New(log)

	ctrl := New(log, st, notifier, rec, sched)
	return testRig{ctrl: ctrl, driver: driver, prober: prober, st: st}
}

func TestMountAllOnlyMountsSharesWithoutActiveBackend(t *testing.T) {
	rig := newTestRig(t)
	rig.prober.SetReachable("tb.local", true)

	statuses := rig.ctrl.MountAll(context.Background())

	require.Len(t, statuses, 1)
	assert.Equal(t, model.BackendPrimary, statuses[0].Active)
	assert.Len(t, rig.driver.MountCalls, 1)

	// A second mount --all with the share already active must not
	// re-evaluate failover for it.
	statuses = rig.ctrl.MountAll(context.Background())
	assert.Equal(t, model.BackendPrimary, statuses[0].Active)
	assert.Len(t, rig.driver.MountCalls, 1)
}

func TestUnmountAllClearsActiveBackend(t *testing.T) {
	rig := newTestRig(t)
	rig.prober.SetReachable("tb.local", true)
	rig.ctrl.MountAll(context.Background())

	errs := rig.ctrl.UnmountAll(context.Background(), false)
	assert.Empty(t, errs)

	state := rig.st.State()
	rt := state[model.FoldName("Core")]
	require.NotNil(t, rt)
	assert.Equal(t, model.BackendNone, rt.ActiveBackend)
}

func TestSwitchShareRequiresActiveBackend(t *testing.T) {
	rig := newTestRig(t)
	rig.prober.SetReachable("tb.local", true)
	rig.prober.SetReachable("wifi.local", true)

	result := rig.ctrl.SwitchShare(context.Background(), "Core", model.BackendFallback, false)
	assert.Equal(t, reconciler.SwitchFailed, result.Outcome)
	assert.Error(t, result.Err)
}

func TestSwitchShareSwitchesMountedShare(t *testing.T) {
	rig := newTestRig(t)
	rig.prober.SetReachable("tb.local", true)
	rig.prober.SetReachable("wifi.local", true)
	rig.ctrl.MountAll(context.Background())

	result := rig.ctrl.SwitchShare(context.Background(), "Core", model.BackendFallback, false)
	assert.Equal(t, reconciler.SwitchSuccess, result.Outcome)

	state := rig.st.State()
	assert.Equal(t, model.BackendFallback, state[model.FoldName("Core")].ActiveBackend)
}

func TestRemoveFavoriteReportsAffectedAliases(t *testing.T) {
	rig := newTestRig(t)
	cfg := rig.st.Config()
	cfg.Aliases = []model.AliasSpec{
		{Name: "Docs", LinkPath: filepath.Join(t.TempDir(), "Docs"), ShareName: "Core", Subpath: "Docs"},
	}
	require.NoError(t, rig.st.SaveConfig(cfg))

	result, err := rig.ctrl.RemoveFavorite(context.Background(), "Core")
	require.NoError(t, err)
	assert.Equal(t, []string{"Docs"}, result.AffectedAliases)

	cfgAfter := rig.st.Config()
	assert.Empty(t, cfgAfter.Shares)
}

func TestRemoveFavoriteUnknownShareErrors(t *testing.T) {
	rig := newTestRig(t)
	_, err := rig.ctrl.RemoveFavorite(context.Background(), "NoSuchShare")
	assert.Error(t, err)
}

func TestReconcileNowReturnsStatusesWithoutWaitingForTick(t *testing.T) {
	rig := newTestRig(t)
	rig.prober.SetReachable("tb.local", true)

	statuses := rig.ctrl.ReconcileNow(context.Background(), true)
	require.Len(t, statuses, 1)
	assert.Equal(t, model.BackendPrimary, statuses[0].Active)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	rig := newTestRig(t)
	cfg := rig.st.Config()
	cfg.Globals.CheckIntervalSecs = 1
	require.NoError(t, rig.st.SaveConfig(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rig.ctrl.Run(ctx)
	assert.NoError(t, err)
}
