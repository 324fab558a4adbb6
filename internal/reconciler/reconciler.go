// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package reconciler implements spec.md §4.6's core state machine: per
// share, detect ground truth, probe both backends, track stability
// windows, decide the desired backend, act, and publish status. The
// decision table itself (chooseDesiredBackend) is a pure function;
// everything else in this package is the I/O shell around it.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/linker"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/mountdriver"
	"github.com/mountaineer/mountaineer/internal/probe"
)

// Prober is the probe.Service surface the reconciler is built against;
// of its two methods the reconciler calls only Reachable. Shaped as an
// interface (matching probe.Service's method set) so tests substitute
// faketesting.FakeProber.
type Prober interface {
	Reachable(ctx context.Context, host string, timeout time.Duration) bool
	ShareExists(ctx context.Context, host, share string, timeout time.Duration) probe.ShareCheck
}

const defaultAliveTimeout = 2 * time.Second

// Reconciler holds the capability interfaces spec.md §4.6 lists as the
// state machine's inputs (MountDriver, ProbeService, StableLinker) plus
// the optional Wake-on-LAN nudge. It carries no config/state of its own
// — those are passed into ReconcileAll per call so the caller (the
// controller) owns persistence timing.
type Reconciler struct {
	log          logger.Logger
	driver       mountdriver.Driver
	prober       Prober
	linker       *linker.StableLinker
	openHandles  OpenHandlesChecker
	wol          WakeOnLANSender
	aliveTimeout time.Duration
	now          func() time.Time
}

// Option configures optional Reconciler fields.
type Option func(*Reconciler)

// WithWakeOnLAN enables the Wake-on-LAN nudge (SPEC_FULL.md §12.4).
func WithWakeOnLAN(sender WakeOnLANSender) Option {
	return func(r *Reconciler) { r.wol = sender }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithOpenHandlesChecker overrides the default lsof-backed checker, for
// tests.
func WithOpenHandlesChecker(c OpenHandlesChecker) Option {
	return func(r *Reconciler) { r.openHandles = c }
}

func New(log logger.Logger, driver mountdriver.Driver, prober Prober, lnk *linker.StableLinker, opts ...Option) *Reconciler {
	r := &Reconciler{
		log:          log,
		driver:       driver,
		prober:       prober,
		linker:       lnk,
		openHandles:  newLsofChecker(log),
		aliveTimeout: defaultAliveTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReconcileAll runs one cycle over every configured share. attemptMount
// gates Step E (the controller's periodic tick and network-change
// trigger pass true; a "verify"/status query passes false so it never
// mounts or switches — Step A's stale-mount unmount and the stable
// symlink repair still run).
func (r *Reconciler) ReconcileAll(ctx context.Context, cfg *model.Config, state model.RuntimeState, attemptMount bool) []model.ShareStatus {
	cycleID := uuid.NewString()
	r.log.Debug("reconcile cycle start", "cycle_id", cycleID, "shares", len(cfg.Shares), "attempt_mount", attemptMount)

	statuses := make([]model.ShareStatus, 0, len(cfg.Shares))
	for _, spec := range cfg.Shares {
		statuses = append(statuses, r.ReconcileOne(ctx, cfg.Globals, state, spec, attemptMount))
	}
	return statuses
}

// ReconcileOne runs Steps A-F of spec.md §4.6 for a single share.
func (r *Reconciler) ReconcileOne(ctx context.Context, globals model.Globals, state model.RuntimeState, spec model.ShareSpec, attemptMount bool) model.ShareStatus {
	now := r.now()
	key := model.FoldName(spec.Name)
	rt := state[key]
	if rt == nil {
		rt = &model.ShareRuntime{}
		state[key] = rt
	}

	mountPoint := mountPointFor(spec)
	stablePath := stablePathFor(spec, globals)
	timeout := globals.ConnectTimeout()

	// Step A: detect ground truth, clear a stale mount.
	mounted := r.driver.IsMounted(ctx, mountPoint)
	alive := mounted && r.driver.IsAlive(ctx, mountPoint, r.aliveTimeout)
	if mounted && !alive {
		graceful := rt.ActiveBackend != model.BackendNone
		if err := r.driver.Unmount(ctx, mountPoint, !graceful); err != nil {
			r.log.Warn("stale mount not cleared", "share", spec.Name, "mount_point", mountPoint, "err", err)
			rt.LastError = "stale mount not cleared: " + err.Error()
		} else {
			mounted = false
			r.log.Info("cleared stale mount", "share", spec.Name, "mount_point", mountPoint)
		}
	}

	// Step B: probe both backends.
	primary := model.BackendStatus{Host: spec.PrimaryHost, MountPoint: mountPoint}
	fallback := model.BackendStatus{Host: spec.FallbackHost, MountPoint: mountPoint}
	primary.Reachable = r.prober.Reachable(ctx, spec.PrimaryHost, timeout)
	fallback.Reachable = r.prober.Reachable(ctx, spec.FallbackHost, timeout)
	if rt.ActiveBackend == model.BackendPrimary {
		primary.Mounted, primary.Alive = mounted, alive
	} else if rt.ActiveBackend == model.BackendFallback {
		fallback.Mounted, fallback.Alive = mounted, alive
	}

	// Step C: update stability windows (Primary only — the decision
	// table only ever needs Primary's stability to gate auto-failback).
	if primary.Reachable {
		if rt.PrimaryReachableSince == nil {
			rt.PrimaryReachableSince = &now
		}
	} else {
		rt.PrimaryReachableSince = nil
		rt.PrimaryRecoveryPending = false
	}
	if primary.Ready() {
		if rt.PrimaryHealthySince == nil {
			rt.PrimaryHealthySince = &now
		}
	} else {
		rt.PrimaryHealthySince = nil
	}
	stabilitySince := minTime(rt.PrimaryReachableSince, rt.PrimaryHealthySince)
	stableElapsed := stabilitySince != nil && now.Sub(*stabilitySince) >= globals.FailbackStableWindow()

	// Step D: choose desired backend.
	desired := chooseDesiredBackend(rt.ActiveBackend, primary.Reachable, fallback.Reachable, globals.AutoFailback, stableElapsed)

	// Step E: act, iff attemptMount.
	if attemptMount {
		r.act(ctx, globals, rt, spec, mountPoint, stablePath, primary, fallback, desired, stableElapsed, now)
	}

	if !primary.Reachable && rt.ActiveBackend != model.BackendPrimary {
		r.nudgeWakeOnLAN(spec, rt, now, globals)
	}

	// Repair a missing/unexpected stable symlink (tie-break in §4.6).
	if rt.ActiveBackend != model.BackendNone {
		r.repairStableSymlink(rt, mountPoint, stablePath)
	}

	// Step F: assemble status.
	return model.ShareStatus{
		Name:                   spec.Name,
		Active:                 rt.ActiveBackend,
		Desired:                desired,
		Primary:                primary,
		Fallback:               fallback,
		StablePath:             stablePath,
		LastSwitchAt:           rt.LastSwitchAt,
		LastError:              rt.LastError,
		PrimaryRecoveryPending: rt.PrimaryRecoveryPending,
	}
}

// act implements Step E's three cases.
func (r *Reconciler) act(ctx context.Context, globals model.Globals, rt *model.ShareRuntime, spec model.ShareSpec, mountPoint, stablePath string, primary, fallback model.BackendStatus, desired model.Backend, stableElapsed bool, now time.Time) {
	switch {
	case rt.ActiveBackend == model.BackendNone:
		if desired == model.BackendNone {
			return
		}
		r.initialMount(ctx, rt, spec, mountPoint, stablePath, desired, now)

	case !backendReady(rt.ActiveBackend, primary, fallback):
		other := rt.ActiveBackend.Other()
		otherReachable := other == model.BackendPrimary && primary.Reachable || other == model.BackendFallback && fallback.Reachable
		if !otherReachable {
			return
		}
		r.invokeSwitch(ctx, globals, rt, spec, mountPoint, stablePath, rt.ActiveBackend, other, false, false, now)

	case rt.ActiveBackend == model.BackendFallback && primary.Reachable:
		// A non-active backend is never mounted in this single-mount
		// model, so BackendStatus.Ready() can never go true for it —
		// Primary's "is it worth failing back to" test has to be raw
		// reachability here, not readiness.
		if !globals.AutoFailback {
			rt.PrimaryRecoveryPending = true
			return
		}
		if stableElapsed {
			r.invokeSwitch(ctx, globals, rt, spec, mountPoint, stablePath, model.BackendFallback, model.BackendPrimary, false, true, now)
		}

	case rt.ActiveBackend == model.BackendPrimary:
		rt.PrimaryRecoveryPending = false
	}
}

func (r *Reconciler) initialMount(ctx context.Context, rt *model.ShareRuntime, spec model.ShareSpec, mountPoint, stablePath string, desired model.Backend, now time.Time) {
	host := hostFor(spec, desired)
	r.log.Info("initial mount", "share", spec.Name, "backend", desired, "host", host, "mount_point", mountPoint)
	if err := r.driver.Mount(ctx, host, spec.RemoteShareName, spec.Username, mountPoint); err != nil {
		r.log.Error("initial mount failed", "share", spec.Name, "backend", desired, "err", err)
		rt.LastError = err.Error()
		return
	}
	if err := r.linker.Publish(mountPoint, stablePath); err != nil {
		r.log.Error("initial mount succeeded but symlink publish failed", "share", spec.Name, "err", err)
	}
	rt.ActiveBackend = desired
	rt.LastSwitchAt = &now
	rt.LastError = ""
}

func (r *Reconciler) invokeSwitch(ctx context.Context, globals model.Globals, rt *model.ShareRuntime, spec model.ShareSpec, mountPoint, stablePath string, from, to model.Backend, force, autoFailback bool, now time.Time) {
	// Per spec.md §4.7: "When invoked by auto-failback the switch
	// protocol skips the idle check if require_idle_on_switch=false."
	// Every other caller (reactive failover, manual switch) always
	// requires idle.
	requireIdle := !(autoFailback && !globals.RequireIdleOnSwitch)

	result := r.switchBackend(ctx, mountPoint, stablePath, hostFor(spec, from), hostFor(spec, to), spec.RemoteShareName, spec.Username, force, requireIdle)

	switch result.Outcome {
	case SwitchSuccess:
		rt.ActiveBackend = to
		rt.LastSwitchAt = &now
		rt.PrimaryRecoveryPending = false
		rt.LastError = ""
		r.log.Info("switched backend", "share", spec.Name, "from", from, "to", to)

	case SwitchBusyOpenFiles:
		rt.LastError = "BusyOpenFiles"
		r.log.Warn("switch blocked by open files", "share", spec.Name, "mount_point", mountPoint)

	case SwitchFailed:
		rt.LastError = result.Err.Error()
		if result.RolledBack {
			r.log.Warn("switch failed, rolled back", "share", spec.Name, "err", result.Err)
		} else {
			r.log.Error("switch failed and rollback also failed", "share", spec.Name, "err", result.Err)
			rt.ActiveBackend = model.BackendNone
		}
	}
}

// repairStableSymlink re-publishes the stable symlink if it is missing
// or points somewhere other than the current mount point.
func (r *Reconciler) repairStableSymlink(rt *model.ShareRuntime, mountPoint, stablePath string) {
	resolved, err := r.linker.Resolve(stablePath)
	if err == nil && resolved == mountPoint {
		return
	}
	if err := r.linker.Publish(mountPoint, stablePath); err != nil {
		r.log.Warn("stable symlink repair failed", "stable_path", stablePath, "err", err)
	}
}

// nudgeWakeOnLAN sends at most one magic packet per failback stability
// window while Primary is observed unreachable and not currently active.
func (r *Reconciler) nudgeWakeOnLAN(spec model.ShareSpec, rt *model.ShareRuntime, now time.Time, globals model.Globals) {
	if r.wol == nil || spec.MAC == "" {
		return
	}
	window := globals.FailbackStableWindow()
	if rt.LastWoLNudgeAt != nil && now.Sub(*rt.LastWoLNudgeAt) < window {
		return
	}
	if err := r.wol.WakeOnLAN(spec.MAC); err != nil {
		r.log.Debug("wake-on-lan nudge failed", "share", spec.Name, "err", err)
	}
	rt.LastWoLNudgeAt = &now
}

// backendReady reports whether the currently active backend (if any) is
// still usable. BackendNone is never "ready" and the caller never asks.
func backendReady(active model.Backend, primary, fallback model.BackendStatus) bool {
	switch active {
	case model.BackendPrimary:
		return primary.Ready()
	case model.BackendFallback:
		return fallback.Ready()
	default:
		return false
	}
}

// Switch is the manual-command entry point spec.md §4.8 lists ("switch"):
// force-switch a share to the given backend regardless of the decision
// table, used by `mountaineer switch` through Controller.SwitchShare.
// It does not evaluate readiness itself — the caller (already holding a
// fresh ShareStatus) is expected to have checked the target is reachable.
func (r *Reconciler) Switch(ctx context.Context, globals model.Globals, state model.RuntimeState, spec model.ShareSpec, to model.Backend, force bool) SwitchResult {
	key := model.FoldName(spec.Name)
	rt := state[key]
	if rt == nil {
		rt = &model.ShareRuntime{}
		state[key] = rt
	}
	from := rt.ActiveBackend
	if from == to {
		return SwitchResult{Outcome: SwitchSuccess}
	}

	mountPoint := mountPointFor(spec)
	stablePath := stablePathFor(spec, globals)
	now := r.now()

	result := r.switchBackend(ctx, mountPoint, stablePath, hostFor(spec, from), hostFor(spec, to), spec.RemoteShareName, spec.Username, force, true)
	switch result.Outcome {
	case SwitchSuccess:
		rt.ActiveBackend = to
		rt.LastSwitchAt = &now
		rt.PrimaryRecoveryPending = false
		rt.LastError = ""
	case SwitchBusyOpenFiles:
		rt.LastError = "BusyOpenFiles"
	case SwitchFailed:
		rt.LastError = result.Err.Error()
		if !result.RolledBack {
			rt.ActiveBackend = model.BackendNone
		}
	}
	return result
}

// UnmountShare tears down whatever is mounted for spec, per spec.md
// §4.8's "unmount" command: idle-checked unless force, graceful when the
// mount belongs to the remembered active backend, forced otherwise, and
// clears the stable symlink and active_backend on success.
func (r *Reconciler) UnmountShare(ctx context.Context, globals model.Globals, state model.RuntimeState, spec model.ShareSpec, force bool) error {
	key := model.FoldName(spec.Name)
	rt := state[key]
	if rt == nil {
		return nil
	}
	mountPoint := mountPointFor(spec)
	if !r.driver.IsMounted(ctx, mountPoint) {
		rt.ActiveBackend = model.BackendNone
		return nil
	}
	if !force && r.openHandles.OpenHandles(ctx, mountPoint) {
		return fmt.Errorf("open files on %s", mountPoint)
	}
	graceful := rt.ActiveBackend != model.BackendNone
	if err := r.driver.Unmount(ctx, mountPoint, !graceful || force); err != nil {
		return err
	}
	stablePath := stablePathFor(spec, globals)
	_ = r.linker.Unpublish(stablePath)
	rt.ActiveBackend = model.BackendNone
	rt.LastError = ""
	return nil
}

// minTime implements Step C's "min(reachable_since, healthy_since),
// treating empty as absent": the earlier of the two non-nil times, or
// whichever one is non-nil, or nil if both are.
func minTime(a, b *time.Time) *time.Time {
	switch {
	case a != nil && b != nil:
		if a.Before(*b) {
			return a
		}
		return b
	case a != nil:
		return a
	case b != nil:
		return b
	default:
		return nil
	}
}
