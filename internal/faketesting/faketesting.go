// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package faketesting provides in-memory MountDriver and ProbeService
// doubles so the reconciler's state machine, switch protocol, and
// rollback logic can be exercised deterministically without touching the
// real OS — spec.md §9's "Dynamic dispatch" note calls this out as the
// purpose of keeping MountDriver/ProbeService behind small interfaces.
package faketesting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mountaineer/mountaineer/internal/probe"
)

// FakeDriver is a mountdriver.Driver double backed by an in-memory map of
// mounted paths. Tests steer its behavior through MarkStale and the Fail*
// fields rather than subclassing, matching the "one capability interface,
// one fake" shape the spec calls for.
type FakeDriver struct {
	mu sync.Mutex

	// mounted maps target -> the host currently mounted there.
	mounted map[string]string
	// alive maps target -> liveness, consulted by IsAlive; defaults to
	// true for any mounted target not explicitly marked false.
	alive map[string]bool

	// FailMountHosts, when non-nil, makes Mount fail for exactly the
	// listed hosts (simulating an unreachable/rejecting server).
	FailMountHosts map[string]bool
	// FailUnmount makes every non-forced Unmount call fail (forced ones
	// still succeed), so tests can exercise the switch protocol stopping
	// before it mounts the other backend.
	FailUnmount bool

	MountCalls   []string
	UnmountCalls []string
}

func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		mounted:        make(map[string]string),
		alive:          make(map[string]bool),
		FailMountHosts: make(map[string]bool),
	}
}

func (f *FakeDriver) Mount(ctx context.Context, host, remoteShare, username, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.MountCalls = append(f.MountCalls, fmt.Sprintf("%s->%s", host, target))
	if f.FailMountHosts[host] {
		return fmt.Errorf("fake mount failure for host %s", host)
	}
	f.mounted[target] = host
	f.alive[target] = true
	return nil
}

func (f *FakeDriver) Unmount(ctx context.Context, target string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.UnmountCalls = append(f.UnmountCalls, target)
	if f.FailUnmount && !force {
		return fmt.Errorf("fake unmount failure")
	}
	delete(f.mounted, target)
	delete(f.alive, target)
	return nil
}

func (f *FakeDriver) IsMounted(ctx context.Context, target string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.mounted[target]
	return ok
}

func (f *FakeDriver) IsAlive(ctx context.Context, target string, timeout time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.mounted[target]; !ok {
		return false
	}
	return f.alive[target]
}

// MarkStale forces IsAlive(target) to return false while IsMounted stays
// true, simulating spec.md §4.6 Step A's stale-mount case.
func (f *FakeDriver) MarkStale(target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive[target] = false
}

// MountedHost returns the host currently mounted at target, or "" if
// none.
func (f *FakeDriver) MountedHost(target string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounted[target]
}

// FakeProber is a reconciler.Prober double with per-host reachability
// steered directly by the test via Reachability.
type FakeProber struct {
	mu sync.Mutex

	Reachability map[string]bool
	ShareResults map[string]probe.ShareCheck
}

func NewFakeProber() *FakeProber {
	return &FakeProber{
		Reachability: make(map[string]bool),
		ShareResults: make(map[string]probe.ShareCheck),
	}
}

func (f *FakeProber) Reachable(ctx context.Context, host string, timeout time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Reachability[host]
}

func (f *FakeProber) ShareExists(ctx context.Context, host, share string, timeout time.Duration) probe.ShareCheck {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok := f.ShareResults[host]; ok {
		return res
	}
	return probe.ShareUnknown
}

// SetReachable is a convenience setter used from table-driven tests.
func (f *FakeProber) SetReachable(host string, reachable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reachability[host] = reachable
}

// FakeOpenHandlesChecker is a reconciler.OpenHandlesChecker double.
// Busy, when set, names the single path considered to have open handles;
// empty means no path is busy.
type FakeOpenHandlesChecker struct {
	Busy string
}

func (f *FakeOpenHandlesChecker) OpenHandles(ctx context.Context, path string) bool {
	return f.Busy != "" && f.Busy == path
}
