// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package netnotify watches for network topology changes (interface up/
// down, IP reassignment, VPN connect/disconnect) so the controller can
// reconcile immediately instead of waiting for the next tick — spec.md
// §4.5 and §5's "network change" trigger.
//
// macOS has no portable netlink-equivalent socket API reachable from Go
// without cgo, so this runs scutil(8) as a long-lived subprocess fed a
// small watch script over stdin, the way the teacher's udev monitor runs
// udevadm monitor as a long-lived subprocess and parses its stdout.
package netnotify

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/stratastor/logger"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// watchScript subscribes to both the IPv4 and IPv6 global-state keys:
// either one changing means the default route, or the active interface
// serving it, may have changed.
const watchScript = "n.add State:/Network/Global/IPv4\nn.add State:/Network/Global/IPv6\nn.watch\n"

// defaultDebounce coalesces the burst of notifications scutil emits for a
// single real-world event (e.g. Wi-Fi association fires both an IPv4 and
// a link-state key change) into one signal.
const defaultDebounce = 500 * time.Millisecond

// Notifier runs scutil in the background and emits a token on Changes()
// each time macOS reports the network topology changed.
type Notifier struct {
	log      logger.Logger
	debounce time.Duration

	changes chan struct{}

	mu        sync.Mutex
	cancel    context.CancelFunc
	timer     *time.Timer
	done      chan struct{}
}

// New creates a Notifier. Start must be called before Changes() emits
// anything.
func New(log logger.Logger) *Notifier {
	return &Notifier{
		log:      log,
		debounce: defaultDebounce,
		changes:  make(chan struct{}, 1),
	}
}

// Changes returns the channel a topology-change token arrives on. The
// channel is never closed, not even by Stop.
func (n *Notifier) Changes() <-chan struct{} {
	return n.changes
}

// Start launches scutil under ctx and begins watching. Start returns once
// the subprocess is running; parsing happens in a background goroutine.
// Cancelling ctx (or calling Stop) terminates the subprocess.
func (n *Notifier) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(ctx, "/usr/sbin/scutil")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return merrors.New(merrors.CommandSpawnFailed, err.Error()).WithMetadata("command", "scutil")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return merrors.New(merrors.CommandSpawnFailed, err.Error()).WithMetadata("command", "scutil")
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return merrors.New(merrors.CommandSpawnFailed, err.Error()).WithMetadata("command", "scutil")
	}

	if _, err := io.WriteString(stdin, watchScript); err != nil {
		cancel()
		return merrors.New(merrors.CommandSpawnFailed, err.Error()).WithMetadata("command", "scutil").WithMetadata("operation", "write_watch_script")
	}

	n.mu.Lock()
	n.cancel = cancel
	n.done = make(chan struct{})
	n.mu.Unlock()

	go n.consume(stdout)
	go func() {
		_ = cmd.Wait()
		n.mu.Lock()
		if n.done != nil {
			close(n.done)
			n.done = nil
		}
		n.mu.Unlock()
	}()

	n.log.Info("network notifier started", "watching", []string{"State:/Network/Global/IPv4", "State:/Network/Global/IPv6"})
	return nil
}

// consume reads scutil's notification lines and schedules a debounced
// emission on changes for each one. scutil's interactive prompt writes a
// line per key change once `n.watch` is active; the exact line content
// carries no information we need beyond "something changed."
func (n *Notifier) consume(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		n.scheduleEmit()
	}
	if err := scanner.Err(); err != nil {
		n.log.Warn("network notifier stdout scan error", "err", err)
	}
}

func (n *Notifier) scheduleEmit() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.debounce, func() {
		select {
		case n.changes <- struct{}{}:
		default:
		}
	})
}

// Stop terminates the scutil subprocess and waits for its goroutines to
// exit.
func (n *Notifier) Stop() {
	n.mu.Lock()
	cancel := n.cancel
	done := n.done
	n.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}
