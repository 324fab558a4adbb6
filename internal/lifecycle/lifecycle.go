// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle handles process-level concerns for the long-running
// monitor: signal-triggered shutdown/reload hooks and a single-instance
// PID file guard, so two `mountaineer monitor` invocations never fight
// over the same mounts.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
)

var (
	shutdownHooks []func()
	reloadHooks   []func()
	cancel        context.CancelFunc
)

// RegisterShutdownHook adds hook to the set run (in registration order)
// when SIGTERM/SIGINT is received, before the process exits. cmd/monitor
// uses this to flush pending state and shut down the status API.
func RegisterShutdownHook(hook func()) {
	shutdownHooks = append(shutdownHooks, hook)
}

// RegisterReloadHook adds hook to the set run when SIGHUP is received.
// Nothing in this module registers a reload hook, so SIGHUP currently
// runs none.
func RegisterReloadHook(hook func()) {
	reloadHooks = append(reloadHooks, hook)
}

// RegisterContextCanceller records the cancel func for the controller's
// root context, invoked first on shutdown so every goroutine selecting
// on ctx.Done() unwinds before the shutdown hooks run.
func RegisterContextCanceller(c context.CancelFunc) {
	cancel = c
}

// HandleSignals blocks, dispatching SIGTERM/SIGINT to shutdown and SIGHUP
// to reload, until either a signal triggers shutdown or ctx is done.
func HandleSignals(ctx context.Context) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(stop)

	for {
		select {
		case sig := <-stop:
			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				shutdown()
				return
			case syscall.SIGHUP:
				reload()
			}
		case <-ctx.Done():
			return
		}
	}
}

func shutdown() {
	if cancel != nil {
		cancel()
	}
	for _, hook := range shutdownHooks {
		hook()
	}
}

func reload() {
	for _, hook := range reloadHooks {
		hook()
	}
}

// EnsureSingleInstance writes the current PID to pidPath, refusing to
// proceed if a live process already holds it, and registers a shutdown
// hook to remove it. A PID file naming a process that's no longer
// running is treated as stale and reclaimed.
func EnsureSingleInstance(pidPath string) error {
	if pidPath == "" {
		return fmt.Errorf("invalid PID file path")
	}

	if _, err := os.Stat(pidPath); err == nil {
		pidBytes, err := os.ReadFile(pidPath)
		if err != nil {
			return fmt.Errorf("failed to read PID file: %w", err)
		}

		content := strings.TrimSpace(string(pidBytes))
		if content == "" {
			os.Remove(pidPath)
		} else {
			pid, err := strconv.Atoi(content)
			if err != nil {
				return fmt.Errorf("invalid PID format: %w", err)
			}

			process, err := os.FindProcess(pid)
			if err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("another instance is already running (pid %d)", pid)
				}
			}
			os.Remove(pidPath)
		}
	}

	if err := os.WriteFile(pidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	RegisterShutdownHook(func() {
		os.Remove(pidPath)
	})

	return nil
}
