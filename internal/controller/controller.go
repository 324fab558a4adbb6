// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package controller owns the single-threaded event loop spec.md §4.8
// and §5 describe: it serializes timer ticks, network-change tokens, and
// user commands onto one goroutine. Ticks and network changes run
// Reconciler.ReconcileAll and persist state before the next trigger is
// accepted; each user command runs to completion (saving state itself)
// before the next is dequeued.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/netnotify"
	"github.com/mountaineer/mountaineer/internal/reconciler"
	"github.com/mountaineer/mountaineer/internal/store"
)

// command is a closure submitted to the controller's single goroutine;
// each one runs to completion (and its result, if any, is delivered via
// the channel it closes over) before the next is dequeued.
type command func(ctx context.Context)

// Controller wires Store, NetworkNotifier, and Reconciler into the
// cooperative scheduling model of spec.md §5: one goroutine, no
// intra-cycle parallelism.
type Controller struct {
	log         logger.Logger
	store       *store.Store
	notifier    *netnotify.Notifier
	reconciler  *reconciler.Reconciler
	scheduler   gocron.Scheduler
	commands    chan command
	lastCycleAt time.Time

	mu       sync.RWMutex
	statuses []model.ShareStatus
}

// New wires together an already-constructed Store/Notifier/Reconciler.
// scheduler is shared with the Store's daily backup-prune job (spec.md
// §4.4) so the process runs one gocron.Scheduler, not two.
func New(log logger.Logger, st *store.Store, notifier *netnotify.Notifier, rec *reconciler.Reconciler, scheduler gocron.Scheduler) *Controller {
	return &Controller{
		log:        log,
		store:      st,
		notifier:   notifier,
		reconciler: rec,
		scheduler:  scheduler,
		commands:   make(chan command, 16),
	}
}

// Run is the event loop: select over the check-interval ticker, the
// network notifier's debounced change channel, and the command queue,
// until ctx is done. A tick or network change runs a reconcile cycle,
// then a synchronous state save; a queued command runs to completion
// (each one in commands.go saves state itself). Either way the loop
// accepts the next trigger only afterwards, which is what gives user
// commands and timer ticks their linearizability guarantee (spec.md §5's
// "Ordering guarantees"). When ctx is done, pending state is flushed.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.notifier.Start(ctx); err != nil {
		c.log.Warn("network notifier failed to start, continuing on timer ticks only", "err", err)
	}
	defer c.notifier.Stop()

	c.scheduler.Start()
	defer func() {
		if err := c.scheduler.Shutdown(); err != nil {
			c.log.Warn("scheduler shutdown failed", "err", err)
		}
	}()

	cfg := c.store.Config()
	ticker := time.NewTicker(cfg.Globals.CheckInterval())
	defer ticker.Stop()

	c.log.Info("controller started", "check_interval", cfg.Globals.CheckInterval())

	for {
		select {
		case <-ctx.Done():
			c.log.Info("controller stopping")
			return c.flush()

		case <-ticker.C:
			c.reconcileCycle(ctx, true, "tick")

		case <-c.notifier.Changes():
			c.reconcileCycle(ctx, true, "network_change")

		case cmd := <-c.commands:
			cmd(ctx)
		}
	}
}

// submit enqueues cmd and blocks until it has run, preserving the
// single-goroutine serialization for callers (CLI command handlers)
// running on a different goroutine than Run's loop.
func (c *Controller) submit(ctx context.Context, cmd func(ctx context.Context)) {
	done := make(chan struct{})
	c.commands <- func(ctx context.Context) {
		defer close(done)
		cmd(ctx)
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// reconcileCycle runs one full pass over every configured share and
// flushes state synchronously, per spec.md §4.8's "persists state before
// accepting the next trigger."
func (c *Controller) reconcileCycle(ctx context.Context, attemptMount bool, trigger string) []model.ShareStatus {
	cfg := c.store.Config()
	state := c.store.State()
	statuses := c.reconciler.ReconcileAll(ctx, cfg, state, attemptMount)
	if err := c.store.SaveState(); err != nil {
		c.log.Error("failed to persist state after reconcile cycle", "trigger", trigger, "err", err)
	}
	c.lastCycleAt = time.Now()

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()

	return statuses
}

// LastStatuses returns the most recently published snapshot, or nil
// before the first cycle has run. Safe to call from any goroutine —
// statusapi's poll loop calls this from outside the controller's own
// event loop goroutine.
func (c *Controller) LastStatuses() []model.ShareStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statuses
}

func (c *Controller) flush() error {
	return c.store.Flush()
}

// ReconcileNow runs a cycle on demand (the `reconcile`/`verify` CLI
// commands) without waiting for the next tick. attemptMount=false skips
// mounting and switching (stale-mount cleanup still runs) for a "verify"
// pass; true behaves like a tick.
func (c *Controller) ReconcileNow(ctx context.Context, attemptMount bool) []model.ShareStatus {
	var result []model.ShareStatus
	c.submit(ctx, func(ctx context.Context) {
		result = c.reconcileCycle(ctx, attemptMount, "manual")
	})
	return result
}
