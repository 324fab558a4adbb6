// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap wires the Store/Reconciler/Controller object graph
// every cmd/* entry point needs, so each command package stays a thin
// cobra.Command plus flag parsing rather than repeating construction.
package bootstrap

import (
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"

	mconfig "github.com/mountaineer/mountaineer/config"
	"github.com/mountaineer/mountaineer/internal/constants"
	"github.com/mountaineer/mountaineer/internal/controller"
	"github.com/mountaineer/mountaineer/internal/linker"
	"github.com/mountaineer/mountaineer/internal/model"
	"github.com/mountaineer/mountaineer/internal/mountdriver"
	"github.com/mountaineer/mountaineer/internal/netnotify"
	"github.com/mountaineer/mountaineer/internal/probe"
	"github.com/mountaineer/mountaineer/internal/reconciler"
	"github.com/mountaineer/mountaineer/internal/store"
)

// backupRetention is how long config.toml.backup/state.json.backup and
// *.corrupted.* sidecars are kept before Store.PruneStaleBackups removes
// them.
const backupRetention = 30 * 24 * time.Hour

// App is the fully wired object graph a cmd/* package drives.
type App struct {
	Log        logger.Logger
	Store      *store.Store
	Reconciler *reconciler.Reconciler
	Controller *controller.Controller
	Scheduler  gocron.Scheduler
}

// New loads config.toml/state.json from ~/.mountaineer and wires up every
// collaborator. Safe to call once per CLI invocation; cmd/monitor is the
// only caller that goes on to call App.Controller.Run.
func New() (*App, error) {
	log, err := logger.NewTag(mconfig.GetLoggerConfig(), "mountaineer")
	if err != nil {
		return nil, err
	}

	dir := mconfig.GetConfigDir()
	st := store.New(log, filepath.Join(dir, constants.ConfigFileName), filepath.Join(dir, constants.StateFileName))

	if _, err := st.LoadConfig(); err != nil {
		return nil, err
	}

	if err := st.LoadState(); err != nil {
		return nil, err
	}

	driver := mountdriver.New(log)
	prober := probe.NewService(log)
	lnk := linker.NewStableLinker(log)
	wol := reconciler.NewUDPBroadcastSender()
	rec := reconciler.New(log, driver, prober, lnk, reconciler.WithWakeOnLAN(wol))

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if err := st.RegisterDailyPrune(sched, backupRetention); err != nil {
		return nil, err
	}

	notifier := netnotify.New(log)
	ctrl := controller.New(log, st, notifier, rec, sched)

	return &App{Log: log, Store: st, Reconciler: rec, Controller: ctrl, Scheduler: sched}, nil
}

// FindShare looks up a favorite by case-insensitive name, for commands
// (`alias add`, `folders`) that report an unknown share themselves.
func FindShare(cfg *model.Config, name string) (model.ShareSpec, bool) {
	folded := model.FoldName(name)
	for _, s := range cfg.Shares {
		if model.FoldName(s.Name) == folded {
			return s, true
		}
	}
	return model.ShareSpec{}, false
}
