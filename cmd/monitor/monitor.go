// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"

	mconfig "github.com/mountaineer/mountaineer/config"
	"github.com/mountaineer/mountaineer/internal/bootstrap"
	"github.com/mountaineer/mountaineer/internal/constants"
	"github.com/mountaineer/mountaineer/internal/lifecycle"
	"github.com/mountaineer/mountaineer/internal/statusapi"
)

var (
	detached    bool
	intervalSec int
	statusPort  int
)

// NewMonitorCmd is the long-running watch loop: spec.md §6's `monitor
// [--interval N]`. Reuses the teacher's cmd/serve daemonization idiom
// (go-daemon --detach, lifecycle.EnsureSingleInstance, signal handling).
func NewMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the Mountaineer reconciliation loop",
		RunE:  runMonitor,
	}
	cmd.Flags().BoolVarP(&detached, "detach", "d", false, "Run as a background daemon")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "Override check_interval_secs for this run (0 = use config.toml)")
	cmd.Flags().IntVar(&statusPort, "status-port", 7490, "Loopback port for the status API (0 disables it)")
	return cmd
}

func runMonitor(cmd *cobra.Command, args []string) error {
	pidFile := filepath.Join(mconfig.GetConfigDir(), constants.PIDFileName)
	if err := lifecycle.EnsureSingleInstance(pidFile); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	if detached {
		ctx := &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			LogFileName: filepath.Join(mconfig.GetLogDir(), "mountaineer.log"),
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        []string{"mountaineer", "monitor"},
		}

		d, err := ctx.Reborn()
		if err != nil {
			return fmt.Errorf("failed to start daemon: %w", err)
		}
		if d != nil {
			fmt.Println("Mountaineer is running as a daemon")
			return nil
		}
		defer ctx.Release()
	}

	return startMonitor()
}

func startMonitor() error {
	app, err := bootstrap.New()
	if err != nil {
		return err
	}

	if intervalSec > 0 {
		app.Store.OverrideCheckInterval(intervalSec)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lifecycle.RegisterContextCanceller(cancel)

	if statusPort > 0 {
		api := statusapi.New(app.Log, statusPort, app.Controller.LastStatuses)
		if err := api.Start(ctx); err != nil {
			app.Log.Warn("status API failed to start, continuing without it", "err", err)
		} else {
			lifecycle.RegisterShutdownHook(func() {
				_ = api.Shutdown(context.Background())
			})
		}
	}

	lifecycle.RegisterShutdownHook(func() {
		app.Log.Info("shutting down")
		if err := app.Store.Flush(); err != nil {
			app.Log.Error("final state flush failed", "err", err)
		}
	})

	go lifecycle.HandleSignals(ctx)

	app.Log.Info("mountaineer monitor starting", "check_interval", app.Store.Config().Globals.CheckInterval())
	return app.Controller.Run(ctx)
}
