// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// PruneStaleBackups removes config.toml.backup/state.json.backup and any
// *.corrupted.<timestamp> sidecar files older than retention. Sidecars
// accumulate one per save/corruption event and are never otherwise
// cleaned up, so an agent left running for months would slowly fill
// ~/.mountaineer without this.
func (s *Store) PruneStaleBackups(retention time.Duration) (int, error) {
	dir := filepath.Dir(s.statePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, merrors.Wrap(err, merrors.StoreLoadFailed).WithMetadata("path", dir)
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".backup") && !strings.Contains(name, ".corrupted.") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			s.log.Warn("failed to prune stale backup file", "path", path, "err", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info("pruned stale backup files", "count", removed, "dir", dir)
	}
	return removed, nil
}

// RegisterDailyPrune schedules PruneStaleBackups to run once a day at
// 03:00, dropping sidecars older than retention. Callers own starting and
// shutting down sched; RegisterDailyPrune only adds the job.
func (s *Store) RegisterDailyPrune(sched gocron.Scheduler, retention time.Duration) error {
	_, err := sched.NewJob(
		gocron.CronJob("0 3 * * *", false),
		gocron.NewTask(func() {
			if _, err := s.PruneStaleBackups(retention); err != nil {
				s.log.Error("scheduled backup prune failed", "err", err)
			}
		}),
		gocron.WithName("prune-backups"),
	)
	if err != nil {
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("operation", "register_prune_job")
	}
	return nil
}
