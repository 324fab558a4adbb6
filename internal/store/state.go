// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mountaineer/mountaineer/internal/model"
	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// LoadState reads state.json. A missing file is not an error: Mountaineer
// starts with an empty RuntimeState on first run. A file that fails to
// parse is renamed aside as "state.json.corrupted.<timestamp>" and
// Mountaineer again starts empty, rather than refusing to start.
func (s *Store) LoadState() error {
	if _, err := os.Stat(s.statePath); os.IsNotExist(err) {
		s.log.Info("state file not found, starting with empty state", "path", s.statePath)
		return nil
	}

	data, err := os.ReadFile(s.statePath)
	if err != nil {
		return merrors.Wrap(err, merrors.StoreLoadFailed).WithMetadata("path", s.statePath)
	}

	var state model.RuntimeState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn("failed to parse state file, backing up and starting fresh", "err", err, "path", s.statePath)
		backupPath := s.statePath + ".corrupted." + time.Now().Format("20060102-150405")
		if renameErr := os.Rename(s.statePath, backupPath); renameErr != nil {
			s.log.Error("failed to back up corrupted state", "err", renameErr)
		}
		s.mu.Lock()
		s.state = make(model.RuntimeState)
		s.mu.Unlock()
		return nil
	}

	if state == nil {
		state = make(model.RuntimeState)
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.log.Info("state loaded", "path", s.statePath, "shares", len(state))
	return nil
}

// State returns the in-memory RuntimeState. Callers hold the Store's
// implicit single-threaded-reconciler discipline (spec.md §5): only the
// controller goroutine calls this, so no lock is needed on the returned
// map itself beyond what Store already takes internally.
func (s *Store) State() model.RuntimeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Runtime returns the ShareRuntime for name, creating an empty one (and
// scheduling a debounced save) if this is the first time name has been
// seen.
func (s *Store) Runtime(name string) *model.ShareRuntime {
	key := model.FoldName(name)

	s.mu.Lock()
	rt, ok := s.state[key]
	if !ok {
		rt = &model.ShareRuntime{}
		s.state[key] = rt
	}
	s.mu.Unlock()

	if !ok {
		s.SaveStateDebounced()
	}
	return rt
}

// SaveState writes state.json to disk immediately, atomically.
func (s *Store) SaveState() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveStateLocked()
}

// saveStateLocked requires s.mu held.
func (s *Store) saveStateLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", s.statePath).WithMetadata("operation", "marshal")
	}

	if err := os.MkdirAll(filepath.Dir(s.statePath), 0755); err != nil {
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", s.statePath).WithMetadata("operation", "mkdir")
	}

	tmp := s.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", tmp).WithMetadata("operation", "write_temp")
	}

	if _, err := os.Stat(s.statePath); err == nil {
		backupPath := s.statePath + ".backup"
		if err := os.Rename(s.statePath, backupPath); err != nil {
			s.log.Warn("failed to backup current state", "err", err)
		}
	}

	if err := os.Rename(tmp, s.statePath); err != nil {
		os.Remove(tmp)
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", s.statePath).WithMetadata("operation", "rename")
	}

	s.log.Debug("state saved", "path", s.statePath)
	s.savePending = false
	return nil
}

// SaveStateDebounced schedules a state.json write saveDelay from now,
// coalescing bursts of ShareRuntime mutations (every probe tick touches
// several) into a single disk write.
func (s *Store) SaveStateDebounced() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.savePending = true
	s.saveTimer = time.AfterFunc(s.saveDelay, func() {
		if err := s.SaveState(); err != nil {
			s.log.Error("failed to save state", "err", err)
		}
	})
}
