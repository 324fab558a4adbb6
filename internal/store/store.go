// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package store implements spec.md §4.4's Store: the declarative config
// (config.toml, Viper-backed TOML) and the opaque runtime state
// (state.json) persistence, both with atomic temp-file-then-rename writes.
//
// config and state intentionally live side by side here rather than in
// separate packages, since they share path conventions and both ultimately
// serve the same caller (the controller) through one object.
package store

import (
	"sync"
	"time"

	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/model"
)

// defaultStateSaveDelay is how long Store waits after the last mutation
// before flushing state.json to disk.
const defaultStateSaveDelay = 2 * time.Second

// Store owns config.toml and state.json: the only two files Mountaineer
// persists between runs.
type Store struct {
	log logger.Logger

	configPath string
	statePath  string

	mu     sync.RWMutex
	config *model.Config
	state  model.RuntimeState

	saveTimer   *time.Timer
	saveDelay   time.Duration
	savePending bool
}

// New creates a Store rooted at configPath/statePath. Neither file needs
// to exist yet: LoadConfig seeds defaults, LoadState starts from an empty
// RuntimeState.
func New(log logger.Logger, configPath, statePath string) *Store {
	return &Store{
		log:        log,
		configPath: configPath,
		statePath:  statePath,
		state:      make(model.RuntimeState),
		saveDelay:  defaultStateSaveDelay,
	}
}

// Config returns the in-memory config most recently loaded or saved.
// Callers must not mutate the returned value; use SaveConfig to persist
// changes.
func (s *Store) Config() *model.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// OverrideCheckInterval replaces the in-memory check_interval_secs for
// this run only (e.g. `monitor --interval`), without touching
// config.toml — the next LoadConfig call reverts to the file's value.
func (s *Store) OverrideCheckInterval(secs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Globals.CheckIntervalSecs = secs
}

// ConfigPath returns the path config.toml was loaded from or will be
// written to.
func (s *Store) ConfigPath() string {
	return s.configPath
}

// StatePath returns the path state.json was loaded from or will be
// written to.
func (s *Store) StatePath() string {
	return s.statePath
}

// Flush forces an immediate state.json write if a debounced save is
// pending, cancelling the pending timer. Call before process exit so the
// last mutation is never lost to an un-fired timer.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	if s.savePending {
		return s.saveStateLocked()
	}
	return nil
}
