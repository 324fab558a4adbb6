// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountaineer/mountaineer/internal/constants"
	"github.com/mountaineer/mountaineer/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "store-test")
	require.NoError(t, err)

	dir := t.TempDir()
	s := New(log, filepath.Join(dir, "config.toml"), filepath.Join(dir, "state.json"))
	s.saveDelay = 20 * time.Millisecond
	return s
}

func TestLoadConfigSeedsDefaultsWhenFileMissing(t *testing.T) {
	s := newTestStore(t)
	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, constants.ConfigSchemaVersion, cfg.SchemaVersion)
	assert.Equal(t, model.DefaultGlobals().CheckIntervalSecs, cfg.Globals.CheckIntervalSecs)
	assert.Empty(t, cfg.Shares)
}

func TestSaveConfigThenLoadRoundTrips(t *testing.T) {
	s := newTestStore(t)
	cfg := &model.Config{
		SchemaVersion: constants.ConfigSchemaVersion,
		Globals:       model.DefaultGlobals(),
		Shares: []model.ShareSpec{
			{Name: "CORE", PrimaryHost: "core.local", FallbackHost: "core-fb.local", RemoteShareName: "core"},
		},
	}
	require.NoError(t, s.SaveConfig(cfg))

	reloaded := newTestStore(t)
	reloaded.configPath = s.configPath
	got, err := reloaded.LoadConfig()
	require.NoError(t, err)
	require.Len(t, got.Shares, 1)
	assert.Equal(t, "CORE", got.Shares[0].Name)
	assert.Equal(t, "core.local", got.Shares[0].PrimaryHost)
}

func TestSaveConfigRejectsInvalidConfig(t *testing.T) {
	s := newTestStore(t)
	cfg := &model.Config{
		Globals: model.DefaultGlobals(),
		Shares: []model.ShareSpec{
			{Name: "CORE", PrimaryHost: "core.local", FallbackHost: "core-fb.local"},
			{Name: "core", PrimaryHost: "other.local", FallbackHost: "other-fb.local"},
		},
	}
	err := s.SaveConfig(cfg)
	require.Error(t, err)
}

func TestLoadStateRecoversFromCorruptedFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.statePath, []byte("{not json"), 0644))

	require.NoError(t, s.LoadState())
	assert.Empty(t, s.State())

	matches, err := filepath.Glob(s.statePath + ".corrupted.*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRuntimeCreatesAndPersistsShareRuntime(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.LoadState())

	rt := s.Runtime("Core")
	require.NotNil(t, rt)
	rt.ActiveBackend = model.BackendPrimary

	same := s.Runtime("CORE")
	assert.Same(t, rt, same)

	require.Eventually(t, func() bool {
		_, err := os.Stat(s.statePath)
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestFlushWritesPendingStateImmediately(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.LoadState())
	s.Runtime("core")

	require.NoError(t, s.Flush())
	data, err := os.ReadFile(s.statePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "core")
}

func TestPruneStaleBackupsRemovesOldSidecarsOnly(t *testing.T) {
	s := newTestStore(t)
	dir := filepath.Dir(s.statePath)

	oldBackup := filepath.Join(dir, "state.json.backup")
	require.NoError(t, os.WriteFile(oldBackup, []byte("{}"), 0644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldBackup, old, old))

	freshCorrupted := filepath.Join(dir, "state.json.corrupted.20260101-000000")
	require.NoError(t, os.WriteFile(freshCorrupted, []byte("{}"), 0644))

	removed, err := s.PruneStaleBackups(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldBackup)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshCorrupted)
	assert.NoError(t, err)
}
