// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/mountaineer/mountaineer/internal/constants"
	"github.com/mountaineer/mountaineer/internal/model"
	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// LoadConfig reads config.toml through Viper, seeding the [globals]
// defaults spec.md §6 documents for anything the file omits, then
// validates the result. A missing file is not an error: LoadConfig
// returns DefaultGlobals with no shares or aliases and leaves the file
// unwritten until the caller calls SaveConfig.
func (s *Store) LoadConfig() (*model.Config, error) {
	v := viper.New()
	v.SetConfigFile(s.configPath)
	v.SetConfigType("toml")

	d := model.DefaultGlobals()
	v.SetDefault("schema_version", constants.ConfigSchemaVersion)
	v.SetDefault("globals.shares_root", d.SharesRoot)
	v.SetDefault("globals.check_interval_secs", d.CheckIntervalSecs)
	v.SetDefault("globals.auto_failback", d.AutoFailback)
	v.SetDefault("globals.auto_failback_stable_secs", d.AutoFailbackStable)
	v.SetDefault("globals.connect_timeout_ms", d.ConnectTimeoutMS)
	v.SetDefault("globals.require_idle_on_switch", d.RequireIdleOnSwitch)

	var loadedFromDisk bool
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, os.ErrNotExist) {
			return nil, merrors.Wrap(err, merrors.StoreLoadFailed).WithMetadata("path", s.configPath)
		}
		s.log.Info("config file not found, starting from defaults", "path", s.configPath)
	} else {
		loadedFromDisk = true
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, merrors.Wrap(err, merrors.StoreLoadFailed).WithMetadata("path", s.configPath).WithMetadata("operation", "unmarshal")
	}

	cfg.FillDefaults()
	if cfg.SchemaVersion > constants.ConfigSchemaVersion {
		return nil, merrors.New(merrors.StoreSchemaTooNew, "config.toml schema_version is newer than this binary understands").
			WithMetadata("file_version", strconv.Itoa(cfg.SchemaVersion)).
			WithMetadata("max_supported", strconv.Itoa(constants.ConfigSchemaVersion))
	}
	migrated := cfg.SchemaVersion < constants.ConfigSchemaVersion
	cfg.SchemaVersion = constants.ConfigSchemaVersion

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.config = &cfg
	s.mu.Unlock()

	if migrated && loadedFromDisk {
		s.log.Info("config.toml schema migrated", "to_version", constants.ConfigSchemaVersion)
		if err := s.SaveConfig(&cfg); err != nil {
			s.log.Warn("failed to persist migrated config", "err", err)
		}
	}

	return &cfg, nil
}

// SaveConfig validates cfg and writes it to config.toml atomically: a
// temp file in the same directory, then os.Rename over the real path, the
// way StableLinker.Publish and state saves both work — a reader never
// observes a half-written file.
func (s *Store) SaveConfig(cfg *model.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", s.configPath).WithMetadata("operation", "marshal")
	}

	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", s.configPath).WithMetadata("operation", "mkdir")
	}

	tmp := s.configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", tmp).WithMetadata("operation", "write_temp")
	}

	if _, err := os.Stat(s.configPath); err == nil {
		backupPath := s.configPath + ".backup"
		if err := os.Rename(s.configPath, backupPath); err != nil {
			s.log.Warn("failed to backup current config", "err", err)
		}
	}

	if err := os.Rename(tmp, s.configPath); err != nil {
		os.Remove(tmp)
		return merrors.Wrap(err, merrors.StoreSaveFailed).WithMetadata("path", s.configPath).WithMetadata("operation", "rename")
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.log.Debug("config saved", "path", s.configPath)
	return nil
}
