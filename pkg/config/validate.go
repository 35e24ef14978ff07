// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/commit"
	"github.com/walteh/gesto/pkg/connectivity"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/session"
	"github.com/walteh/gesto/pkg/syncer"
)

const (
	DefaultPollInterval      = 5 * time.Second
	DefaultSyncDebounce      = 500 * time.Millisecond
	DefaultSyncReset         = 500 * time.Millisecond
	DefaultRequestTimeout    = 10 * time.Second
	DefaultMaxCommitAttempts = 3
)

// 🏗️ Default returns a config with every default applied and no server
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)
	if cfg.ServerURL != "" {
		u, err := url.Parse(cfg.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Errorf("server_url must be an absolute http(s) url, got %q", cfg.ServerURL)
		}
	}

	if c := cfg.Credentials; c != nil {
		if (c.Username == "") != (c.Password == "") {
			return errors.Errorf("credentials need both username and password")
		}
		if c.Username == "" {
			cfg.Credentials = nil
		}
	}

	for name, d := range map[string]*Duration{
		"poll_interval":   &cfg.PollInterval,
		"sync_debounce":   &cfg.SyncDebounce,
		"sync_reset":      &cfg.SyncReset,
		"request_timeout": &cfg.RequestTimeout,
	} {
		if d.Duration < 0 {
			return errors.Errorf("%s must not be negative, got %s", name, d.Duration)
		}
	}
	if cfg.PollInterval.Duration == 0 {
		cfg.PollInterval = D(DefaultPollInterval)
	}
	if cfg.SyncDebounce.Duration == 0 {
		cfg.SyncDebounce = D(DefaultSyncDebounce)
	}
	if cfg.SyncReset.Duration == 0 {
		cfg.SyncReset = D(DefaultSyncReset)
	}
	if cfg.RequestTimeout.Duration == 0 {
		cfg.RequestTimeout = D(DefaultRequestTimeout)
	}

	if cfg.MaxCommitAttempts < 0 {
		return errors.Errorf("max_commit_attempts must not be negative, got %d", cfg.MaxCommitAttempts)
	}
	if cfg.MaxCommitAttempts == 0 {
		cfg.MaxCommitAttempts = DefaultMaxCommitAttempts
	}

	switch session.Backend(cfg.Session.Backend) {
	case "":
		cfg.Session.Backend = string(session.BackendFile)
	case session.BackendFile, session.BackendSQLite, session.BackendMemory:
	default:
		return errors.Errorf("session.backend must be file, sqlite or memory, got %q", cfg.Session.Backend)
	}
	if cfg.Session.Path == "" && cfg.Session.Backend != string(session.BackendMemory) {
		cfg.Session.Path = defaultSessionPath(session.Backend(cfg.Session.Backend))
	}

	cfg.WifiTargetName = strings.TrimSpace(cfg.WifiTargetName)

	return nil
}

func defaultSessionPath(b session.Backend) string {
	name := "session.json"
	if b == session.BackendSQLite {
		name = "session.db"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".gesto", name)
	}
	return filepath.Join(dir, "gesto", name)
}

// SyncOptions returns the sync engine timers
func (cfg *Config) SyncOptions() syncer.Options {
	return syncer.Options{
		Debounce:   cfg.SyncDebounce.Duration,
		ResetAfter: cfg.SyncReset.Duration,
		Timeout:    cfg.RequestTimeout.Duration,
	}
}

// CommitPolicy returns the manual retry policy
func (cfg *Config) CommitPolicy() commit.Policy {
	return commit.Policy{MaxAttempts: cfg.MaxCommitAttempts}
}

// MonitorOptions returns the connectivity monitor timing
func (cfg *Config) MonitorOptions() connectivity.Options {
	return connectivity.Options{
		Interval:       cfg.PollInterval.Duration,
		Timeout:        min(cfg.RequestTimeout.Duration, cfg.PollInterval.Duration),
		NotifyRestored: cfg.Notifications,
	}
}

// APICredentials returns the login credentials, nil when none are set
func (cfg *Config) APICredentials() *remote.Credentials {
	if cfg.Credentials == nil {
		return nil
	}
	return &remote.Credentials{Username: cfg.Credentials.Username, Password: cfg.Credentials.Password}
}

// SessionBackend returns the configured store backend
func (cfg *Config) SessionBackend() session.Backend {
	return session.Backend(cfg.Session.Backend)
}
