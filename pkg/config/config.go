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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ⏱️ Duration is a time.Duration written as text ("5s", "500ms")
type Duration struct {
	time.Duration
}

// D builds a Duration
func D(d time.Duration) Duration { return Duration{Duration: d} }

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Errorf("parsing duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

// 🔑 Credentials log in to the privileged endpoints
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// 💾 SessionConfig selects where session state is kept
type SessionConfig struct {
	// Backend is file, sqlite or memory
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	ServerURL         string        `json:"server_url" yaml:"server_url"`
	UserID            string        `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Credentials       *Credentials  `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Session           SessionConfig `json:"session" yaml:"session"`
	PollInterval      Duration      `json:"poll_interval" yaml:"poll_interval"`
	SyncDebounce      Duration      `json:"sync_debounce" yaml:"sync_debounce"`
	SyncReset         Duration      `json:"sync_reset" yaml:"sync_reset"`
	RequestTimeout    Duration      `json:"request_timeout" yaml:"request_timeout"`
	MaxCommitAttempts int           `json:"max_commit_attempts" yaml:"max_commit_attempts"`
	WifiTargetName    string        `json:"wifi_target_name,omitempty" yaml:"wifi_target_name,omitempty"`
	Notifications     bool          `json:"notifications,omitempty" yaml:"notifications,omitempty"`

	location string
}

// Location returns the file the config was loaded from
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	user := "anonymous"
	if cfg.Credentials != nil {
		user = cfg.Credentials.Username
	}
	return fmt.Sprintf("%s as %s, session %s:%s", cfg.ServerURL, user, cfg.Session.Backend, cfg.Session.Path)
}
