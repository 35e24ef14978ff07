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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files. Expressions
// can read the environment through env, e.g. password = env.GESTO_PASSWORD.
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclConfig struct {
	ServerURL   string `hcl:"server_url,optional"`
	UserID      string `hcl:"user_id,optional"`
	Credentials *struct {
		Username string `hcl:"username"`
		Password string `hcl:"password"`
	} `hcl:"credentials,block"`
	Session *struct {
		Backend string `hcl:"backend,optional"`
		Path    string `hcl:"path,optional"`
	} `hcl:"session,block"`
	PollInterval      string `hcl:"poll_interval,optional"`
	SyncDebounce      string `hcl:"sync_debounce,optional"`
	SyncReset         string `hcl:"sync_reset,optional"`
	RequestTimeout    string `hcl:"request_timeout,optional"`
	MaxCommitAttempts int    `hcl:"max_commit_attempts,optional"`
	WifiTargetName    string `hcl:"wifi_target_name,optional"`
	Notifications     bool   `hcl:"notifications,optional"`
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "gesto.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	var hc hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		ServerURL:         hc.ServerURL,
		UserID:            hc.UserID,
		MaxCommitAttempts: hc.MaxCommitAttempts,
		WifiTargetName:    hc.WifiTargetName,
		Notifications:     hc.Notifications,
	}
	if hc.Credentials != nil {
		cfg.Credentials = &Credentials{Username: hc.Credentials.Username, Password: hc.Credentials.Password}
	}
	if hc.Session != nil {
		cfg.Session = SessionConfig{Backend: hc.Session.Backend, Path: hc.Session.Path}
	}

	durations := []struct {
		raw string
		dst *Duration
	}{
		{hc.PollInterval, &cfg.PollInterval},
		{hc.SyncDebounce, &cfg.SyncDebounce},
		{hc.SyncReset, &cfg.SyncReset},
		{hc.RequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		if err := d.dst.UnmarshalText([]byte(d.raw)); err != nil {
			return nil, errors.Errorf("decoding HCL: %w", err)
		}
	}

	return cfg, nil
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vars)
}
