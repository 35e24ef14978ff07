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

package operation

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/session"
)

// ErrInvalidServerURL is returned for a server URL that is not http(s)
var ErrInvalidServerURL = errors.Base("invalid server url")

// ⚙️ Settings is the controller behind the settings screen
type Settings struct {
	store session.Store
}

func NewSettings(store session.Store) *Settings {
	return &Settings{store: store}
}

func (s *Settings) Load(ctx context.Context) (session.Settings, error) {
	return session.LoadSettings(ctx, s.store)
}

// 💾 Save validates and stores the settings. An empty server URL falls back
// to the configured one.
func (s *Settings) Save(ctx context.Context, st session.Settings) error {
	st.ServerURL = strings.TrimSpace(st.ServerURL)
	if err := ValidateServerURL(st.ServerURL); err != nil {
		return err
	}
	if err := session.SaveSettings(ctx, s.store, st); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().
		Str("server_url", st.ServerURL).
		Bool("notifications", st.NotificationsEnabled).
		Str("wifi_target", st.EffectiveWifiTarget()).
		Msg("settings saved")
	return nil
}

// Test probes the server with the given prober
func (s *Settings) Test(ctx context.Context, p remote.Prober) error {
	if err := p.Health(ctx); err != nil {
		return errors.Errorf("testing server: %w", err)
	}
	return nil
}

// ValidateServerURL accepts the empty string or an absolute http(s) URL
func ValidateServerURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Errorf("%w: %s", ErrInvalidServerURL, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("%w: scheme %q", ErrInvalidServerURL, u.Scheme)
	}
	if u.Host == "" {
		return errors.Errorf("%w: missing host", ErrInvalidServerURL)
	}
	return nil
}
