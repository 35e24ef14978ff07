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

package session

import (
	"context"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultWifiTarget is used when no wifi target name is stored
const DefaultWifiTarget = "wifipost"

// ⚙️ Settings are the user-editable values
type Settings struct {
	// ServerURL overrides the configured base URL when set
	ServerURL            string
	NotificationsEnabled bool
	// WifiTarget is stored trimmed; empty falls back to DefaultWifiTarget
	WifiTarget string
}

// EffectiveWifiTarget returns the wifi target or the default
func (s Settings) EffectiveWifiTarget() string {
	if s.WifiTarget == "" {
		return DefaultWifiTarget
	}
	return s.WifiTarget
}

// LoadSettings reads the settings. Missing or malformed values fall back to
// their zero value.
func LoadSettings(ctx context.Context, store Store) (Settings, error) {
	var s Settings

	url, _, err := store.Get(ctx, KeyServerURL)
	if err != nil {
		return Settings{}, errors.Errorf("loading server url: %w", err)
	}
	s.ServerURL = strings.TrimSpace(url)

	notif, ok, err := store.Get(ctx, KeyNotifications)
	if err != nil {
		return Settings{}, errors.Errorf("loading notifications flag: %w", err)
	}
	if ok {
		s.NotificationsEnabled, _ = strconv.ParseBool(notif)
	}

	wifi, _, err := store.Get(ctx, KeyWifiTarget)
	if err != nil {
		return Settings{}, errors.Errorf("loading wifi target: %w", err)
	}
	s.WifiTarget = strings.TrimSpace(wifi)

	return s, nil
}

// SaveSettings writes the settings. An empty server url removes the override.
func SaveSettings(ctx context.Context, store Store, s Settings) error {
	if url := strings.TrimSpace(s.ServerURL); url != "" {
		if err := store.Set(ctx, KeyServerURL, url); err != nil {
			return errors.Errorf("saving server url: %w", err)
		}
	} else if err := store.Remove(ctx, KeyServerURL); err != nil {
		return errors.Errorf("removing server url: %w", err)
	}

	// stored as a JSON boolean literal
	if err := store.Set(ctx, KeyNotifications, strconv.FormatBool(s.NotificationsEnabled)); err != nil {
		return errors.Errorf("saving notifications flag: %w", err)
	}

	if err := store.Set(ctx, KeyWifiTarget, strings.TrimSpace(s.WifiTarget)); err != nil {
		return errors.Errorf("saving wifi target: %w", err)
	}
	return nil
}

// 🌐 ServerURL returns a resolver that prefers the stored SERVER_URL over
// fallback. It is evaluated on every call so a changed setting applies at
// once.
func ServerURL(store Store, fallback func() string) func(ctx context.Context) string {
	return func(ctx context.Context) string {
		if v, ok, err := store.Get(ctx, KeyServerURL); err == nil && ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		if fallback == nil {
			return ""
		}
		return fallback()
	}
}
