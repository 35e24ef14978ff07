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
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultWatchDebounce groups the bursts of events editors produce on save
const DefaultWatchDebounce = 100 * time.Millisecond

// 👀 Watch reloads the file at path whenever it changes and calls fn with the
// new config. A file that fails to load is logged and skipped, fn keeps the
// last good config. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(context.Context, *Config)) error {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Logger()

	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return errors.Errorf("resolving config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// editors replace the file, so the directory is watched instead
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	logger.Debug().Msg("watching config")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")

		case <-fire:
			fire = nil
			cfg, err := Load(ctx, target)
			if err != nil {
				logger.Warn().Err(err).Msg("ignoring invalid config change")
				continue
			}
			logger.Info().Msg("config reloaded")
			fn(ctx, cfg)
		}
	}
}
