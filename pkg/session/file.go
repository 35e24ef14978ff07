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
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const lockPoll = 10 * time.Millisecond

// 📄 FileStore keeps values in a JSON object on disk. Writers take a sibling
// .lock file so two processes never interleave a read-modify-write.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// OpenFile opens (and creates the directory for) a file store
func OpenFile(ctx context.Context, path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Errorf("creating session directory: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("opened file session store")
	return &FileStore{path: path}, nil
}

// Path returns the JSON file backing the store
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(ctx context.Context, key, value string) error {
	return f.update(ctx, func(values map[string]string) {
		values[key] = value
	})
}

func (f *FileStore) Remove(ctx context.Context, keys ...string) error {
	return f.update(ctx, func(values map[string]string) {
		for _, k := range keys {
			delete(values, k)
		}
	})
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, errors.Errorf("reading session file: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Errorf("parsing session file: %w", err)
	}
	return values, nil
}

func (f *FileStore) update(ctx context.Context, fn func(map[string]string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	fn(values)

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling session file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Errorf("writing temp session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return errors.Errorf("renaming temp session file: %w", err)
	}
	return nil
}

// lock creates path.lock exclusively, waiting while another writer holds it
func (f *FileStore) lock(ctx context.Context) (func(), error) {
	lockPath := f.path + ".lock"
	for {
		fh, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			fh.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Errorf("creating session lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Errorf("waiting for session lock %s: %w", lockPath, ctx.Err())
		case <-time.After(lockPoll):
		}
	}
}
