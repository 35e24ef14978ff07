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

// Package session keeps the small amount of state shared between screens:
// the selected area, the pending request and the user settings.
package session

import (
	"context"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// Persisted keys. Values are always strings.
const (
	KeyArea          = "selectedLocal"
	KeyAreaName      = "selectedLocalName"
	KeyRequestID     = "requestId"
	KeyServerURL     = "SERVER_URL"
	KeyNotifications = "NOTIFICATIONS_ENABLED"
	KeyWifiTarget    = "WIFI_TARGET_NAME"
)

// 🗄️ Store is a string key-value store
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// Backend names a Store implementation
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Open opens the store for backend at path
func Open(ctx context.Context, backend Backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		return OpenFile(ctx, path)
	case BackendSQLite:
		return OpenSQLite(ctx, path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, errors.Errorf("unknown session backend %q", backend)
	}
}

// MemoryStore keeps values in memory only
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
