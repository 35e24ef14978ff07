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

package opts

import (
	"context"
	"sync/atomic"

	"github.com/walteh/gesto/pkg/config"
	"github.com/walteh/gesto/pkg/log"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/session"
)

// RootOpts is shared by every command. It is filled in before a command runs.
type RootOpts struct {
	Config  *config.Config
	Store   session.Store
	Session *session.Context
	API     remote.API
	Console *log.Logger

	serverURL atomic.Pointer[string]
}

// SetConfiguredServerURL replaces the server url taken from the config file
func (o *RootOpts) SetConfiguredServerURL(u string) {
	o.serverURL.Store(&u)
}

// ConfiguredServerURL is the server url used when the session has none
func (o *RootOpts) ConfiguredServerURL() string {
	if p := o.serverURL.Load(); p != nil {
		return *p
	}
	if o.Config != nil {
		return o.Config.ServerURL
	}
	return ""
}

// ServerURL resolves the url the client talks to right now
func (o *RootOpts) ServerURL(ctx context.Context) string {
	if o.Store == nil {
		return o.ConfiguredServerURL()
	}
	return session.ServerURL(o.Store, o.ConfiguredServerURL)(ctx)
}

// Close releases the session store
func (o *RootOpts) Close() error {
	if o.Store == nil {
		return nil
	}
	return o.Store.Close()
}
