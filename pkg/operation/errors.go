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
	"gitlab.com/tozd/go/errors"
)

// ErrSessionReset means the stored area was missing or rejected by the
// server; the session was cleared and the user must pick an area again.
var ErrSessionReset = errors.Base("session reset")

// ErrNotLoaded is returned by actions that need a loaded screen
var ErrNotLoaded = errors.Base("screen not loaded")

// ErrUnsupported is returned by actions the workflow does not offer
var ErrUnsupported = errors.Base("action not available in this workflow")
