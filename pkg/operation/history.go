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
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/text"
)

// DefaultHistoryWindow is how far back the history looks by default
const DefaultHistoryWindow = 30 * 24 * time.Hour

// HistoryOptions configures the movement history screen
type HistoryOptions struct {
	// Window is used when a filter has no start date
	Window time.Duration
	// Now is the clock, time.Now when nil
	Now func() time.Time
}

// 📜 History is the controller behind the movement list
type History struct {
	api  remote.Movements
	opts HistoryOptions

	mu        sync.Mutex
	filter    remote.MovementFilter
	movements []remote.Movement
}

func NewHistory(api remote.Movements, opts HistoryOptions) *History {
	if opts.Window <= 0 {
		opts.Window = DefaultHistoryWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &History{api: api, opts: opts}
}

// 📥 Load fetches the movements for filter. Missing dates default to the
// window ending today. On failure the list is emptied.
func (h *History) Load(ctx context.Context, filter remote.MovementFilter) ([]remote.Movement, error) {
	now := h.opts.Now()
	if filter.To.IsZero() {
		filter.To = now
	}
	if filter.From.IsZero() {
		filter.From = filter.To.Add(-h.opts.Window)
	}
	if filter.From.After(filter.To) {
		return nil, errors.Errorf("history range starts after it ends: %s > %s",
			filter.From.Format(time.DateOnly), filter.To.Format(time.DateOnly))
	}

	ms, err := h.api.ListMovements(ctx, filter)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.filter = filter
	if err != nil {
		h.movements = []remote.Movement{}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("listing movements")
		return h.movements, errors.Errorf("listing movements: %w", err)
	}
	if ms == nil {
		ms = []remote.Movement{}
	}
	h.movements = ms
	return ms, nil
}

// 🔍 Search returns the loaded movements whose item name matches query or
// whose quantity contains it
func (h *History) Search(query string) []remote.Movement {
	h.mu.Lock()
	defer h.mu.Unlock()

	q := strings.TrimSpace(query)
	out := make([]remote.Movement, 0, len(h.movements))
	for _, m := range h.movements {
		if text.Match(m.ItemName, q) || strings.Contains(string(m.Quantity), q) {
			out = append(out, m)
		}
	}
	return out
}

// Find returns a loaded movement by id
func (h *History) Find(id basket.ID) (remote.Movement, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range h.movements {
		if m.ID == id {
			return m, true
		}
	}
	return remote.Movement{}, false
}

// ↩️ Undo deletes a movement and reloads the list with the last filter
func (h *History) Undo(ctx context.Context, id basket.ID) ([]remote.Movement, error) {
	if err := h.api.DeleteMovement(ctx, string(id)); err != nil {
		return nil, errors.Errorf("undoing movement %s: %w", id, err)
	}
	zerolog.Ctx(ctx).Info().Str("movement", string(id)).Msg("movement undone")

	h.mu.Lock()
	filter := h.filter
	h.mu.Unlock()

	return h.Load(ctx, filter)
}
