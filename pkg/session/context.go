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
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNoArea is returned when a screen needs an area and none is selected
var ErrNoArea = errors.Base("no area selected")

// 📍 RequestContext is the area a screen works on
type RequestContext struct {
	AreaID   string
	AreaName string
	// RequestID marks a request that still awaits its movement
	RequestID string
}

// 🧭 Context loads and saves the RequestContext through a Store. Screens get
// one at construction instead of reading keys on their own.
type Context struct {
	store Store
}

func New(store Store) *Context {
	return &Context{store: store}
}

// Store returns the underlying store
func (c *Context) Store() Store { return c.store }

// Load reads the stored context. A missing area is not an error here.
func (c *Context) Load(ctx context.Context) (RequestContext, error) {
	var rc RequestContext
	for key, dst := range map[string]*string{
		KeyArea:      &rc.AreaID,
		KeyAreaName:  &rc.AreaName,
		KeyRequestID: &rc.RequestID,
	} {
		v, _, err := c.store.Get(ctx, key)
		if err != nil {
			return RequestContext{}, errors.Errorf("loading session context: %w", err)
		}
		*dst = v
	}
	return rc, nil
}

// Require loads the context and fails with ErrNoArea when no area is set
func (c *Context) Require(ctx context.Context) (RequestContext, error) {
	rc, err := c.Load(ctx)
	if err != nil {
		return RequestContext{}, err
	}
	if strings.TrimSpace(rc.AreaID) == "" {
		return RequestContext{}, ErrNoArea
	}
	return rc, nil
}

// Save writes every non-empty field of rc
func (c *Context) Save(ctx context.Context, rc RequestContext) error {
	for key, v := range map[string]string{
		KeyArea:      rc.AreaID,
		KeyAreaName:  rc.AreaName,
		KeyRequestID: rc.RequestID,
	} {
		if v == "" {
			continue
		}
		if err := c.store.Set(ctx, key, v); err != nil {
			return errors.Errorf("saving session context: %w", err)
		}
	}
	return nil
}

// Select makes areaID the current area, dropping the name and any pending
// request marker left from another area. An empty areaName stays empty.
func (c *Context) Select(ctx context.Context, areaID, areaName string) error {
	if strings.TrimSpace(areaID) == "" {
		return errors.New("selecting area: empty id")
	}
	// a previous area's name must not outlive it
	if err := c.store.Remove(ctx, KeyAreaName, KeyRequestID); err != nil {
		return errors.Errorf("selecting area: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("area", areaID).Str("name", areaName).Msg("selected area")
	return c.Save(ctx, RequestContext{AreaID: areaID, AreaName: areaName})
}

// Clear removes the whole context
func (c *Context) Clear(ctx context.Context) error {
	if err := c.store.Remove(ctx, KeyArea, KeyAreaName, KeyRequestID); err != nil {
		return errors.Errorf("clearing session context: %w", err)
	}
	return nil
}

// ClearPending is called after a completed movement
func (c *Context) ClearPending(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Msg("clearing pending request")
	return c.Clear(ctx)
}
