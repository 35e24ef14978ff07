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
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/session"
	"github.com/walteh/gesto/pkg/text"
)

// 🗂️ Assign is the controller that picks which catalog items an area can
// request
type Assign struct {
	api     remote.Catalog
	session *session.Context

	mu       sync.Mutex
	area     session.RequestContext
	catalog  []remote.CatalogItem
	selected basket.Marks
}

func NewAssign(api remote.Catalog, sc *session.Context) *Assign {
	return &Assign{api: api, session: sc}
}

// 📥 Load fetches the catalog and the area's current items in parallel.
// Assigned items are listed first, keeping catalog order otherwise. The
// order is fixed here and does not follow later toggles.
func (a *Assign) Load(ctx context.Context) error {
	rc, err := a.session.Require(ctx)
	if errors.Is(err, session.ErrNoArea) {
		return errors.Errorf("%w: %s", ErrSessionReset, err.Error())
	}
	if err != nil {
		return err
	}

	var catalog, assigned []remote.CatalogItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = a.api.InventoryItems(gctx)
		if err != nil {
			return errors.Errorf("loading catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assigned, err = a.api.AreaItems(gctx, rc.AreaID)
		if err != nil {
			return errors.Errorf("loading area items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("area", rc.AreaID).Msg("assign screen load failed")
		return err
	}

	var sel basket.Marks
	for _, it := range assigned {
		if !sel.Has(it.ID) {
			sel.Toggle(it.ID)
		}
	}

	sorted := slices.Clone(catalog)
	slices.SortStableFunc(sorted, func(x, y remote.CatalogItem) int {
		xs, ys := sel.Has(x.ID), sel.Has(y.ID)
		switch {
		case xs == ys:
			return 0
		case xs:
			return -1
		default:
			return 1
		}
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	a.area = rc
	a.catalog = sorted
	a.selected = sel
	return nil
}

// Toggle flips the selection of a catalog item and returns the new state
func (a *Assign) Toggle(id basket.ID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !slices.ContainsFunc(a.catalog, func(c remote.CatalogItem) bool { return c.ID == id }) {
		return false
	}
	return a.selected.Toggle(id)
}

// Selected reports whether id is selected
func (a *Assign) Selected(id basket.ID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected.Has(id)
}

// Filter returns the catalog items whose name matches query, in load order
func (a *Assign) Filter(query string) []remote.CatalogItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]remote.CatalogItem, 0, len(a.catalog))
	for _, c := range a.catalog {
		if text.Match(c.Name, query) {
			out = append(out, c)
		}
	}
	return out
}

// Area returns the area loaded by Load
func (a *Assign) Area() session.RequestContext {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.area
}

// 💾 Submit replaces the area's assignment with the current selection
func (a *Assign) Submit(ctx context.Context) error {
	a.mu.Lock()
	if a.area.AreaID == "" {
		a.mu.Unlock()
		return ErrNotLoaded
	}
	req := remote.AssignRequest{AreaID: a.area.AreaID, ItemIDs: []basket.ID{}}
	for _, c := range a.catalog {
		if a.selected.Has(c.ID) {
			req.ItemIDs = append(req.ItemIDs, c.ID)
		}
	}
	a.mu.Unlock()

	if err := a.api.AssignItems(ctx, req); err != nil {
		return errors.Errorf("assigning items to %s: %w", req.AreaID, err)
	}
	zerolog.Ctx(ctx).Info().Str("area", req.AreaID).Int("items", len(req.ItemIDs)).Msg("area items assigned")
	return nil
}
