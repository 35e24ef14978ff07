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

package gestoapi

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/remote"
)

// DateLayout is the date format of the movement filter
const DateLayout = "2006-01-02"

// 🩺 Health probes GET /health; any 2xx is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodGet, path: "/health"})
	return err
}

// 📋 ActiveRequests lists the active requests
func (c *Client) ActiveRequests(ctx context.Context) ([]remote.ActiveRequest, error) {
	const path = "/request/list"
	data, err := c.do(ctx, call{method: http.MethodGet, path: path})
	if err != nil {
		return nil, errors.Errorf("listing active requests: %w", err)
	}
	return decode[[]remote.ActiveRequest](path, data)
}

// 🛒 SavedProducts returns the line items of an area. A 404 or an empty body
// means the area is gone.
func (c *Client) SavedProducts(ctx context.Context, bc remote.BasketContext, areaID string) (basket.Items, error) {
	path := "/request/products/saved/" + url.PathEscape(string(bc)) + "/" + url.PathEscape(areaID)

	data, err := c.do(ctx, call{method: http.MethodGet, path: path})
	if remote.IsStatus(err, http.StatusNotFound) {
		return nil, errors.Errorf("loading %s items of area %s: %w", bc, areaID, remote.ErrAreaGone)
	}
	if err != nil {
		return nil, errors.Errorf("loading %s items of area %s: %w", bc, areaID, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.Errorf("loading %s items of area %s: %w", bc, areaID, remote.ErrAreaGone)
	}

	items, err := basket.DecodeItems(trimmed)
	if err != nil {
		return nil, &remote.DecodeError{Path: path, Err: err}
	}
	return items, nil
}

// 🔄 Sync pushes the full list of a basket
func (c *Client) Sync(ctx context.Context, bc remote.BasketContext, req remote.SyncRequest) error {
	if req.Products == nil {
		req.Products = basket.Items{}
	}
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/request/sync/" + url.PathEscape(string(bc)), body: req})
	if err != nil {
		return errors.Errorf("syncing %s items: %w", bc, err)
	}
	return nil
}

// 📨 SendToWarehouse marks the request of an area as reported
func (c *Client) SendToWarehouse(ctx context.Context, areaID string) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/request/send-to-warehouse/" + url.PathEscape(areaID)})
	if err != nil {
		return errors.Errorf("sending request of area %s: %w", areaID, err)
	}
	return nil
}

// 🚚 MakeMovement commits the stock movement of an area
func (c *Client) MakeMovement(ctx context.Context, areaID string, items basket.Items) error {
	if items == nil {
		items = basket.Items{}
	}
	body := remote.MovementRequest{Products: items}
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/request/make-movement/" + url.PathEscape(areaID), body: body})
	if err != nil {
		return errors.Errorf("moving items to area %s: %w", areaID, err)
	}
	zerolog.Ctx(ctx).Info().Str("area", areaID).Int("items", len(items)).Msg("movement committed")
	return nil
}

// InventoryItems returns the full catalog
func (c *Client) InventoryItems(ctx context.Context) ([]remote.CatalogItem, error) {
	const path = "/inventory-items"
	data, err := c.do(ctx, call{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, errors.Errorf("loading catalog: %w", err)
	}
	return decode[[]remote.CatalogItem](path, data)
}

// AreaItems returns the items assigned to an area
func (c *Client) AreaItems(ctx context.Context, areaID string) ([]remote.CatalogItem, error) {
	path := "/areas-items/items/" + url.PathEscape(areaID)
	data, err := c.do(ctx, call{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, errors.Errorf("loading items of area %s: %w", areaID, err)
	}
	return decode[[]remote.CatalogItem](path, data)
}

// AssignItems replaces the items assigned to an area
func (c *Client) AssignItems(ctx context.Context, req remote.AssignRequest) error {
	if req.ItemIDs == nil {
		req.ItemIDs = []basket.ID{}
	}
	_, err := c.do(ctx, call{method: http.MethodPut, path: "/areas-items/items", body: req, auth: true})
	if err != nil {
		return errors.Errorf("assigning items to area %s: %w", req.AreaID, err)
	}
	return nil
}

// 📜 ListMovements returns the movement history
func (c *Client) ListMovements(ctx context.Context, f remote.MovementFilter) ([]remote.Movement, error) {
	const path = "/inventory-movements"

	q := url.Values{}
	if !f.From.IsZero() {
		q.Set("startDate", f.From.Format(DateLayout))
	}
	if !f.To.IsZero() {
		q.Set("endDate", f.To.Format(DateLayout))
	}
	if f.AreaID != "" {
		q.Set("areaId", f.AreaID)
	}

	data, err := c.do(ctx, call{method: http.MethodGet, path: path, query: q, auth: true})
	if err != nil {
		return nil, errors.Errorf("listing movements: %w", err)
	}
	return decode[[]remote.Movement](path, data)
}

// DeleteMovement undoes a movement
func (c *Client) DeleteMovement(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/inventory-movements/" + url.PathEscape(id), auth: true})
	if err != nil {
		return errors.Errorf("undoing movement %s: %w", id, err)
	}
	return nil
}

// 🔑 Login opens a session and returns its token
func (c *Client) Login(ctx context.Context, creds remote.Credentials) (remote.LoginResponse, error) {
	const path = "/login"
	data, err := c.send(ctx, call{method: http.MethodPost, path: path, body: creds})
	if err != nil {
		return remote.LoginResponse{}, errors.Errorf("logging in as %s: %w", creds.Username, err)
	}

	resp, err := decode[remote.LoginResponse](path, data)
	if err != nil {
		return remote.LoginResponse{}, err
	}
	if resp.BearerToken() == "" {
		return remote.LoginResponse{}, &remote.DecodeError{Path: path, Err: errors.New("no token in login response")}
	}
	return resp, nil
}
