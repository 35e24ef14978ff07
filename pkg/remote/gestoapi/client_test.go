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

package gestoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/remote/gestoapi"
	"github.com/walteh/gesto/pkg/remote/remotetest"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func newClient(t *testing.T, srv *remotetest.Server, creds *remote.Credentials) *gestoapi.Client {
	c, err := gestoapi.New(gestoapi.Options{
		BaseURL:     gestoapi.StaticBaseURL(srv.BaseURL() + "/"),
		Timeout:     2 * time.Second,
		Credentials: creds,
	})
	require.NoError(t, err, "creating client")
	return c
}

func TestHealth(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)
	c := newClient(t, srv, nil)

	require.NoError(t, c.Health(ctx))

	srv.SetHealthy(false)
	err := c.Health(ctx)
	assert.True(t, remote.IsStatus(err, http.StatusServiceUnavailable), "got %v", err)
}

func TestBaseURLResolvedPerCall(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)

	url := ""
	c, err := gestoapi.New(gestoapi.Options{BaseURL: func(context.Context) string { return url }})
	require.NoError(t, err)

	assert.Error(t, c.Health(ctx), "no url configured")
	url = srv.BaseURL()
	assert.NoError(t, c.Health(ctx))
}

func TestSavedProducts(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)
	c := newClient(t, srv, nil)

	srv.SetBasket(remote.ContextCheckout, "7", basket.Items{
		{ID: "1", Name: "Arroz", UnitOfMeasure: basket.UnitMass, Stock: basket.StockOf("10"), Quantity: "2"},
	})

	items, err := c.SavedProducts(ctx, remote.ContextCheckout, "7")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, basket.Quantity("2"), items[0].Quantity)
	assert.Equal(t, "10", items[0].Stock.Text())

	_, err = c.SavedProducts(ctx, remote.ContextCheckout, "404")
	assert.ErrorIs(t, err, remote.ErrAreaGone, "unknown area")

	srv.SetBasket(remote.ContextRequest, "7", nil)
	_, err = c.SavedProducts(ctx, remote.ContextRequest, "7")
	assert.ErrorIs(t, err, remote.ErrAreaGone, "null body")
}

func TestSyncAndCommit(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)
	c := newClient(t, srv, nil)

	items := basket.Items{{ID: "1", Stock: basket.StockOf("10"), Quantity: "3"}}
	srv.SetBasket(remote.ContextRequest, "7", items)

	require.NoError(t, c.Sync(ctx, remote.ContextRequest, remote.SyncRequest{Products: items, UserID: "u1", AreaID: "7"}))
	syncs := srv.Syncs()
	require.Len(t, syncs, 1)
	assert.Equal(t, remote.ContextRequest, syncs[0].Context)
	assert.Equal(t, "u1", syncs[0].Body.UserID)
	assert.Equal(t, basket.Quantity("3"), syncs[0].Body.Products[0].Quantity)

	require.NoError(t, c.SendToWarehouse(ctx, "7"))
	saved, err := c.SavedProducts(ctx, remote.ContextRequest, "7")
	require.NoError(t, err)
	assert.True(t, saved.AnyReported())

	require.NoError(t, c.MakeMovement(ctx, "7", items))
	moved, ok := srv.Moved("7")
	require.True(t, ok)
	assert.Equal(t, basket.Quantity("3"), moved[0].Quantity)

	srv.Fail(remotetest.RouteMove, http.StatusInternalServerError)
	err = c.MakeMovement(ctx, "7", items)
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestMovements(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)
	c := newClient(t, srv, nil)

	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	srv.SetMovements(
		remote.Movement{ID: "1", ItemName: "Harina", Quantity: "2", MovementTypeDenomination: "Entrada", MovementDate: day},
		remote.Movement{ID: "2", ItemName: "Sal", Quantity: "1", MovementTypeDenomination: "Salida", MovementDate: day.AddDate(0, 0, -40)},
	)

	got, err := c.ListMovements(ctx, remote.MovementFilter{From: day.AddDate(0, 0, -30), To: day, AreaID: "9"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, remote.MovementIn, got[0].Kind())

	q := srv.LastMovementQuery()
	assert.Equal(t, "2025-02-08", q.Get("startDate"))
	assert.Equal(t, "2025-03-10", q.Get("endDate"))
	assert.Equal(t, "9", q.Get("areaId"))

	require.NoError(t, c.DeleteMovement(ctx, "1"))
	assert.Len(t, srv.Movements(), 1)

	err = c.DeleteMovement(ctx, "1")
	assert.True(t, remote.IsStatus(err, http.StatusNotFound))
}

func TestCatalogWithLogin(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)
	creds := remote.Credentials{Username: "bodega", Password: "secret"}
	srv.RequireLogin(creds, "tok-1")
	srv.SetCatalog(remote.CatalogItem{ID: "1", Name: "Arroz"}, remote.CatalogItem{ID: "2", Name: "Sal"})
	srv.SetAssigned("7", "2")

	t.Run("without_credentials", func(t *testing.T) {
		c := newClient(t, srv, nil)
		_, err := c.InventoryItems(ctx)
		assert.True(t, remote.IsStatus(err, http.StatusUnauthorized))
	})

	t.Run("logs_in_once", func(t *testing.T) {
		c := newClient(t, srv, &creds)
		before := srv.Calls(remotetest.RouteLogin)

		all, err := c.InventoryItems(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		assigned, err := c.AreaItems(ctx, "7")
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		assert.Equal(t, basket.ID("2"), assigned[0].ID)

		assert.Equal(t, before+1, srv.Calls(remotetest.RouteLogin), "token should be reused")

		require.NoError(t, c.AssignItems(ctx, remote.AssignRequest{AreaID: "7", ItemIDs: []basket.ID{"1", "2"}}))
		assert.Equal(t, []basket.ID{"1", "2"}, srv.Assigned("7"))
	})

	t.Run("relogin_after_rotation", func(t *testing.T) {
		c := newClient(t, srv, &creds)
		_, err := c.InventoryItems(ctx)
		require.NoError(t, err)

		srv.RotateToken("tok-2")
		before := srv.Calls(remotetest.RouteLogin)
		_, err = c.InventoryItems(ctx)
		require.NoError(t, err, "client should log in again after a 401")
		assert.Equal(t, before+1, srv.Calls(remotetest.RouteLogin))
	})

	t.Run("bad_credentials", func(t *testing.T) {
		c := newClient(t, srv, &remote.Credentials{Username: "x"})
		_, err := c.InventoryItems(ctx)
		assert.Error(t, err)
	})
}

func TestDecodeError(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)
	c := newClient(t, srv, nil)

	srv.SetBasket(remote.ContextCheckout, "1", basket.Items{{ID: "a"}, {ID: "a"}})
	_, err := c.SavedProducts(ctx, remote.ContextCheckout, "1")

	var derr *remote.DecodeError
	require.True(t, errors.As(err, &derr), "duplicate ids should fail decoding, got %v", err)
}

func TestTimeout(t *testing.T) {
	ctx := setupTestLogger(t)
	srv := remotetest.New(t)
	srv.SetLatency(200 * time.Millisecond)

	c, err := gestoapi.New(gestoapi.Options{
		BaseURL: gestoapi.StaticBaseURL(srv.BaseURL()),
		Timeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, c.Health(ctx), context.DeadlineExceeded)
}
