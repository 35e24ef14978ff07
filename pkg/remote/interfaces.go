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

// Package remote describes the gesto API as narrow interfaces with typed
// request and response bodies. Implementations live in subpackages.
package remote

import (
	"context"

	"github.com/walteh/gesto/pkg/basket"
)

// BasketContext selects which saved list and sync endpoint a basket uses
type BasketContext string

const (
	// ContextCheckout is the warehouse dispatch list
	ContextCheckout BasketContext = "checkout"
	// ContextRequest is the area-side request list
	ContextRequest BasketContext = "request"
)

// Prober checks that the server is reachable
type Prober interface {
	Health(ctx context.Context) error
}

// Requests lists active requests
type Requests interface {
	ActiveRequests(ctx context.Context) ([]ActiveRequest, error)
}

// Baskets reads, syncs and commits the line items of one area
type Baskets interface {
	SavedProducts(ctx context.Context, bc BasketContext, areaID string) (basket.Items, error)
	Sync(ctx context.Context, bc BasketContext, req SyncRequest) error
	SendToWarehouse(ctx context.Context, areaID string) error
	MakeMovement(ctx context.Context, areaID string, items basket.Items) error
}

// Catalog reads the catalog and the items assigned to areas
type Catalog interface {
	InventoryItems(ctx context.Context) ([]CatalogItem, error)
	AreaItems(ctx context.Context, areaID string) ([]CatalogItem, error)
	AssignItems(ctx context.Context, req AssignRequest) error
}

// Movements lists and undoes inventory movements
type Movements interface {
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
	DeleteMovement(ctx context.Context, id string) error
}

// Auth opens a session for the privileged endpoints
type Auth interface {
	Login(ctx context.Context, creds Credentials) (LoginResponse, error)
}

// 🌐 API is the whole gesto API
type API interface {
	Prober
	Requests
	Baskets
	Catalog
	Movements
	Auth
}
