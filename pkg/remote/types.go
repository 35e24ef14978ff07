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

package remote

import (
	"time"

	"github.com/walteh/gesto/pkg/basket"
)

// 📋 ActiveRequest is one row of the active request list
type ActiveRequest struct {
	ID           basket.ID `json:"id"`
	AreaName     string    `json:"areaName"`
	AreaID       basket.ID `json:"areaId,omitempty"`
	EmployeeName string    `json:"employeeName"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	HasRequests  bool      `json:"hasRequests"`
}

// Area returns the area id to select for this row; older servers only send
// id.
func (r ActiveRequest) Area() string {
	if r.AreaID != "" {
		return string(r.AreaID)
	}
	return string(r.ID)
}

// SyncRequest is the body of a sync push
type SyncRequest struct {
	Products basket.Items `json:"productos"`
	UserID   string       `json:"userId,omitempty"`
	AreaID   string       `json:"areaId"`
}

// MovementRequest is the body of make-movement
type MovementRequest struct {
	Products basket.Items `json:"productos"`
}

// MovementKind is derived from the movement type denomination
type MovementKind int

const (
	MovementOther MovementKind = iota
	MovementIn
	MovementOut
)

func (k MovementKind) String() string {
	switch k {
	case MovementIn:
		return "in"
	case MovementOut:
		return "out"
	default:
		return "other"
	}
}

// UnitRef is a nested unit description
type UnitRef struct {
	Abbreviation string `json:"abbreviation"`
}

// 📜 Movement is one inventory movement
type Movement struct {
	ID                       basket.ID       `json:"id"`
	ItemName                 string          `json:"itemName"`
	Quantity                 basket.Quantity `json:"quantity"`
	MovementTypeDenomination string          `json:"movementTypeDenomination"`
	OriginLocal              string          `json:"originLocal"`
	OriginArea               string          `json:"originArea"`
	DestinationLocal         string          `json:"destinationLocal"`
	DestinationArea          string          `json:"destinationArea"`
	MovementDate             time.Time       `json:"movementDate"`
	Unit                     *UnitRef        `json:"unit,omitempty"`
}

// Kind classifies the movement as in, out or other
func (m Movement) Kind() MovementKind {
	switch m.MovementTypeDenomination {
	case "Entrada":
		return MovementIn
	case "Salida":
		return MovementOut
	default:
		return MovementOther
	}
}

// MovementFilter narrows the movement history
type MovementFilter struct {
	From   time.Time
	To     time.Time
	AreaID string
}

// CatalogItem is one catalog product
type CatalogItem struct {
	ID                  basket.ID       `json:"id"`
	Name                string          `json:"name"`
	NetContent          basket.Quantity `json:"netContent,omitempty"`
	NetContentUnitLabel string          `json:"netContentUnitLabel,omitempty"`
}

// AssignRequest replaces the items assigned to an area
type AssignRequest struct {
	AreaID  string      `json:"areaId"`
	ItemIDs []basket.ID `json:"itemsId"`
}

// Credentials are posted to /login
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token. Servers use either field name.
type LoginResponse struct {
	Token       string `json:"token,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// BearerToken returns whichever token field is set
func (r LoginResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}
