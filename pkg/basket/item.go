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

package basket

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/tozd/go/errors"
)

var null = []byte("null")

// 🏷️ ID identifies a line item. The API sends ids as strings or numbers,
// both decode to their literal text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	lit, err := scalarLiteral(data)
	if err != nil {
		return errors.Errorf("decoding id: %w", err)
	}
	*id = ID(lit)
	return nil
}

// 📏 Unit is the unit-of-measure code sent by the API
type Unit string

const (
	UnitMass     Unit = "mass"
	UnitUnits    Unit = "units"
	UnitVolume   Unit = "volume"
	UnitDistance Unit = "distance"
)

var unitAbbrev = map[Unit]string{
	UnitMass:     "g",
	UnitUnits:    "u",
	UnitVolume:   "mL",
	UnitDistance: "cm",
}

// Abbrev returns the display abbreviation, or the raw code when unknown
func (u Unit) Abbrev() string {
	if a, ok := unitAbbrev[u]; ok {
		return a
	}
	return string(u)
}

// ✏️ Quantity is the user-entered dispatch amount. It is kept as text so a
// trailing separator ("12.") survives while typing.
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	lit, err := scalarLiteral(data)
	if err != nil {
		return errors.Errorf("decoding quantity: %w", err)
	}
	*q = Quantity(lit)
	return nil
}

// Decimal parses the quantity; empty or malformed text yields (0, false)
func (q Quantity) Decimal() (decimal.Decimal, bool) {
	return ParseAmount(string(q))
}

// 📦 Stock is the warehouse quantity supplied by the server. The raw JSON is
// kept so the value goes back to the server exactly as it came.
type Stock struct {
	raw json.RawMessage
}

// StockOf builds a stock value as the API would send it in a JSON string
func StockOf(v string) Stock {
	raw, _ := json.Marshal(v)
	return Stock{raw: raw}
}

// StockNumber builds a numeric stock value
func StockNumber(d decimal.Decimal) Stock {
	return Stock{raw: json.RawMessage(d.String())}
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	if _, err := scalarLiteral(data); err != nil {
		return errors.Errorf("decoding stock: %w", err)
	}
	s.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

func (s Stock) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return null, nil
	}
	return s.raw, nil
}

// Text returns the stock as display text, empty when absent
func (s Stock) Text() string {
	lit, err := scalarLiteral(s.raw)
	if err != nil {
		return ""
	}
	return lit
}

// Decimal parses the stock; absent or malformed values yield (0, false)
func (s Stock) Decimal() (decimal.Decimal, bool) {
	return ParseAmount(s.Text())
}

// 🛒 LineItem is one product's dispatch state within a request
type LineItem struct {
	ID             ID       `json:"id"`
	Name           string   `json:"name"`
	UnitOfMeasure  Unit     `json:"unitOfMeasureId"`
	NetContent     Quantity `json:"netContent,omitempty"`
	NetContentUnit Unit     `json:"netContentUnitOfMeasureId,omitempty"`
	Stock          Stock    `json:"stock"`
	Quantity       Quantity `json:"quantity"`
	Reported       bool     `json:"reported,omitempty"`
}

// Label returns "name (unit)" as shown in lists
func (i LineItem) Label() string {
	if i.UnitOfMeasure == "" {
		return i.Name
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.UnitOfMeasure.Abbrev())
}

// Items is an ordered list of line items owned by one screen
type Items []LineItem

// Find returns the index of the item with the given id, or -1
func (items Items) Find(id ID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// AnyReported reports whether the server flagged any item as reported
func (items Items) AnyReported() bool {
	for _, it := range items {
		if it.Reported {
			return true
		}
	}
	return false
}

// DecodeItems decodes a JSON array of line items, rejecting ids that repeat
func DecodeItems(data []byte) (Items, error) {
	var items Items
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Errorf("decoding line items: %w", err)
	}

	seen := make(map[ID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			return nil, errors.Errorf("decoding line items: duplicate id %q", it.ID)
		}
		seen[it.ID] = struct{}{}
	}

	return items, nil
}

// scalarLiteral returns the text of a JSON string or number; null is empty.
// Objects, arrays and booleans are rejected.
func scalarLiteral(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return "", nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", errors.Errorf("expected string or number, got %s", data)
	}
}
