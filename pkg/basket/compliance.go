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

import "github.com/shopspring/decimal"

// 📊 StockState is the display state of one line item
type StockState int

const (
	StateNeutral      StockState = iota // quantity is zero or empty
	StateCompliant                      // positive quantity within stock
	StateExcess                         // quantity above stock
	StateUnknownStock                   // positive quantity, stock absent or malformed
)

func (s StockState) String() string {
	switch s {
	case StateNeutral:
		return "neutral"
	case StateCompliant:
		return "ok"
	case StateExcess:
		return "excess"
	case StateUnknownStock:
		return "unknown stock"
	default:
		return "unknown"
	}
}

// 🎛️ StockPolicy selects how a missing stock value is displayed. The gate
// always treats missing stock as zero, whatever the policy.
type StockPolicy int

const (
	// StockUnknownAsZero shows a missing stock like a stock of zero
	StockUnknownAsZero StockPolicy = iota
	// StockUnknownDistinct shows a positive ask against missing stock as its own state
	StockUnknownDistinct
)

func amounts(item LineItem) (q, s decimal.Decimal, stockKnown bool) {
	q, _ = item.Quantity.Decimal()
	s, stockKnown = item.Stock.Decimal()
	return q, s, stockKnown
}

// ⚠️ Excess reports whether the quantity is above the stock, treating
// unparseable values as zero.
func Excess(item LineItem) bool {
	q, s, _ := amounts(item)
	return q.GreaterThan(s)
}

// AnyExcess reports whether any item is in excess
func AnyExcess(items Items) bool {
	for _, it := range items {
		if Excess(it) {
			return true
		}
	}
	return false
}

// Classify returns the display state of an item under the given policy
func Classify(item LineItem, policy StockPolicy) StockState {
	q, s, known := amounts(item)

	if q.Sign() <= 0 {
		return StateNeutral
	}
	if !known && policy == StockUnknownDistinct {
		return StateUnknownStock
	}
	if q.GreaterThan(s) {
		return StateExcess
	}
	return StateCompliant
}

// ItemCompliance is the evaluated state of one item
type ItemCompliance struct {
	ID     ID
	Excess bool
	State  StockState
}

// ✅ Compliance is the evaluation of a whole list. AnyExcess is the only
// input the commit gate takes from it.
type Compliance struct {
	Items     []ItemCompliance
	AnyExcess bool
}

// Evaluate recomputes compliance for every item in the list
func Evaluate(items Items, policy StockPolicy) Compliance {
	c := Compliance{Items: make([]ItemCompliance, 0, len(items))}
	for _, it := range items {
		ex := Excess(it)
		c.Items = append(c.Items, ItemCompliance{
			ID:     it.ID,
			Excess: ex,
			State:  Classify(it, policy),
		})
		c.AnyExcess = c.AnyExcess || ex
	}
	return c
}

// State returns the state for id, neutral when id is unknown
func (c Compliance) State(id ID) StockState {
	for _, ic := range c.Items {
		if ic.ID == id {
			return ic.State
		}
	}
	return StateNeutral
}
