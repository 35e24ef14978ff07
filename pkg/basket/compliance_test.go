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
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		item     LineItem
		policy   StockPolicy
		want     StockState
		isExcess bool
	}{
		{"empty_quantity", LineItem{Stock: StockOf("10")}, StockUnknownAsZero, StateNeutral, false},
		{"zero_quantity", LineItem{Stock: StockOf("10"), Quantity: "0"}, StockUnknownAsZero, StateNeutral, false},
		{"within_stock", LineItem{Stock: StockOf("10"), Quantity: "10"}, StockUnknownAsZero, StateCompliant, false},
		{"above_stock", LineItem{Stock: StockOf("10"), Quantity: "10.01"}, StockUnknownAsZero, StateExcess, true},
		{"comma_separator", LineItem{Stock: StockOf("2,5"), Quantity: "2,6"}, StockUnknownAsZero, StateExcess, true},
		{"numeric_stock", LineItem{Stock: StockNumber(decimal.NewFromInt(3)), Quantity: "3"}, StockUnknownAsZero, StateCompliant, false},
		{"missing_stock_as_zero", LineItem{Quantity: "1"}, StockUnknownAsZero, StateExcess, true},
		{"missing_stock_distinct", LineItem{Quantity: "1"}, StockUnknownDistinct, StateUnknownStock, true},
		{"malformed_stock_distinct", LineItem{Stock: StockOf("n/a"), Quantity: "1"}, StockUnknownDistinct, StateUnknownStock, true},
		{"missing_stock_zero_ask", LineItem{Quantity: ""}, StockUnknownDistinct, StateNeutral, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.item, tt.policy), "display state")
			assert.Equal(t, tt.isExcess, Excess(tt.item), "excess flag")
		})
	}
}

func TestEvaluate(t *testing.T) {
	items := fixture()

	c := Evaluate(items, StockUnknownDistinct)
	assert.True(t, c.AnyExcess, "item 3 has no stock and a positive ask")
	assert.Equal(t, StateNeutral, c.State("1"))
	assert.Equal(t, StateCompliant, c.State("2"))
	assert.Equal(t, StateUnknownStock, c.State("3"))
	assert.Equal(t, StateNeutral, c.State("missing"))

	items = Apply(items, "3", "0")
	c = Evaluate(items, StockUnknownDistinct)
	assert.False(t, c.AnyExcess, "no item should be in excess")
	assert.Equal(t, AnyExcess(items), c.AnyExcess)
}

func TestComplianceScenarios(t *testing.T) {
	items := Items{{ID: "1", Stock: StockOf("10"), Quantity: ""}}
	assert.False(t, Excess(items[0]), "empty quantity is never excess")
	assert.False(t, AnyExcess(items))

	items = Apply(items, "1", "15")
	assert.Equal(t, Quantity("15"), items[0].Quantity)
	assert.True(t, Excess(items[0]), "15 > 10")
	assert.True(t, AnyExcess(items))

	same := Apply(items, "1", "12.5x")
	assert.Same(t, &items[0], &same[0], "invalid edit should leave the list alone")
}

func TestAnyExcessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		items := make(Items, n)
		want := false
		for i := range items {
			q := rapid.IntRange(0, 20).Draw(t, "q")
			s := rapid.IntRange(0, 20).Draw(t, "s")
			items[i] = LineItem{
				ID:       ID(decimal.NewFromInt(int64(i)).String()),
				Stock:    StockNumber(decimal.NewFromInt(int64(s))),
				Quantity: Quantity(decimal.NewFromInt(int64(q)).String()),
			}
			want = want || q > s
		}

		if got := AnyExcess(items); got != want {
			t.Fatalf("AnyExcess = %v, want %v", got, want)
		}
	})
}
