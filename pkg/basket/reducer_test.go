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
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var cmpItems = cmp.AllowUnexported(Stock{})

func fixture() Items {
	return Items{
		{ID: "1", Name: "Arroz", UnitOfMeasure: UnitMass, Stock: StockOf("10"), Quantity: ""},
		{ID: "2", Name: "Leche", UnitOfMeasure: UnitVolume, Stock: StockOf("4.5"), Quantity: "2"},
		{ID: "3", Name: "Cinta", UnitOfMeasure: UnitDistance, Quantity: "1"},
	}
}

func TestValidQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", true},
		{"0", true},
		{"12", true},
		{"12.", true},
		{"12,5", true},
		{"12.55", true},
		{".5", true},
		{",", true},
		{"12.555", false},
		{"12.5x", false},
		{"-1", false},
		{"1.2.3", false},
		{" 1", false},
		{"1e3", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			assert.Equal(t, tt.want, ValidQuantity(tt.raw), "validating %q", tt.raw)
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("sets_quantity_verbatim", func(t *testing.T) {
		items := fixture()
		got := Apply(items, "2", "12.")

		require.Len(t, got, 3)
		assert.Equal(t, Quantity("12."), got[1].Quantity, "quantity should be kept as typed")
		assert.Equal(t, Quantity("2"), items[1].Quantity, "input list should be untouched")
	})

	t.Run("invalid_input_is_identity", func(t *testing.T) {
		items := Apply(fixture(), "1", "15")
		got := Apply(items, "1", "12.5x")

		require.Len(t, got, len(items))
		assert.Same(t, &items[0], &got[0], "invalid input should return the same list")
		assert.Equal(t, Quantity("15"), got[0].Quantity)
	})

	t.Run("unknown_id_is_identity", func(t *testing.T) {
		items := fixture()
		got, changed := TryApply(items, "404", "3")

		assert.False(t, changed, "unknown id should not change the list")
		assert.Same(t, &items[0], &got[0])
	})

	t.Run("new_list_on_change", func(t *testing.T) {
		items := fixture()
		got, changed := TryApply(items, "1", "1")

		assert.True(t, changed)
		assert.NotSame(t, &items[0], &got[0], "a change should allocate a new list")
	})
}

func TestApplyProperties(t *testing.T) {
	t.Run("invalid_raw_is_identity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			items := fixture()
			raw := rapid.String().Filter(func(s string) bool { return !ValidQuantity(s) }).Draw(t, "raw")
			id := ID(rapid.SampledFrom([]string{"1", "2", "3", "9"}).Draw(t, "id"))

			got := Apply(items, id, raw)
			if len(got) != len(items) || &got[0] != &items[0] {
				t.Fatalf("apply(%q, %q) did not return the input list", id, raw)
			}
			if diff := cmp.Diff(fixture(), got, cmpItems); diff != "" {
				t.Fatalf("list changed (-want +got):\n%s", diff)
			}
		})
	})

	t.Run("valid_raw_replaces_one_field", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			items := fixture()
			raw := rapid.StringMatching(`^\d*[.,]?\d{0,2}$`).Draw(t, "raw")
			idx := rapid.IntRange(0, len(items)-1).Draw(t, "idx")

			got := Apply(items, items[idx].ID, raw)

			want := fixture()
			want[idx].Quantity = Quantity(raw)
			if diff := cmp.Diff(want, got, cmpItems); diff != "" {
				t.Fatalf("unexpected list (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(fixture(), items, cmpItems); diff != "" {
				t.Fatalf("input mutated (-want +got):\n%s", diff)
			}
		})
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"", "0", false},
		{"15", "15", true},
		{"12.", "12", true},
		{"12,5", "12.5", true},
		{".5", "0.5", true},
		{"4.50", "4.5", true},
		{"abc", "0", false},
		{"12.5x", "0", false},
		{"-", "0", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			got, ok := ParseAmount(tt.raw)
			assert.Equal(t, tt.ok, ok, "parse ok for %q", tt.raw)
			assert.Equal(t, tt.want, got.String(), "parsed value for %q", tt.raw)
		})
	}
}
