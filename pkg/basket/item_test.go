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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItems(t *testing.T) {
	t.Run("mixed_scalar_types", func(t *testing.T) {
		data := []byte(`[
			{"id": 7, "name": "Azúcar", "unitOfMeasureId": "mass", "stock": 12.5, "quantity": 3},
			{"id": "b", "name": "Agua", "unitOfMeasureId": "volume", "netContent": "500", "netContentUnitOfMeasureId": "volume", "stock": "4", "quantity": null, "reported": true},
			{"id": "c", "name": "Hilo", "unitOfMeasureId": "distance"}
		]`)

		items, err := DecodeItems(data)
		require.NoError(t, err, "decoding items")
		require.Len(t, items, 3)

		assert.Equal(t, ID("7"), items[0].ID)
		assert.Equal(t, "12.5", items[0].Stock.Text())
		assert.Equal(t, Quantity("3"), items[0].Quantity)
		assert.Equal(t, Quantity(""), items[1].Quantity)
		assert.Equal(t, Quantity("500"), items[1].NetContent)
		assert.True(t, items.AnyReported())

		_, known := items[2].Stock.Decimal()
		assert.False(t, known, "missing stock should be unknown")
	})

	t.Run("duplicate_ids", func(t *testing.T) {
		_, err := DecodeItems([]byte(`[{"id":"1"},{"id":1}]`))
		assert.Error(t, err, "duplicate ids should be rejected")
	})

	t.Run("bad_scalar", func(t *testing.T) {
		for _, data := range []string{
			`[{"id":"1","stock":{"v":1}}]`,
			`[{"id":"1","quantity":true}]`,
			`[{"id":[1]}]`,
		} {
			_, err := DecodeItems([]byte(data))
			assert.Error(t, err, "decoding %s", data)
		}
	})
}

func TestStockRoundTrip(t *testing.T) {
	items, err := DecodeItems([]byte(`[{"id":"1","stock":10},{"id":"2","stock":"10"},{"id":"3"}]`))
	require.NoError(t, err)

	out, err := json.Marshal(items)
	require.NoError(t, err)

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, `10`, string(raw[0]["stock"]), "numeric stock should go back as a number")
	assert.Equal(t, `"10"`, string(raw[1]["stock"]), "string stock should go back as a string")
	assert.Equal(t, `null`, string(raw[2]["stock"]))
}

func TestUnitAbbrev(t *testing.T) {
	assert.Equal(t, "g", UnitMass.Abbrev())
	assert.Equal(t, "u", UnitUnits.Abbrev())
	assert.Equal(t, "mL", UnitVolume.Abbrev())
	assert.Equal(t, "cm", UnitDistance.Abbrev())
	assert.Equal(t, "box", Unit("box").Abbrev())
	assert.Equal(t, "Arroz (g)", LineItem{Name: "Arroz", UnitOfMeasure: UnitMass}.Label())
}

func TestMarks(t *testing.T) {
	var m Marks
	assert.False(t, m.Has("1"))
	assert.True(t, m.Toggle("2"))
	assert.True(t, m.Toggle("1"))
	assert.Equal(t, []ID{"1", "2"}, m.IDs())
	assert.False(t, m.Toggle("2"))
	assert.Equal(t, 1, m.Len())

	m.Retain(Items{{ID: "3"}})
	assert.Equal(t, 0, m.Len(), "marks for missing items should be dropped")

	m.Toggle("3")
	m.Clear()
	assert.False(t, m.Has("3"))
}

func TestFilter(t *testing.T) {
	items := Items{
		{ID: "1", Name: "Azúcar blanca"},
		{ID: "2", Name: "Café molido"},
		{ID: "3", Name: "Azucarera"},
	}

	assert.Len(t, Filter(items, ""), 3)
	assert.Equal(t, Items{items[0], items[2]}, Filter(items, "azucar"))
	assert.Equal(t, Items{items[1]}, Filter(items, "CAFE"))
	assert.Equal(t, Items{items[0]}, Filter(items, "az*blanca"))
	assert.Empty(t, Filter(items, "té"))
}

func TestSortPositiveFirst(t *testing.T) {
	items := Items{
		{ID: "a", Quantity: ""},
		{ID: "b", Quantity: "2"},
		{ID: "c", Quantity: "0"},
		{ID: "d", Quantity: "1,5"},
	}

	got := SortPositiveFirst(items)
	ids := make([]ID, 0, len(got))
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []ID{"b", "d", "a", "c"}, ids)
	assert.Equal(t, ID("a"), items[0].ID, "input order should be kept")
}
