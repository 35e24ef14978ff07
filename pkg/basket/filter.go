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
	"sort"

	"github.com/walteh/gesto/pkg/text"
)

// 🔍 Filter returns the items whose name matches query. The result is a view
// for display; edits are always applied to the unfiltered list.
func Filter(items Items, query string) Items {
	if query == "" {
		return items
	}
	out := make(Items, 0, len(items))
	for _, it := range items {
		if text.Match(it.Name, query) {
			out = append(out, it)
		}
	}
	return out
}

// SortPositiveFirst returns a copy of items with positive quantities first,
// keeping the relative order within each group.
func SortPositiveFirst(items Items) Items {
	out := make(Items, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return positive(out[i]) && !positive(out[j])
	})
	return out
}

func positive(it LineItem) bool {
	q, _ := it.Quantity.Decimal()
	return q.Sign() > 0
}
