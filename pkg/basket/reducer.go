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
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// quantityPattern accepts digits, one optional '.' or ',' and at most two
// fractional digits. The empty string is accepted (clears the field).
var quantityPattern = regexp.MustCompile(`^\d*[.,]?\d{0,2}$`)

// ValidQuantity reports whether raw is acceptable quantity input
func ValidQuantity(raw string) bool {
	return quantityPattern.MatchString(raw)
}

// ✏️ Apply sets the quantity of the item with the given id to raw, verbatim.
//
// Invalid input, or an id that is not in the list, returns items itself.
// Otherwise a new list is returned; the input list is never modified.
func Apply(items Items, id ID, raw string) Items {
	next, _ := TryApply(items, id, raw)
	return next
}

// TryApply is Apply that also reports whether the list changed
func TryApply(items Items, id ID, raw string) (Items, bool) {
	if !ValidQuantity(raw) {
		return items, false
	}

	idx := items.Find(id)
	if idx < 0 {
		return items, false
	}

	next := make(Items, len(items))
	copy(next, items)
	next[idx].Quantity = Quantity(raw)

	return next, true
}

// 🔢 ParseAmount parses quantity or stock text as a decimal. Both '.' and ','
// are decimal separators and a dangling separator is ignored ("12." is 12).
// Empty or malformed text returns (0, false).
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}
