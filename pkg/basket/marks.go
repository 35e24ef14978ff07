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

import "sort"

// 🔖 Marks is a client-only set of tagged line items. It never reaches the
// server and never affects compliance or the gate.
type Marks struct {
	set map[ID]struct{}
}

// Toggle flips the mark on id and returns the new state
func (m *Marks) Toggle(id ID) bool {
	if m.set == nil {
		m.set = make(map[ID]struct{})
	}
	if _, ok := m.set[id]; ok {
		delete(m.set, id)
		return false
	}
	m.set[id] = struct{}{}
	return true
}

func (m *Marks) Has(id ID) bool {
	_, ok := m.set[id]
	return ok
}

func (m *Marks) Len() int {
	return len(m.set)
}

// IDs returns the marked ids in sorted order
func (m *Marks) IDs() []ID {
	ids := make([]ID, 0, len(m.set))
	for id := range m.set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *Marks) Clear() {
	m.set = nil
}

// Retain drops marks for ids no longer present in items
func (m *Marks) Retain(items Items) {
	for id := range m.set {
		if items.Find(id) < 0 {
			delete(m.set, id)
		}
	}
}
