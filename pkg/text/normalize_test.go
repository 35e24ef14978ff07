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

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain", input: "Harina", want: "harina"},
		{name: "accents", input: "Azúcar Morena", want: "azucar morena"},
		{name: "tilde_n", input: "Piñón", want: "pinon"},
		{name: "trims", input: "  Leche  ", want: "leche"},
		{name: "upper_accents", input: "ÁREA", want: "area"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input), "normalized value should match")
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		query   string
		want    bool
	}{
		{name: "empty_query", subject: "Harina", query: "", want: true},
		{name: "blank_query", subject: "Harina", query: "   ", want: true},
		{name: "substring", subject: "Harina de trigo", query: "trigo", want: true},
		{name: "accent_insensitive", subject: "Azúcar", query: "azucar", want: true},
		{name: "accent_in_query", subject: "Azucar", query: "AZÚC", want: true},
		{name: "no_match", subject: "Leche", query: "harina", want: false},
		{name: "glob_prefix", subject: "Harina de trigo", query: "har*", want: true},
		{name: "glob_anchored", subject: "Harina de trigo", query: "trigo*", want: false},
		{name: "glob_single_char", subject: "Sal", query: "s?l", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.subject, tt.query), "match result should be %v", tt.want)
		})
	}
}

func TestIsPattern(t *testing.T) {
	assert.True(t, IsPattern("har*"), "star is a pattern")
	assert.True(t, IsPattern("s?l"), "question mark is a pattern")
	assert.False(t, IsPattern("harina"), "plain text is not a pattern")
}
