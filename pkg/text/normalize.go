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
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// globChars are the characters that switch a query from substring to glob matching
const globChars = "*?["

// 🔤 Normalize folds a string for search: decomposes it, drops combining
// marks, lower-cases and trims it. "Azúcar " and "azucar" normalize equally.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// transformers keep state, build a fresh chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.TrimSpace(cases.Lower(language.Und).String(folded))
}

// 🔍 IsPattern reports whether the query should be matched as a glob
func IsPattern(query string) bool {
	return strings.ContainsAny(query, globChars)
}

// 🎯 Match reports whether subject matches the search query.
//
// An empty query matches everything. Queries containing glob characters are
// matched against the whole normalized subject; everything else is a
// normalized substring match. An invalid glob falls back to substring.
func Match(subject, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	s := Normalize(subject)

	if IsPattern(q) {
		ok, err := doublestar.Match(q, s)
		if err == nil {
			return ok
		}
	}

	return strings.Contains(s, q)
}
