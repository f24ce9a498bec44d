// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package kernel

import "regexp"

// Matcher selects tokens by key and, optionally, by a pattern on the value.
// When ValueMatcher is set, bare flags never match.
type Matcher struct {
	Key          string
	ValueMatcher *regexp.Regexp
}

// Match reports whether p is selected.
func (m Matcher) Match(p Param) bool {
	if p.Key != m.Key {
		return false
	}
	if m.ValueMatcher == nil {
		return true
	}
	return !p.Flag && m.ValueMatcher.MatchString(p.Value)
}

// Placer decides where a new token goes.
type Placer interface {
	Place(params []Param, p Param) []Param
}

// AppendPlacer adds the token at the end.
type AppendPlacer struct{}

// Place implements Placer.
func (AppendPlacer) Place(params []Param, p Param) []Param {
	return append(params, p)
}

// ReplacePlacer overwrites the first matching token in place and appends
// when nothing matches. Other occurrences are left alone.
type ReplacePlacer struct {
	Matcher Matcher
}

// Place implements Placer.
func (r ReplacePlacer) Place(params []Param, p Param) []Param {
	for i := range params {
		if r.Matcher.Match(params[i]) {
			params[i] = p
			return params
		}
	}
	return append(params, p)
}

// BeforePlacer inserts the token before the first matching token and appends
// when nothing matches.
type BeforePlacer struct {
	Matcher Matcher
}

// Place implements Placer.
func (b BeforePlacer) Place(params []Param, p Param) []Param {
	for i := range params {
		if b.Matcher.Match(params[i]) {
			params = append(params, Param{})
			copy(params[i+1:], params[i:])
			params[i] = p
			return params
		}
	}
	return append(params, p)
}
