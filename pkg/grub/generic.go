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

package grub

import "slices"

// Generic is an insertion-ordered string map holding settings that are not
// modelled as first-class fields.
type Generic struct {
	keys   []string
	values map[string]string
}

// NewGeneric returns an empty map.
func NewGeneric() *Generic {
	return &Generic{values: make(map[string]string)}
}

// Get returns the value for key and whether it is set.
func (g *Generic) Get(key string) (string, bool) {
	if g == nil {
		return "", false
	}
	v, ok := g.values[key]
	return v, ok
}

// Set assigns key, keeping its original position when already present.
func (g *Generic) Set(key, value string) {
	if g.values == nil {
		g.values = make(map[string]string)
	}
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = value
}

// Delete removes key.
func (g *Generic) Delete(key string) {
	if g == nil {
		return
	}
	if _, ok := g.values[key]; !ok {
		return
	}
	delete(g.values, key)
	g.keys = slices.DeleteFunc(g.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (g *Generic) Keys() []string {
	if g == nil {
		return nil
	}
	return slices.Clone(g.keys)
}

// Len returns the number of keys.
func (g *Generic) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Clone returns an independent copy.
func (g *Generic) Clone() *Generic {
	c := NewGeneric()
	for _, k := range g.Keys() {
		c.Set(k, g.values[k])
	}
	return c
}

// Map returns a plain copy of the entries.
func (g *Generic) Map() map[string]string {
	m := make(map[string]string, g.Len())
	for _, k := range g.Keys() {
		m[k] = g.values[k]
	}
	return m
}
