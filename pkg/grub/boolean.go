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

import "strings"

// Boolean is a tri-state setting: unset, disabled or enabled.
// Unset means "not decided yet" and is distinct from an explicit false.
type Boolean int8

const (
	// BoolUnset is the zero value.
	BoolUnset Boolean = iota
	// BoolDisabled is an explicit false.
	BoolDisabled
	// BoolEnabled is an explicit true.
	BoolEnabled
)

// BoolOf returns the defined Boolean for v.
func BoolOf(v bool) Boolean {
	if v {
		return BoolEnabled
	}
	return BoolDisabled
}

// Defined reports whether the value was set explicitly.
func (b Boolean) Defined() bool { return b != BoolUnset }

// Enabled reports whether the value is explicitly true.
func (b Boolean) Enabled() bool { return b == BoolEnabled }

// Enable sets the value to true.
func (b *Boolean) Enable() { *b = BoolEnabled }

// Disable sets the value to false.
func (b *Boolean) Disable() { *b = BoolDisabled }

// Set assigns an explicit value.
func (b *Boolean) Set(v bool) { *b = BoolOf(v) }

// Reset returns the value to unset.
func (b *Boolean) Reset() { *b = BoolUnset }

// Ptr returns nil when unset, otherwise a pointer to the value.
func (b Boolean) Ptr() *bool {
	if !b.Defined() {
		return nil
	}
	v := b.Enabled()
	return &v
}

// BoolFromPtr is the inverse of Ptr.
func BoolFromPtr(v *bool) Boolean {
	if v == nil {
		return BoolUnset
	}
	return BoolOf(*v)
}

// String implements fmt.Stringer.
func (b Boolean) String() string {
	switch b {
	case BoolEnabled:
		return "true"
	case BoolDisabled:
		return "false"
	default:
		return "unset"
	}
}

// parseFileBool reads the spellings GRUB accepts in /etc/default/grub.
func parseFileBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "y", "yes", "1":
		return true, true
	case "false", "n", "no", "0":
		return false, true
	default:
		return false, false
	}
}
