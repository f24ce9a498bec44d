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

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownTerminal is returned for GRUB_TERMINAL values bootcfg does not model.
var ErrUnknownTerminal = errors.New("unknown terminal type")

// Terminal is a GRUB terminal type.
type Terminal string

const (
	// TerminalConsole is the firmware text console.
	TerminalConsole Terminal = "console"
	// TerminalGfxterm is the graphical terminal.
	TerminalGfxterm Terminal = "gfxterm"
	// TerminalSerial is the serial line.
	TerminalSerial Terminal = "serial"
)

// IsKnown reports whether t is a modelled terminal type.
func (t Terminal) IsKnown() bool {
	switch t {
	case TerminalConsole, TerminalGfxterm, TerminalSerial:
		return true
	default:
		return false
	}
}

// ParseTerminals splits a space separated GRUB_TERMINAL value into an ordered
// set. Duplicates are dropped.
func ParseTerminals(s string) ([]Terminal, error) {
	fields := strings.Fields(s)
	res := make([]Terminal, 0, len(fields))
	for _, f := range fields {
		t := Terminal(f)
		if !t.IsKnown() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTerminal, f)
		}
		if !slices.Contains(res, t) {
			res = append(res, t)
		}
	}
	return res, nil
}

// FormatTerminals joins terminal types for GRUB_TERMINAL.
func FormatTerminals(ts []Terminal) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		if !slices.Contains(parts, string(t)) {
			parts = append(parts, string(t))
		}
	}
	return strings.Join(parts, " ")
}
