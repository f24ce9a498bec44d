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

package platform

import "strings"

// Arch is a processor family as far as boot configuration is concerned.
type Arch string

const (
	ArchX86_64  Arch = "x86_64"
	ArchI386    Arch = "i386"
	ArchAarch64 Arch = "aarch64"
	ArchPPC     Arch = "ppc"
	ArchS390    Arch = "s390"
	ArchUnknown Arch = "unknown"
)

// ParseArch maps a uname machine string to its family.
func ParseArch(machine string) Arch {
	switch m := strings.ToLower(strings.TrimSpace(machine)); {
	case m == "x86_64" || m == "amd64":
		return ArchX86_64
	case m == "386" || m == "i386" || m == "i486" || m == "i586" || m == "i686":
		return ArchI386
	case m == "aarch64" || m == "arm64":
		return ArchAarch64
	case strings.HasPrefix(m, "ppc") || strings.HasPrefix(m, "powerpc"):
		return ArchPPC
	case strings.HasPrefix(m, "s390"):
		return ArchS390
	default:
		return ArchUnknown
	}
}

// IsX86 reports whether a is 32 or 64 bit x86.
func (a Arch) IsX86() bool { return a == ArchX86_64 || a == ArchI386 }

// Restricted reports whether the firmware only offers a text console and
// other operating systems cannot be chain loaded.
func (a Arch) Restricted() bool { return a == ArchS390 || a == ArchPPC }

// XenCapable reports whether a can run the Xen hypervisor.
func (a Arch) XenCapable() bool { return a.IsX86() }

// String implements fmt.Stringer.
func (a Arch) String() string { return string(a) }
