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

import (
	"slices"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/kernel"
)

// bootOnlyParams are dropped from the running command line before it seeds
// a proposal; they are either per-boot or added back by the proposal.
var bootOnlyParams = []string{
	"BOOT_IMAGE", "initrd", "root", "ro", "rw", "rootflags", "rootfstype",
	"resume", "noresume", "splash", "quiet", "mitigations",
}

// FilterCmdline removes boot specific tokens from a running command line.
func FilterCmdline(cmdline string) string {
	l, err := kernel.Parse(cmdline)
	if err != nil {
		return ""
	}
	kept := make([]string, 0, l.Len())
	for _, p := range l.Params() {
		if slices.Contains(bootOnlyParams, p.Key) {
			continue
		}
		kept = append(kept, p.String())
	}
	return strings.Join(kept, " ")
}

// DefaultKernelParams builds the kernel line proposed for an empty
// configuration. resume is the stable name of the resume device or empty.
func DefaultKernelParams(f *Facts, resume string) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	if f.Arch == ArchS390 {
		add("hvc_iucv=8 TERM=dumb")
		add(f.KernelCmdline)
		if resume != "" {
			add("resume=" + resume)
		}
		return strings.Join(parts, " ")
	}

	add(f.KernelCmdline)
	if resume != "" {
		add("resume=" + resume)
	}
	if f.Arch != ArchPPC {
		add("splash=silent")
	}
	add("quiet")
	add("mitigations=auto")
	return strings.Join(parts, " ")
}
