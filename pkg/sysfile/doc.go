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

// Package sysfile parses the small line-oriented files bootcfg reads from a
// running system.
//
// The same parser handles three shapes:
//
//   - key=value files: /boot/grub2/grubenv, /etc/sysconfig/bootloader
//   - column files: /proc/swaps (WithFields)
//   - single-line token files: /proc/cmdline (WithDelimiter(" "))
//
// Every read is guarded by a maximum size (1MB by default) and UTF-8
// validation so a corrupted file fails loudly instead of producing garbage
// configuration.
//
// # Usage
//
//	p := sysfile.NewParser(sysfile.WithVTrimChars(`"'`))
//	vals, err := p.GetMap("/etc/sysconfig/bootloader")
//	if err != nil {
//	    return err
//	}
//	secure := vals["SECURE_BOOT"] == "yes"
package sysfile
