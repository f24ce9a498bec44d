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

// Package cli implements the bootcfg command line.
//
// # Commands
//
//	bootcfg show [--format yaml|json|table] [--output file|cm://ns/name] [--summary]
//	bootcfg propose [--empty] [--write] [--dry-run]
//	bootcfg merge --profile p.yaml|p.jsonc|https://...|cm://ns/name|oci://... [--write]
//	bootcfg serial enable "serial --unit=0 --speed=115200" [--write]
//	bootcfg serial disable [--write]
//	bootcfg mitigations [auto|nosmt|off] [--write]
//	bootcfg menu
//	bootcfg install [--efi] [--secure-boot] [--trusted-boot] [--pmbr add] [--dry-run] [device...]
//	bootcfg export [--output file] [--push oci://registry/repository:tag]
//
// Commands that modify the configuration print a summary and leave the
// system untouched unless --write is given. --dry-run prints the installer
// commands (grub2-mkconfig, grub2-install, parted) instead of running them.
//
// # Global Flags
//
//	--config, -c     Configuration file (default /etc/bootcfg/config.yaml, BOOTCFG_CONFIG)
//	--log-level      debug, info, warn or error (BOOTCFG_LOG_LEVEL, LOG_LEVEL)
//	--root           Resolve system files below a chroot (BOOTCFG_ROOT)
//	--metrics-file   Write Prometheus metrics in textfile format on exit
//
// Flags override the configuration file, which overrides built-in defaults.
package cli
