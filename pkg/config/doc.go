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

// Package config loads the bootcfg configuration file.
//
// The file is YAML. Every field is optional; omitted fields keep their
// defaults:
//
//	root: /
//	logLevel: info
//	paths:
//	  default: /etc/default/grub
//	  cfg: /boot/grub2/grub.cfg
//	features:
//	  disableOSProber: true
//	devicePreference: [by-uuid, by-label]
//	install:
//	  devices: [/dev/sda]
//	  pmbr: nothing
//
// Command line flags take precedence over the file.
package config
