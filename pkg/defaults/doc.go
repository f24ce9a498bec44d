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

// Package defaults provides centralized configuration constants for bootcfg.
//
// This package defines file locations, proposal defaults, and timeout values
// used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Categories
//
//   - Paths: GRUB settings, generated menu, environment block, sysconfig files
//   - Proposal defaults: timeout, gfxmode, default entry, Xen VGA mode
//   - Command timeouts: grub2-mkconfig, grub2-install, parted
//   - Export timeouts: ConfigMap writes and OCI pushes
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.MkconfigTimeout)
//	defer cancel()
package defaults
