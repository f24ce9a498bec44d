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

// Package bootloader manages a GRUB2 configuration session.
//
// A Grub2 aggregates the /etc/default/grub document with the settings GRUB
// keeps elsewhere: the saved default menu entry, the superuser password
// script, the protective MBR flag and the secure and trusted boot choices.
//
// Typical use reads the system, proposes defaults, merges a profile on top
// and writes the result back:
//
//	g := bootloader.New()
//	if err := g.Read(ctx); err != nil {
//		return err
//	}
//	facts, err := platform.NewProber().Probe(ctx)
//	if err != nil {
//		return err
//	}
//	if err := g.Propose(ctx, &bootloader.Proposer{Facts: facts}); err != nil {
//		return err
//	}
//	g.Merge(override)
//	return g.Write(ctx)
//
// Propose only decides what is undecided, apart from the settings the
// platform dictates. Merge applies another configuration on top, where
// undecided settings of the override leave the base alone and kernel lines
// are concatenated with exact duplicates collapsed to their last occurrence.
//
// A Grub2 is not safe for concurrent use.
package bootloader
