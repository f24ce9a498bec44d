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

// Package platform describes the machine being configured.
//
// Prober gathers Facts concurrently from /proc, /sys, /dev and the bootloader
// sysconfig file: architecture, UEFI and efivars state, framebuffer and TPM
// presence, hibernation support, whether /boot sits on dm-crypt, and the
// SECURE_BOOT and TRUSTED_BOOT settings. Facts answers the derived questions
// (SecureBootAvailable, TrustedBootAvailable, ShimNeeded, WritableEFIVars).
//
// SystemSwap lists swap partitions from /proc/swaps and /etc/fstab so a
// resume device can be proposed, and DefaultKernelParams builds the kernel
// line proposed for an empty configuration.
//
// All probing can be rooted elsewhere with WithRoot:
//
//	p := platform.NewProber(platform.WithRoot("/mnt"))
//	facts, err := p.Probe(ctx)
package platform
