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

// Package install assembles and runs the external bootloader tools.
//
// Argument vectors are built by pure functions (GrubInstall.Commands,
// Mkconfig, SetDefault, PMBR) so every conditional can be tested without a
// child process. A Runner executes them: ExecRunner uses os/exec with
// per-command timeouts and reports failures as structured errors carrying
// the tool output; DryRunner only prints and records.
//
// Target selection for grub2-install:
//
//	i386     i386-efi or i386-pc
//	x86_64   x86_64-efi or i386-pc
//	ppc      powerpc-ieee1275 (no EFI)
//	s390     s390x-emu (no EFI)
//	aarch64  arm64-efi (EFI only)
//
// Secure boot installs through shim-install and requires EFI. Trusted boot
// uses the trustedgrub2 modules and is not available with EFI.
package install
