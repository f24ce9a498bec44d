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

// Package grub models /etc/default/grub and the files around it.
//
// Default is the editable document: three kernel command lines, optional
// string settings, tri-state Booleans and an ordered map of every other key.
// Parse and Render convert it to and from the shell-style file using
// github.com/joho/godotenv; Load and Save add file handling, reporting a
// missing file as a broken configuration.
//
// The package also lists the entries of the generated grub.cfg (ParseMenu),
// reads the grubenv block (ReadEnv) and maps the kernel "mitigations=" option
// to CPUMitigations.
package grub
