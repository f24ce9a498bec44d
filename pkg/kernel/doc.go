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

// Package kernel models the kernel command line as an ordered list of tokens.
//
// The grammar is deliberately thin: tokens are separated by whitespace, a
// token containing '=' is a key/value pair split on the first '=', anything
// else is a bare flag. There is no quoting or escaping. Unknown tokens pass
// through untouched, so parse followed by serialize reproduces the input for
// any single-space separated line.
//
// Duplicates are allowed. Lookups return the last occurrence, matching how
// the kernel itself lets later tokens shadow earlier ones.
//
// # Editing
//
// Tokens are added through a Placer and removed through a Matcher:
//
//	params, _ := kernel.Parse("quiet console=ttyS0,115200")
//	serial := kernel.Matcher{Key: "console", ValueMatcher: regexp.MustCompile(`tty(S|AMA)`)}
//	params.AddParameter("console", "ttyS1,9600", kernel.ReplacePlacer{Matcher: serial})
//	params.RemoveParameter(kernel.Matcher{Key: "quiet"})
package kernel
