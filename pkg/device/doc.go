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

// Package device maps block device names to the persistent names written
// into boot configuration.
//
// Mapping follows the /dev/disk symlinks (by-uuid, by-label, by-id, by-path
// in that order by default) and keeps a per-session cache keyed by the name
// it was asked about. Names that do not exist are reported with the
// UNKNOWN_DEVICE error code rather than passed through.
package device
