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

// Package oci stores bootloader profiles in OCI registries.
//
// A profile is pushed as an OCI 1.1 artifact with artifact type
// application/vnd.nvidia.bootcfg.profile and a single layer holding the
// YAML or JSON document. References use the oci:// scheme:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/acme/boot-profiles:gpu-nodes")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Push(ctx, ref, data, oci.PushOptions{Version: "v1.0.0"})
//
// Pull returns the profile layer of an artifact. Credentials come from the
// Docker config when present.
package oci
