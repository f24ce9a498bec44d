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

// Package serializer encodes and decodes bootcfg documents.
//
// Profiles and exported configurations are written as JSON, YAML or a flat
// FIELD/VALUE table, to stdout, a file, or a Kubernetes ConfigMap addressed
// as cm://namespace/name:
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, "cm://ops/node-7")
//	if err != nil {
//	    return err
//	}
//	defer w.(serializer.Closer).Close()
//	err = w.Serialize(ctx, profile)
//
// FromFile loads a document from a local path, an http(s) URL or a
// ConfigMap. JSON input may contain comments (.jsonc). Unknown fields are
// rejected in both JSON and YAML. Tables are output only.
package serializer
