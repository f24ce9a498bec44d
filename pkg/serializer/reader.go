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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/k8s/client"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// FormatFromPath picks the decoding format from the extension. .jsonc is
// JSON with comments. Unknown extensions are treated as YAML, which also
// accepts plain JSON.
func FormatFromPath(p string) Format {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".jsonc":
		return FormatJSON
	case ".table", ".txt":
		return FormatTable
	default:
		return FormatYAML
	}
}

// Reader decodes a single document. Unknown fields are rejected so typos in
// profiles do not go unnoticed.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader returns a Reader for input. Table output cannot be read back.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if format == FormatTable {
		return nil, fmt.Errorf("table format does not support deserialization")
	}
	r := &Reader{format: format, input: input}
	if c, ok := input.(io.Closer); ok {
		r.closer = c
	}
	return r, nil
}

// NewFileReader opens path for reading in format.
func NewFileReader(format Format, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	r, err := NewReader(format, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Deserialize decodes the input into v.
func (r *Reader) Deserialize(v any) error {
	data, err := io.ReadAll(r.input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return Unmarshal(r.format, data, v)
}

// Close releases the input. It is safe to call twice.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Unmarshal decodes data in format into v. JSON may carry comments and
// trailing commas.
func Unmarshal(format Format, data []byte, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to deserialize JSON: %w", err)
		}
		return nil
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			if err == io.EOF {
				return fmt.Errorf("failed to deserialize YAML: document is empty")
			}
			return fmt.Errorf("failed to deserialize YAML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format for deserialization: %s", format)
	}
}

// FromFile loads a T from a local file, an http(s) URL or a ConfigMap URI
// (cm://namespace/name).
func FromFile[T any](ctx context.Context, location string) (*T, error) {
	return FromFileWithKubeconfig[T](ctx, location, "")
}

// FromFileWithKubeconfig is FromFile with an explicit kubeconfig for
// ConfigMap URIs.
func FromFileWithKubeconfig[T any](ctx context.Context, location, kubeconfig string) (*T, error) {
	var (
		data   []byte
		format = FormatFromPath(location)
		err    error
	)
	switch {
	case strings.HasPrefix(location, ConfigMapURIScheme):
		namespace, name, perr := ParseConfigMapURI(location)
		if perr != nil {
			return nil, perr
		}
		cs, _, cerr := client.GetKubeClient(kubeconfig)
		if cerr != nil {
			return nil, fmt.Errorf("failed to get kubernetes client: %w", cerr)
		}
		data, format, err = ReadConfigMap(ctx, cs, namespace, name)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		data, err = NewHTTPReader().Read(ctx, location)
	default:
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", location, err)
	}

	slog.Debug("loading document", "location", location, "format", format)
	var v T
	if err := Unmarshal(format, data, &v); err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", location, err)
	}
	return &v, nil
}

// ReadConfigMap returns the document stored by ConfigMapWriter and its format.
func ReadConfigMap(ctx context.Context, cs client.Interface, namespace, name string) ([]byte, Format, error) {
	cm, err := cs.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}
	if f := Format(cm.Data["format"]); f == FormatJSON || f == FormatYAML {
		if content, ok := cm.Data[dataKey(f)]; ok {
			return []byte(content), f, nil
		}
	}
	for _, f := range []Format{FormatYAML, FormatJSON} {
		if content, ok := cm.Data[dataKey(f)]; ok {
			return []byte(content), f, nil
		}
	}
	return nil, "", fmt.Errorf("ConfigMap %s/%s holds no bootcfg document", namespace, name)
}
