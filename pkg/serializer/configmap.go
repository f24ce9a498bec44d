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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/k8s/client"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
)

const fieldManager = "bootcfg"

// ConfigMapWriter stores a document in a ConfigMap with server-side apply,
// creating or replacing it.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	client    client.Interface
}

// NewConfigMapWriter returns a writer using the default kube client.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format == FormatTable {
		format = FormatYAML
	}
	return &ConfigMapWriter{namespace: namespace, name: name, format: normalize(format)}
}

// WithKubeClient sets the client used instead of the default one.
func (w *ConfigMapWriter) WithKubeClient(c client.Interface) *ConfigMapWriter {
	w.client = c
	return w
}

func dataKey(f Format) string {
	return "bootcfg." + string(f)
}

// Serialize implements Serializer. Documents carrying a header label the
// ConfigMap with their kind and the tool version.
func (w *ConfigMapWriter) Serialize(ctx context.Context, doc any) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	cs := w.client
	if cs == nil {
		var err error
		if cs, _, err = client.GetKubeClient(""); err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
	}

	content, err := Marshal(w.format, doc)
	if err != nil {
		return err
	}

	kind, version := "unknown", "unknown"
	timestamp := time.Now().UTC().Format(time.RFC3339)
	if h, ok := doc.(interface{ GetHeader() *header.Header }); ok && h.GetHeader() != nil {
		hd := h.GetHeader()
		if hd.Kind != "" {
			kind = hd.Kind.String()
		}
		if v := hd.Metadata["version"]; v != "" {
			version = v
		}
		if ts := hd.Metadata["timestamp"]; ts != "" {
			timestamp = ts
		}
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "bootcfg",
			"app.kubernetes.io/component": strings.ToLower(kind),
			"app.kubernetes.io/version":   version,
		}).
		WithData(map[string]string{
			dataKey(w.format): string(content),
			"format":          string(w.format),
			"timestamp":       timestamp,
		})

	slog.Info("applying ConfigMap", "namespace", w.namespace, "name", w.name, "format", w.format)
	_, err = cs.CoreV1().ConfigMaps(w.namespace).Apply(ctx, cm, metav1.ApplyOptions{
		FieldManager: fieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// Close implements Closer.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// ParseConfigMapURI splits cm://namespace/name.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}
	rest := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}
	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	return namespace, name, nil
}
