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

package header

import (
	"fmt"
	"time"

	"github.com/NVIDIA/bootcfg/pkg/version"
)

// APIVersion is the schema version of every bootcfg document.
const APIVersion = "bootcfg.nvidia.com/v1alpha1"

// Kind is the type of a bootcfg document.
type Kind string

const (
	// KindBootloaderProfile is a partial configuration merged over a system.
	KindBootloaderProfile Kind = "BootloaderProfile"
	// KindBootloaderConfig is the full configuration read from a system.
	KindBootloaderConfig Kind = "BootloaderConfig"
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindBootloaderProfile, KindBootloaderConfig:
		return true
	default:
		return false
	}
}

// Option configures a Header.
type Option func(*Header)

// WithMetadata adds a metadata entry.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the kind.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion overrides the API version.
func WithAPIVersion(v string) Option {
	return func(h *Header) {
		h.APIVersion = v
	}
}

// Header carries the Kubernetes style type information of a document.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// New returns a header for the current API version.
func New(opts ...Option) *Header {
	h := &Header{
		APIVersion: APIVersion,
		Metadata:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init resets h for a new document produced by the given tool version.
func (h *Header) Init(kind Kind, toolVersion string) {
	h.Kind = kind
	h.APIVersion = APIVersion
	h.Metadata = map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if toolVersion != "" {
		h.Metadata["version"] = toolVersion
	}
}

// Validate checks that h describes a document of the expected kind that
// this build understands. Documents written by a newer tool release are
// rejected when running is a parsable version.
func (h *Header) Validate(expected Kind, running string) error {
	if h.Kind != expected {
		return fmt.Errorf("unexpected kind %q, expected %q", h.Kind, expected)
	}
	if h.APIVersion != APIVersion {
		return fmt.Errorf("unsupported apiVersion %q, expected %q", h.APIVersion, APIVersion)
	}
	written, ok := h.Metadata["version"]
	if !ok {
		return nil
	}
	wv, err := version.ParseVersion(written)
	if err != nil {
		return nil
	}
	rv, err := version.ParseVersion(running)
	if err != nil {
		return nil
	}
	if wv.IsNewer(rv) {
		return fmt.Errorf("document written by bootcfg %s, newer than %s", wv, rv)
	}
	return nil
}

// GetHeader returns h. Documents embedding a Header expose it through this
// method to writers that label their output.
func (h *Header) GetHeader() *Header {
	return h
}
