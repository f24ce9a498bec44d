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

package server

import (
	"context"
	"net/http"

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
)

// Source reads the current configuration. It is called once per request.
type Source func(ctx context.Context) (*bootloader.Grub2, error)

// SummaryResponse is returned by /v1/summary.
type SummaryResponse struct {
	CPUMitigations string   `json:"cpuMitigations"`
	Sections       []string `json:"sections,omitempty"`
	DefaultSection string   `json:"defaultSection,omitempty"`
	Summary        []string `json:"summary"`
}

// Handlers returns the bootloader API routes.
func Handlers(src Source, toolVersion string) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/config":  ConfigHandler(src, toolVersion),
		"/v1/summary": SummaryHandler(src),
	}
}

// ConfigHandler serves the BootloaderConfig document as JSON or YAML.
func ConfigHandler(src Source, toolVersion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}

		format := serializer.FormatJSON
		switch f := serializer.Format(r.URL.Query().Get("format")); f {
		case "", serializer.FormatJSON:
		case serializer.FormatYAML:
			format = f
		default:
			WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
				"unsupported format", false, map[string]any{
					"format":    string(f),
					"supported": []string{string(serializer.FormatJSON), string(serializer.FormatYAML)},
				})
			return
		}

		g, err := src(r.Context())
		if err != nil {
			WriteErrorFromErr(w, r, err, "failed to read bootloader configuration", nil)
			return
		}

		data, err := serializer.Marshal(format, g.ToProfile(header.KindBootloaderConfig, toolVersion))
		if err != nil {
			WriteErrorFromErr(w, r, err, "failed to serialize bootloader configuration", nil)
			return
		}

		contentType := "application/json"
		if format == serializer.FormatYAML {
			contentType = "application/yaml"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// SummaryHandler serves a short description of the configuration.
func SummaryHandler(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}

		g, err := src(r.Context())
		if err != nil {
			WriteErrorFromErr(w, r, err, "failed to read bootloader configuration", nil)
			return
		}

		resp := SummaryResponse{
			CPUMitigations: g.CPUMitigations().String(),
			Summary:        g.Summary(),
		}
		if g.Sections != nil {
			resp.Sections = g.Sections.Names()
			resp.DefaultSection = g.Sections.Default
		}
		w.Header().Set("Cache-Control", "no-store")
		respondJSON(w, http.StatusOK, resp)
	}
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	WriteError(w, r, http.StatusMethodNotAllowed, apperrors.ErrCodeMethodNotAllowed,
		"method not allowed", false, map[string]any{"method": r.Method})
	return false
}
