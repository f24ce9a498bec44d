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

package locale

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// DefaultLang is used when no system language is configured.
const DefaultLang = "C"

// UnsetVars are removed from the environment of menu regeneration so that
// LANG alone decides the language of generated entries.
var UnsetVars = []string{"LC_MESSAGES", "LC_ALL", "LANGUAGE"}

// Settings is the system-wide language read from /etc/sysconfig/language.
type Settings struct {
	// RCLang is RC_LANG verbatim, e.g. "de_DE.UTF-8".
	RCLang string
	// Tag is the parsed language, language.Und when RC_LANG is unusable.
	Tag language.Tag

	// configured is false when the system has no language file, in which
	// case child processes keep the caller's locale.
	configured bool
}

// Load reads path. An empty RC_LANG yields DefaultLang; a missing file
// yields Settings that leave the environment alone.
func Load(path string) (*Settings, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("system language not configured, keeping current locale", slog.String("path", path))
			return &Settings{Tag: language.Und}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return FromRCLang(env["RC_LANG"]), nil
}

// FromRCLang validates an RC_LANG value. Values that are not a locale name
// are dropped with a warning.
func FromRCLang(rcLang string) *Settings {
	rcLang = strings.TrimSpace(rcLang)
	if rcLang == "" || rcLang == "C" || rcLang == "POSIX" {
		return &Settings{RCLang: rcLang, Tag: language.Und, configured: true}
	}
	tag, err := language.Parse(localeBase(rcLang))
	if err != nil {
		slog.Warn("ignoring invalid RC_LANG", slog.String("value", rcLang), slog.String("error", err.Error()))
		return &Settings{Tag: language.Und, configured: true}
	}
	return &Settings{RCLang: rcLang, Tag: tag, configured: true}
}

// localeBase strips the codeset and modifier: "sr_RS.UTF-8@latin" -> "sr_RS".
func localeBase(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		return s[:i]
	}
	return s
}

// Lang returns the LANG value for child processes.
func (s *Settings) Lang() string {
	if s == nil || s.RCLang == "" {
		return DefaultLang
	}
	return s.RCLang
}

// Configured reports whether a system language file was found.
func (s *Settings) Configured() bool {
	return s != nil && s.configured
}

// Overrides returns the variables to set and to unset for menu
// regeneration. Both are empty when no system language is configured.
func (s *Settings) Overrides() (set map[string]string, unset []string) {
	if !s.Configured() {
		return nil, nil
	}
	return map[string]string{"LANG": s.Lang()}, UnsetVars
}
