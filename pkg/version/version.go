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

// Package version holds the bootcfg build identity and compares release
// versions recorded in exported documents.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Overridden at build time with -ldflags "-X".
var (
	Tag    = "dev"
	Commit = "unknown"
	Date   = "unknown"
)

var (
	ErrEmptyVersion = errors.New("version string is empty")
	ErrMalformed    = errors.New("version is not MAJOR[.MINOR[.PATCH]]")
)

// Info describes the running binary.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// Current returns the build identity.
func Current() Info {
	return Info{Version: Tag, Commit: Commit, Date: Date}
}

// String formats i for --version output.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}

// Version is a release number. Missing components are zero. Anything after
// '-' or '+' is kept in Extras and ignored when comparing.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Extras string
}

// ParseVersion accepts an optional leading "v".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var v Version
	if i := strings.IndexAny(s, "-+"); i > 0 {
		v.Extras = s[i:]
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	dst := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		*dst[i] = n
	}
	return v, nil
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Extras)
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	for _, d := range [][2]int{{v.Major, o.Major}, {v.Minor, o.Minor}, {v.Patch, o.Patch}} {
		switch {
		case d[0] < d[1]:
			return -1
		case d[0] > d[1]:
			return 1
		}
	}
	return 0
}

// IsNewer reports whether v is a later release than o.
func (v Version) IsNewer(o Version) bool {
	return v.Compare(o) > 0
}
