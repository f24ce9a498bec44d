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

package grub

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/sysfile"
)

// MenuSeparator joins submenu titles with the entry title, as GRUB_DEFAULT
// and grub2-set-default expect.
const MenuSeparator = ">"

var (
	menuLine = regexp.MustCompile(`^\s*(menuentry|submenu)\s+(?:'([^']*)'|"([^"]*)"|(\S+))(.*)$`)
	menuID   = regexp.MustCompile(`(?:--id(?:=|\s+)|\$menuentry_id_option\s+)(?:'([^']*)'|"([^"]*)"|([^\s{]+))`)
)

// MenuEntry is one bootable entry of the generated menu.
type MenuEntry struct {
	Title   string   `json:"title" yaml:"title"`
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Submenu []string `json:"submenu,omitempty" yaml:"submenu,omitempty"`
}

// Name is the path used to select the entry, e.g. "Advanced options>Linux".
func (e MenuEntry) Name() string {
	return strings.Join(append(append([]string(nil), e.Submenu...), e.Title), MenuSeparator)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ParseMenu lists the menuentry blocks of a grub.cfg, including those nested
// in submenus. Nothing beyond titles and ids is interpreted.
func ParseMenu(r io.Reader) ([]MenuEntry, error) {
	type open struct {
		title string
		depth int
	}
	var (
		entries  []MenuEntry
		submenus []open
		depth    int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := menuLine.FindStringSubmatch(line); m != nil {
			title := firstNonEmpty(m[2], m[3], m[4])
			if m[1] == "submenu" {
				submenus = append(submenus, open{title: title, depth: depth})
			} else {
				e := MenuEntry{Title: title}
				if id := menuID.FindStringSubmatch(m[5]); id != nil {
					e.ID = firstNonEmpty(id[1], id[2], id[3])
				}
				for _, s := range submenus {
					e.Submenu = append(e.Submenu, s.title)
				}
				entries = append(entries, e)
			}
		}
		if strings.HasSuffix(line, "{") {
			depth++
		}
		if line == "}" {
			depth--
			if n := len(submenus); n > 0 && submenus[n-1].depth == depth {
				submenus = submenus[:n-1]
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan menu: %w", err)
	}
	return entries, nil
}

// LoadMenu reads the generated menu at path. A missing file is reported
// with ErrCodeNotFound so callers can treat it as an empty menu.
func LoadMenu(path string) ([]MenuEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound, "boot menu not generated yet", map[string]any{"path": path})
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	entries, err := ParseMenu(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBrokenConfiguration, fmt.Sprintf("failed to parse %s", path), err)
	}
	return entries, nil
}

// SavedEntryKey is the grubenv variable written by grub2-set-default.
const SavedEntryKey = "saved_entry"

// ReadEnv parses a grubenv block. The '#' padding is skipped.
func ReadEnv(path string) (map[string]string, error) {
	p := sysfile.NewParser(sysfile.WithSkipComments(true), sysfile.WithMaxSize(64*1024))
	m, err := p.GetMap(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read grub environment", err)
	}
	return m, nil
}
