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

package device

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/google/uuid"
)

// ErrUnknownDevice is returned for device names that do not exist.
var ErrUnknownDevice = stderrors.New("unknown device")

// Resolver converts between kernel device names and stable names.
type Resolver interface {
	// ToMountBy returns the preferred persistent name for dev.
	ToMountBy(dev string) (string, error)
	// ToKernel returns the kernel name (/dev/sda2) for any name of dev.
	ToKernel(dev string) (string, error)
}

// DefaultPreference is the order stable name directories are tried in.
var DefaultPreference = []string{"by-uuid", "by-label", "by-id", "by-path"}

// Mapping resolves names through the /dev/disk symlink farm. Results are
// cached for the lifetime of the Mapping, which is meant to match one
// configuration session. A Mapping is not safe for concurrent use.
type Mapping struct {
	root       string
	preference []string
	logger     *slog.Logger

	kernel  map[string]string
	mountBy map[string]string
}

// Option configures a Mapping.
type Option func(*Mapping)

// WithRoot resolves names below root instead of /.
func WithRoot(root string) Option {
	return func(m *Mapping) {
		m.root = root
	}
}

// WithPreference sets the /dev/disk subdirectories tried, in order.
func WithPreference(dirs ...string) Option {
	return func(m *Mapping) {
		m.preference = dirs
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Mapping) {
		m.logger = l
	}
}

// NewMapping returns an empty session cache.
func NewMapping(opts ...Option) *Mapping {
	m := &Mapping{
		root:       "/",
		preference: DefaultPreference,
		kernel:     make(map[string]string),
		mountBy:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

func (m *Mapping) path(name string) string {
	return filepath.Join(m.root, name)
}

// ToKernel implements Resolver.
func (m *Mapping) ToKernel(dev string) (string, error) {
	if k, ok := m.kernel[dev]; ok {
		return k, nil
	}
	if !strings.HasPrefix(dev, "/dev/") {
		return "", unknown(dev, nil)
	}
	resolved, err := filepath.EvalSymlinks(m.path(dev))
	if err != nil {
		return "", unknown(dev, err)
	}
	rel, err := filepath.Rel(m.path("/"), resolved)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", unknown(dev, err)
	}
	k := "/" + filepath.ToSlash(rel)
	m.kernel[dev] = k
	return k, nil
}

// ToMountBy implements Resolver. When no stable link points at the device
// its kernel name is returned.
func (m *Mapping) ToMountBy(dev string) (string, error) {
	if n, ok := m.mountBy[dev]; ok {
		return n, nil
	}
	k, err := m.ToKernel(dev)
	if err != nil {
		return "", err
	}
	name := k
	for _, dir := range m.preference {
		if link := m.findLink(dir, k); link != "" {
			name = link
			break
		}
	}
	m.logger.Debug("resolved stable device name", slog.String("device", dev), slog.String("name", name))
	m.mountBy[dev] = name
	return name, nil
}

// findLink returns the first entry of /dev/disk/<dir> resolving to kernel.
func (m *Mapping) findLink(dir, kernel string) string {
	base := filepath.Join("/dev/disk", dir)
	entries, err := os.ReadDir(m.path(base))
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if dir == "by-uuid" {
		// RFC 4122 ids before short vfat serials
		slices.SortStableFunc(names, func(a, b string) int {
			return rank(a) - rank(b)
		})
	}
	for _, n := range names {
		link := filepath.Join(base, n)
		k, err := m.ToKernel(link)
		if err == nil && k == kernel {
			return link
		}
	}
	return ""
}

func rank(name string) int {
	if _, err := uuid.Parse(name); err == nil {
		return 0
	}
	return 1
}

func unknown(dev string, cause error) error {
	err := fmt.Errorf("%w: %s", ErrUnknownDevice, dev)
	if cause != nil {
		err = fmt.Errorf("%w: %w", err, cause)
	}
	return errors.WrapWithContext(errors.ErrCodeUnknownDevice, "unknown device", err, map[string]any{"device": dev})
}
