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

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/sysfile"
	fstab "github.com/deniswernert/go-fstab"
)

// SwapProvider lists swap partitions with their size in KiB, keyed by
// kernel device path.
type SwapProvider interface {
	SwapPartitions(ctx context.Context) (map[string]int64, error)
}

// LargestSwap returns the biggest partition, preferring the lexically
// smaller name on ties so the choice is stable. It returns "" when empty.
func LargestSwap(parts map[string]int64) string {
	var (
		best string
		size int64 = -1
	)
	for dev, s := range parts {
		if s > size || (s == size && dev < best) {
			best, size = dev, s
		}
	}
	return best
}

// SystemSwap reads active swap from /proc/swaps and configured swap from
// /etc/fstab.
type SystemSwap struct {
	Root   string
	Logger *slog.Logger
}

// NewSystemSwap returns a SwapProvider for the running system.
func NewSystemSwap() *SystemSwap {
	return &SystemSwap{Root: "/", Logger: slog.Default()}
}

func (s *SystemSwap) path(elem ...string) string {
	root := s.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(append([]string{root}, elem...)...)
}

func (s *SystemSwap) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// SwapPartitions implements SwapProvider. Swap files are ignored.
func (s *SystemSwap) SwapPartitions(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make(map[string]int64)

	rows, err := sysfile.NewParser(sysfile.WithFields()).GetFields(s.path("proc", "swaps"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read active swap: %w", err)
	}
	for _, row := range rows {
		// Filename Type Size Used Priority
		if len(row) < 3 || row[1] != "partition" {
			continue
		}
		size, perr := strconv.ParseInt(row[2], 10, 64)
		if perr != nil {
			continue
		}
		res[row[0]] = size
	}

	mounts, err := fstab.ParseFile(s.path("etc", "fstab"))
	if err != nil {
		s.logger().Debug("fstab not readable", slog.String("error", err.Error()))
		return res, nil
	}
	for _, m := range mounts {
		if m.VfsType != "swap" {
			continue
		}
		dev, ok := s.resolveSpec(m.Spec)
		if !ok {
			continue
		}
		if _, seen := res[dev]; seen {
			continue
		}
		if size, ok := s.blockSize(dev); ok {
			res[dev] = size
		}
	}
	return res, nil
}

var specLinks = map[string]string{
	"UUID":      "by-uuid",
	"LABEL":     "by-label",
	"PARTUUID":  "by-partuuid",
	"PARTLABEL": "by-partlabel",
}

// resolveSpec maps an fstab device spec to a kernel device path.
func (s *SystemSwap) resolveSpec(spec string) (string, bool) {
	link := spec
	if k, v, ok := strings.Cut(spec, "="); ok {
		dir, known := specLinks[k]
		if !known {
			return "", false
		}
		link = filepath.Join("/dev/disk", dir, v)
	}
	if !strings.HasPrefix(link, "/dev/") {
		return "", false
	}
	target, err := filepath.EvalSymlinks(s.path(link))
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(s.path(), target)
	if err != nil {
		return "", false
	}
	return "/" + filepath.ToSlash(rel), true
}

// blockSize returns the size of dev in KiB from sysfs.
func (s *SystemSwap) blockSize(dev string) (int64, bool) {
	b, err := os.ReadFile(s.path("sys", "class", "block", filepath.Base(dev), "size"))
	if err != nil {
		return 0, false
	}
	sectors, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, false
	}
	return sectors / 2, true
}
