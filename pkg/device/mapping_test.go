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
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeDev(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mk := func(rel string) {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
	ln := func(target, rel string) {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.Symlink(target, p))
	}
	mk("dev/sda1")
	mk("dev/sda2")
	mk("dev/sdb1")
	ln("../../sda1", "dev/disk/by-uuid/1A2B-3C4D")
	ln("../../sda2", "dev/disk/by-uuid/0f6a3a2c-1d0e-4bd5-9a59-8d4b3a6c7e11")
	ln("../../sda2", "dev/disk/by-label/swap")
	ln("../../sda2", "dev/disk/by-id/ata-DISK_123-part2")
	ln("../../sdb1", "dev/disk/by-id/ata-OTHER_456-part1")
	ln("../../sdb1", "dev/disk/by-path/pci-0000:00:1f.2-ata-2-part1")
	return root
}

func TestToKernel(t *testing.T) {
	m := NewMapping(WithRoot(fakeDev(t)))

	k, err := m.ToKernel("/dev/disk/by-label/swap")
	require.NoError(t, err)
	assert.Equal(t, "/dev/sda2", k)

	k, err = m.ToKernel("/dev/sda1")
	require.NoError(t, err)
	assert.Equal(t, "/dev/sda1", k)
}

func TestToMountBy(t *testing.T) {
	tests := []struct {
		name       string
		dev        string
		preference []string
		want       string
	}{
		{name: "uuid preferred", dev: "/dev/sda2", want: "/dev/disk/by-uuid/0f6a3a2c-1d0e-4bd5-9a59-8d4b3a6c7e11"},
		{name: "from another stable name", dev: "/dev/disk/by-id/ata-DISK_123-part2", want: "/dev/disk/by-uuid/0f6a3a2c-1d0e-4bd5-9a59-8d4b3a6c7e11"},
		{name: "vfat serial", dev: "/dev/sda1", want: "/dev/disk/by-uuid/1A2B-3C4D"},
		{name: "falls back to id", dev: "/dev/sdb1", want: "/dev/disk/by-id/ata-OTHER_456-part1"},
		{name: "custom preference", dev: "/dev/sdb1", preference: []string{"by-path"}, want: "/dev/disk/by-path/pci-0000:00:1f.2-ata-2-part1"},
		{name: "label first", dev: "/dev/sda2", preference: []string{"by-label", "by-uuid"}, want: "/dev/disk/by-label/swap"},
	}

	root := fakeDev(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{WithRoot(root)}
			if tt.preference != nil {
				opts = append(opts, WithPreference(tt.preference...))
			}
			got, err := NewMapping(opts...).ToMountBy(tt.dev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNoStableName(t *testing.T) {
	root := fakeDev(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "dev", "vda1"), nil, 0o644))
	got, err := NewMapping(WithRoot(root)).ToMountBy("/dev/vda1")
	require.NoError(t, err)
	assert.Equal(t, "/dev/vda1", got)
}

func TestUnknownDevice(t *testing.T) {
	m := NewMapping(WithRoot(fakeDev(t)))
	for _, dev := range []string{"/dev/nvme0n1p9", "sda1", "/dev/disk/by-uuid/missing"} {
		_, err := m.ToMountBy(dev)
		require.Error(t, err, dev)
		assert.ErrorIs(t, err, ErrUnknownDevice)
		assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownDevice))
	}
}

func TestSessionCache(t *testing.T) {
	root := fakeDev(t)
	m := NewMapping(WithRoot(root))

	first, err := m.ToMountBy("/dev/sda2")
	require.NoError(t, err)

	// the cache answers even after the device disappears
	require.NoError(t, os.RemoveAll(filepath.Join(root, "dev")))
	again, err := m.ToMountBy("/dev/sda2")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	_, err = NewMapping(WithRoot(root)).ToMountBy("/dev/sda2")
	assert.Error(t, err)
}
