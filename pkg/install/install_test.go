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

package install

import (
	"bytes"
	"context"
	"testing"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		arch    platform.Arch
		efi     bool
		want    string
		wantErr bool
	}{
		{arch: platform.ArchI386, want: "i386-pc"},
		{arch: platform.ArchI386, efi: true, want: "i386-efi"},
		{arch: platform.ArchX86_64, want: "i386-pc"},
		{arch: platform.ArchX86_64, efi: true, want: "x86_64-efi"},
		{arch: platform.ArchPPC, want: "powerpc-ieee1275"},
		{arch: platform.ArchPPC, efi: true, wantErr: true},
		{arch: platform.ArchS390, want: "s390x-emu"},
		{arch: platform.ArchS390, efi: true, wantErr: true},
		{arch: platform.ArchAarch64, efi: true, want: "arm64-efi"},
		{arch: platform.ArchAarch64, wantErr: true},
		{arch: platform.ArchUnknown, wantErr: true},
	}
	for _, tt := range tests {
		name := string(tt.arch)
		if tt.efi {
			name += "-efi"
		}
		t.Run(name, func(t *testing.T) {
			got, err := GrubInstall{Arch: tt.arch, EFI: tt.efi}.Target()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedPlatform)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func argv(cmds []Command) [][]string {
	res := make([][]string, 0, len(cmds))
	for _, c := range cmds {
		res = append(res, append([]string{c.Path}, c.Args...))
	}
	return res
}

func TestGrubInstallCommands(t *testing.T) {
	tests := []struct {
		name    string
		g       GrubInstall
		devices []string
		secure  bool
		trusted bool
		want    [][]string
		wantErr bool
	}{
		{
			name:    "legacy x86 per device",
			g:       GrubInstall{Arch: platform.ArchX86_64},
			devices: []string{"/dev/sda", "/dev/sdb"},
			want: [][]string{
				{GrubInstallBin, "--target=i386-pc", "--force", "--skip-fs-probe", "/dev/sda"},
				{GrubInstallBin, "--target=i386-pc", "--force", "--skip-fs-probe", "/dev/sdb"},
			},
		},
		{
			name:    "trusted boot directory",
			g:       GrubInstall{Arch: platform.ArchX86_64},
			devices: []string{"/dev/sda"},
			trusted: true,
			want: [][]string{
				{GrubInstallBin, "--target=i386-pc", "--force", "--skip-fs-probe", "--directory=/usr/lib/trustedgrub2/i386-pc", "/dev/sda"},
			},
		},
		{
			name:   "secure boot uses shim without device",
			g:      GrubInstall{Arch: platform.ArchX86_64, EFI: true, EFIVarsPresent: true},
			secure: true,
			want:   [][]string{{ShimInstallBin, "--config-file=/boot/grub2/grub.cfg"}},
		},
		{
			name: "efi without efivars is removable",
			g:    GrubInstall{Arch: platform.ArchAarch64, EFI: true},
			want: [][]string{{GrubInstallBin, "--target=arm64-efi", "--force", "--skip-fs-probe", "--no-nvram", "--removable"}},
		},
		{
			name: "s390 without device",
			g:    GrubInstall{Arch: platform.ArchS390},
			want: [][]string{{GrubInstallBin, "--target=s390x-emu", "--force", "--skip-fs-probe"}},
		},
		{
			name: "legacy without device installs nothing",
			g:    GrubInstall{Arch: platform.ArchX86_64},
			want: [][]string{},
		},
		{
			name:    "secure boot needs efi",
			g:       GrubInstall{Arch: platform.ArchX86_64},
			secure:  true,
			wantErr: true,
		},
		{
			name:    "trusted boot excludes efi",
			g:       GrubInstall{Arch: platform.ArchX86_64, EFI: true},
			trusted: true,
			wantErr: true,
		},
		{
			name:    "unsupported target",
			g:       GrubInstall{Arch: platform.ArchAarch64},
			devices: []string{"/dev/vda"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds, err := tt.g.Commands(tt.devices, tt.secure, tt.trusted)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedPlatform)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, argv(cmds))
		})
	}
}

func TestCommandsDoNotShareArgs(t *testing.T) {
	cmds, err := GrubInstall{Arch: platform.ArchX86_64}.Commands([]string{"/dev/sda", "/dev/sdb"}, false, false)
	require.NoError(t, err)
	cmds[0].Args[0] = "changed"
	assert.Equal(t, "--target=i386-pc", cmds[1].Args[0])
}

func TestMkconfig(t *testing.T) {
	c := Mkconfig("/boot/grub2/grub.cfg", map[string]string{"LANG": "de_DE.UTF-8"}, []string{"LC_ALL"})
	assert.Equal(t, []string{"-o", "/boot/grub2/grub.cfg"}, c.Args)
	assert.Equal(t, "LANG=de_DE.UTF-8 /usr/sbin/grub2-mkconfig -o /boot/grub2/grub.cfg", c.String())
	assert.Equal(t, "grub2-mkconfig", c.Name())

	env := Environ([]string{"PATH=/bin", "LANG=C", "LC_ALL=en_US", "HOME=/root"}, c)
	assert.Equal(t, []string{"PATH=/bin", "HOME=/root", "LANG=de_DE.UTF-8"}, env)
}

func TestSetDefault(t *testing.T) {
	c := SetDefault("Advanced options>openSUSE")
	assert.Equal(t, SetDefaultBin, c.Path)
	assert.Equal(t, []string{"Advanced options>openSUSE"}, c.Args)
}

func TestPMBR(t *testing.T) {
	assert.Empty(t, PMBR(PMBRNothing, []string{"/dev/sda"}))
	assert.Equal(t, [][]string{
		{PartedBin, "-s", "/dev/sda", "disk_set", "pmbr_boot", "on"},
		{PartedBin, "-s", "/dev/sdb", "disk_set", "pmbr_boot", "on"},
	}, argv(PMBR(PMBRAdd, []string{"/dev/sda", "/dev/sdb"})))
	assert.Equal(t, [][]string{
		{PartedBin, "-s", "/dev/sda", "disk_set", "pmbr_boot", "off"},
	}, argv(PMBR(PMBRRemove, []string{"/dev/sda"})))

	a, err := ParsePMBRAction("")
	require.NoError(t, err)
	assert.Equal(t, PMBRNothing, a)
	_, err = ParsePMBRAction("toggle")
	assert.Error(t, err)
}

func TestDryRunner(t *testing.T) {
	var out bytes.Buffer
	r := &DryRunner{Out: &out}
	cmds := PMBR(PMBRAdd, []string{"/dev/sda"})
	require.NoError(t, RunAll(context.Background(), r, cmds))
	assert.Equal(t, cmds, r.Commands())
	assert.Equal(t, "/usr/sbin/parted -s /dev/sda disk_set pmbr_boot on\n", out.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx, cmds[0]), context.Canceled)
}

func TestExecRunner(t *testing.T) {
	r := NewExecRunner()
	ctx := context.Background()

	require.NoError(t, r.Run(ctx, Command{Path: "/bin/sh", Args: []string{"-c", `test "$LANG" = "xx_YY" && test -z "$LC_ALL"`},
		Env: map[string]string{"LANG": "xx_YY"}, Unset: []string{"LC_ALL"}}))

	err := r.Run(ctx, Command{Path: "/bin/sh", Args: []string{"-c", "echo boom >&2; exit 3"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	assert.Contains(t, err.Error(), "sh failed")
}
