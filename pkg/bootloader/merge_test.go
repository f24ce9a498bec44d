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

package bootloader

import (
	"testing"

	"github.com/NVIDIA/bootcfg/pkg/grub"
	"github.com/NVIDIA/bootcfg/pkg/install"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

const baseDefault = `GRUB_DISTRIBUTOR="openSUSE"
GRUB_DEFAULT="saved"
GRUB_TIMEOUT="8"
GRUB_CMDLINE_LINUX_DEFAULT="splash=silent resume=/dev/sda2 quiet mitigations=auto"
GRUB_CMDLINE_XEN_DEFAULT="vga=gfx-1024x768x16"
GRUB_TERMINAL="gfxterm"
GRUB_GFXMODE="auto"
GRUB_DISABLE_OS_PROBER="false"
GRUB_ENABLE_CRYPTODISK="y"
GRUB_CMDLINE_LINUX=""
SUSE_BTRFS_SNAPSHOT_BOOTING="true"
`

func newTestGrub2(t *testing.T, text string) *Grub2 {
	t.Helper()
	d, err := grub.Parse(text)
	require.NoError(t, err)
	g := New(WithRunner(&install.DryRunner{}))
	g.Default = d
	return g
}

func withKernel(t *testing.T, params string) *Grub2 {
	t.Helper()
	g := New(WithRunner(&install.DryRunner{}))
	require.NoError(t, g.Default.KernelParams.Replace(params))
	return g
}

func TestMerge_EmptyOverrideIsIdempotent(t *testing.T) {
	g := newTestGrub2(t, baseDefault)
	before, err := g.Default.Render()
	require.NoError(t, err)

	g.Merge(New())

	after, err := g.Default.Render()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMerge_KernelParams(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		override string
		want     string
	}{
		{
			name:     "noresume cancels resume",
			base:     "quiet resume=/dev/sda2",
			override: "noresume",
			want:     "quiet noresume",
		},
		{
			name:     "mitigations cancellation",
			base:     "mitigations=auto quiet",
			override: "mitigations=off",
			want:     "quiet mitigations=off",
		},
		{
			name:     "exact duplicate keeps last",
			base:     "quiet splash",
			override: "splash verbose",
			want:     "quiet splash verbose",
		},
		{
			name:     "same key different value both kept",
			base:     "console=tty1 quiet",
			override: "console=ttyS0,115200",
			want:     "console=tty1 quiet console=ttyS0,115200",
		},
		{
			name:     "empty override keeps base",
			base:     "quiet resume=/dev/sda2",
			override: "",
			want:     "quiet resume=/dev/sda2",
		},
		{
			name:     "noresume keeps bare resume flag",
			base:     "resume quiet",
			override: "noresume",
			want:     "resume quiet noresume",
		},
		{
			name:     "duplicates inside base collapse",
			base:     "quiet quiet splash",
			override: "splash",
			want:     "quiet splash",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := withKernel(t, tt.base)
			g.Merge(withKernel(t, tt.override))
			assert.Equal(t, tt.want, g.Default.KernelParams.Serialize())
		})
	}
}

func TestMerge_NoresumeCancellation(t *testing.T) {
	g := withKernel(t, "quiet resume=/dev/sda2")
	g.Merge(withKernel(t, "noresume"))

	l := g.Default.KernelParams
	assert.False(t, l.Parameter("resume").Present())
	assert.True(t, l.Parameter("noresume").IsFlag())
}

func TestMerge_MitigationsCancellation(t *testing.T) {
	g := withKernel(t, "mitigations=auto quiet")
	g.Merge(withKernel(t, "mitigations=off"))

	l := g.Default.KernelParams
	assert.Equal(t, []string{"off"}, l.Values("mitigations"))
	assert.True(t, l.Parameter("quiet").Present())
}

func TestMerge_XenListsIndependent(t *testing.T) {
	g := newTestGrub2(t, baseDefault)
	other := New()
	require.NoError(t, other.Default.XenKernelParams.Replace("console=hvc0"))

	g.Merge(other)

	assert.Equal(t, "splash=silent resume=/dev/sda2 quiet mitigations=auto", g.Default.KernelParams.Serialize())
	assert.Equal(t, "vga=gfx-1024x768x16", g.Default.XenHypervisorParams.Serialize())
	assert.Equal(t, "console=hvc0", g.Default.XenKernelParams.Serialize())
}

func TestMerge_TriStateBoolean(t *testing.T) {
	tests := []struct {
		name     string
		base     grub.Boolean
		override grub.Boolean
		want     grub.Boolean
	}{
		{"undefined keeps enabled", grub.BoolEnabled, grub.BoolUnset, grub.BoolEnabled},
		{"undefined keeps disabled", grub.BoolDisabled, grub.BoolUnset, grub.BoolDisabled},
		{"undefined keeps unset", grub.BoolUnset, grub.BoolUnset, grub.BoolUnset},
		{"false forces false", grub.BoolEnabled, grub.BoolDisabled, grub.BoolDisabled},
		{"true forces true", grub.BoolDisabled, grub.BoolEnabled, grub.BoolEnabled},
		{"defined over unset", grub.BoolUnset, grub.BoolDisabled, grub.BoolDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			g.Default.Cryptodisk = tt.base
			g.Default.OSProber = tt.base
			other := New()
			other.Default.Cryptodisk = tt.override
			other.Default.OSProber = tt.override

			g.Merge(other)
			assert.Equal(t, tt.want, g.Default.Cryptodisk)
			assert.Equal(t, tt.want, g.Default.OSProber)
		})
	}
}

func TestMerge_Scalars(t *testing.T) {
	g := newTestGrub2(t, baseDefault)
	other := New()
	other.Default.Timeout = ptr.To("5")
	other.Default.Distributor = ptr.To("")
	other.Default.SetTerminal(grub.TerminalConsole)
	other.Default.Generic.Set(grub.KeyGfxpayloadLinux, "text")
	other.Default.Generic.Set("GRUB_BACKGROUND", "/boot/bg.png")

	g.Merge(other)

	d := g.Default
	assert.Equal(t, ptr.To("5"), d.Timeout)
	assert.Equal(t, ptr.To(""), d.Distributor, "explicit empty wins")
	assert.Equal(t, ptr.To("auto"), d.Gfxmode, "unset override keeps base")
	assert.Equal(t, ptr.To("console"), d.RawTerminal())
	v, ok := d.Generic.Get(grub.KeyGfxpayloadLinux)
	assert.True(t, ok)
	assert.Equal(t, "text", v)
	v, ok = d.Generic.Get("GRUB_BACKGROUND")
	assert.True(t, ok, "any generic key is carried")
	assert.Equal(t, "/boot/bg.png", v)

	// the override must not alias the merged document
	*other.Default.Timeout = "1"
	assert.Equal(t, ptr.To("5"), d.Timeout)
}

func TestMerge_UnknownTerminalCarried(t *testing.T) {
	g := New()
	g.Default.SetTerminal(grub.TerminalGfxterm)
	other := New()
	other.Default.SetRawTerminal(ptr.To("vga_text"))

	g.Merge(other)
	assert.Equal(t, ptr.To("vga_text"), g.Default.RawTerminal())
}

func TestMerge_ExplicitMitigations(t *testing.T) {
	g := withKernel(t, "quiet mitigations=auto")
	other := New()
	require.NoError(t, other.SetCPUMitigations(grub.MitigationsOff))

	g.Merge(other)

	assert.Equal(t, "quiet mitigations=off", g.Default.KernelParams.Serialize())
	m, ok := g.ExplicitCPUMitigations()
	assert.True(t, ok)
	assert.Equal(t, grub.MitigationsOff, m)
}

func TestMerge_InheritedMitigationsNotApplied(t *testing.T) {
	g := withKernel(t, "quiet mitigations=off")
	g.Merge(withKernel(t, "splash"))

	assert.Equal(t, grub.MitigationsOff, g.CPUMitigations())
	_, ok := g.ExplicitCPUMitigations()
	assert.False(t, ok)
}

func TestMerge_Password(t *testing.T) {
	pw := &Password{Encrypted: "grub.pbkdf2.sha512.10000.AA.BB"}

	t.Run("override replaces", func(t *testing.T) {
		g := New()
		other := New()
		other.Password = pw
		g.Merge(other)
		require.NotNil(t, g.Password)
		assert.Equal(t, pw.Encrypted, g.Password.Encrypted)
		assert.NotSame(t, pw, g.Password)
	})

	t.Run("missing override removes", func(t *testing.T) {
		g := New()
		g.Password = pw
		g.Merge(New())
		assert.Nil(t, g.Password)
	})
}

func TestMerge_PMBRSectionsAndBootFlags(t *testing.T) {
	g := New()
	g.PMBRAction = install.PMBRAdd
	g.Sections.Default = "openSUSE"
	g.SecureBoot = ptr.To(true)

	g.Merge(New())
	assert.Equal(t, install.PMBRAdd, g.PMBRAction)
	assert.Equal(t, "openSUSE", g.Sections.Default)
	assert.Equal(t, ptr.To(true), g.SecureBoot)
	assert.Nil(t, g.TrustedBoot)

	other := New()
	other.PMBRAction = install.PMBRRemove
	other.Sections.Default = "Advanced options>recovery"
	other.SecureBoot = ptr.To(false)
	other.TrustedBoot = ptr.To(true)

	g.Merge(other)
	assert.Equal(t, install.PMBRRemove, g.PMBRAction)
	assert.Equal(t, "Advanced options>recovery", g.Sections.Default)
	assert.Equal(t, ptr.To(false), g.SecureBoot)
	assert.Equal(t, ptr.To(true), g.TrustedBoot)
}

func TestMerge_Nil(t *testing.T) {
	g := newTestGrub2(t, baseDefault)
	assert.NotPanics(t, func() { g.Merge(nil) })
}
