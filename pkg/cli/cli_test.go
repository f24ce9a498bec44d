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

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
	"github.com/NVIDIA/bootcfg/pkg/grub"
	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
)

const systemDefault = `GRUB_DISTRIBUTOR="openSUSE"
GRUB_DEFAULT="saved"
GRUB_TIMEOUT="5"
GRUB_CMDLINE_LINUX_DEFAULT="splash=silent quiet mitigations=auto"
GRUB_TERMINAL="gfxterm"
GRUB_CMDLINE_LINUX=""
`

const systemMenu = `menuentry 'openSUSE' --class opensuse {
	linux /boot/vmlinuz
}
menuentry 'openSUSE, recovery' {
	linux /boot/vmlinuz single
}
`

type testEnv struct {
	dir    string
	config string
	paths  bootloader.Paths
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	e := &testEnv{
		dir: dir,
		paths: bootloader.Paths{
			Default:             filepath.Join(dir, "etc", "default", "grub"),
			Cfg:                 filepath.Join(dir, "boot", "grub2", "grub.cfg"),
			Env:                 filepath.Join(dir, "boot", "grub2", "grubenv"),
			PasswordScript:      filepath.Join(dir, "etc", "grub.d", "42_password"),
			SysconfigBootloader: filepath.Join(dir, "etc", "sysconfig", "bootloader"),
			SysconfigLanguage:   filepath.Join(dir, "etc", "sysconfig", "language"),
		},
	}
	writeFile(t, e.paths.Default, systemDefault)
	writeFile(t, e.paths.Cfg, systemMenu)
	writeFile(t, e.paths.Env, "saved_entry=openSUSE\n")
	writeFile(t, filepath.Join(dir, "proc", "cmdline"), "BOOT_IMAGE=/boot/vmlinuz root=/dev/sda2 quiet\n")
	require.NoError(t, os.MkdirAll(filepath.Dir(e.paths.PasswordScript), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(e.paths.SysconfigBootloader), 0o755))

	e.config = filepath.Join(dir, "config.yaml")
	writeFile(t, e.config, strings.Join([]string{
		"root: " + dir,
		"arch: x86_64",
		"logLevel: error",
		"paths:",
		"  default: " + e.paths.Default,
		"  cfg: " + e.paths.Cfg,
		"  env: " + e.paths.Env,
		"  passwordScript: " + e.paths.PasswordScript,
		"  sysconfigBootloader: " + e.paths.SysconfigBootloader,
		"  sysconfigLanguage: " + e.paths.SysconfigLanguage,
		"",
	}, "\n"))
	return e
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// run executes bootcfg with args and returns what it printed.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCommand()
	cmd.Writer = &out
	cmd.ErrWriter = &out
	err := cmd.Run(context.Background(), append([]string{name, "--config", e.config}, args...))
	return out.String(), err
}

func (e *testEnv) load(t *testing.T) *grub.Default {
	t.Helper()
	d, err := grub.Load(e.paths.Default)
	require.NoError(t, err)
	return d
}

func TestShow(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "BootloaderConfig"`)
	assert.Contains(t, out, `"kernelParams": "splash=silent quiet mitigations=auto"`)
	assert.Contains(t, out, `"openSUSE, recovery"`)

	out, err = e.run(t, "show", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Timeout: 5")
	assert.Contains(t, out, "Default entry: openSUSE")

	_, err = e.run(t, "show", "--format", "xml")
	assert.Error(t, err)
}

func TestShowToFile(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(e.dir, "config-out.yaml")

	_, err := e.run(t, "show", "--output", path)
	require.NoError(t, err)

	p, err := serializer.FromFile[bootloader.Profile](context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, header.KindBootloaderConfig, p.Kind)
	require.NotNil(t, p.Status)
	assert.Equal(t, []string{"openSUSE", "openSUSE, recovery"}, p.Status.Sections)
}

func TestProposeWithoutWriteLeavesFile(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "propose", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "not written")
	assert.Equal(t, "5", ptr.Deref(e.load(t).Timeout, ""))
}

func TestProposeEmptyWrite(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "propose", "--empty", "--write", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "grub2-mkconfig -o "+e.paths.Cfg)

	d := e.load(t)
	assert.Equal(t, "8", ptr.Deref(d.Timeout, ""))
	assert.Contains(t, d.KernelParams.Serialize(), "quiet")
	assert.Equal(t, "saved", ptr.Deref(d.DefaultEntry, ""))
}

func TestMergeProfile(t *testing.T) {
	e := newTestEnv(t)
	profile := filepath.Join(e.dir, "profile.jsonc")
	writeFile(t, profile, `{
  // boot profile for GPU nodes
  "kind": "BootloaderProfile",
  "apiVersion": "bootcfg.nvidia.com/v1alpha1",
  "spec": {
    "kernelParams": "iommu=pt quiet",
    "timeout": "3",
  },
}`)

	_, err := e.run(t, "merge", "--profile", profile, "--write", "--dry-run")
	require.NoError(t, err)

	d := e.load(t)
	assert.Equal(t, "3", ptr.Deref(d.Timeout, ""))
	assert.Equal(t, "splash=silent mitigations=auto iommu=pt quiet", d.KernelParams.Serialize())
}

func TestMergeRejectsBadProfiles(t *testing.T) {
	e := newTestEnv(t)
	tests := map[string]string{
		"wrong kind":    "kind: Snapshot\napiVersion: bootcfg.nvidia.com/v1alpha1\nspec: {}\n",
		"unknown field": "kind: BootloaderProfile\napiVersion: bootcfg.nvidia.com/v1alpha1\nspec:\n  timeot: \"3\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(e.dir, strings.ReplaceAll(name, " ", "-")+".yaml")
			writeFile(t, path, content)
			_, err := e.run(t, "merge", "--profile", path)
			assert.Error(t, err)
		})
	}

	_, err := e.run(t, "merge")
	assert.Error(t, err)
}

func TestExportMergeRoundTrip(t *testing.T) {
	src := newTestEnv(t)
	_, err := src.run(t, "mitigations", "--write", "--dry-run", "off")
	require.NoError(t, err)

	profile := filepath.Join(src.dir, "export.yaml")
	_, err = src.run(t, "export", "--output", profile)
	require.NoError(t, err)

	dst := newTestEnv(t)
	writeFile(t, dst.paths.Default, "GRUB_TIMEOUT=\"10\"\nGRUB_CMDLINE_LINUX_DEFAULT=\"quiet\"\n")
	_, err = dst.run(t, "merge", "--profile", profile, "--write", "--dry-run")
	require.NoError(t, err)

	d := dst.load(t)
	assert.Equal(t, "5", ptr.Deref(d.Timeout, ""))
	assert.Contains(t, d.KernelParams.Serialize(), "mitigations=off")
}

func TestMitigations(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "mitigations")
	require.NoError(t, err)
	assert.Equal(t, "auto\n", out)

	_, err = e.run(t, "mitigations", "--write", "--dry-run", "nosmt")
	require.NoError(t, err)
	assert.Contains(t, e.load(t).KernelParams.Serialize(), "mitigations=auto,nosmt")

	_, err = e.run(t, "mitigations", "bogus")
	assert.Error(t, err)
}

func TestSerial(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "serial", "enable", "--write", "--dry-run", "serial --unit=1 --speed=38400")
	require.NoError(t, err)
	d := e.load(t)
	assert.Contains(t, d.KernelParams.Serialize(), "console=ttyS1,38400")
	assert.Contains(t, ptr.Deref(d.SerialConsole, ""), "serial --unit=1 --speed=38400")

	_, err = e.run(t, "serial", "disable", "--write", "--dry-run")
	require.NoError(t, err)
	assert.NotContains(t, e.load(t).KernelParams.Serialize(), "console=")

	_, err = e.run(t, "serial", "enable", "--write")
	assert.Error(t, err)
	_, err = e.run(t, "serial", "enable", "tty --speed=fast")
	assert.Error(t, err)
}

func TestMenu(t *testing.T) {
	e := newTestEnv(t)
	out, err := e.run(t, "menu")
	require.NoError(t, err)
	assert.Equal(t, "* openSUSE\n  openSUSE, recovery\n", out)

	require.NoError(t, os.Remove(e.paths.Cfg))
	out, err = e.run(t, "menu")
	require.NoError(t, err)
	assert.Equal(t, "no boot menu entries\n", out)
}

func TestInstall(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "bios with pmbr",
			args: []string{"--pmbr", "add", "/dev/sda"},
			want: []string{"parted -s /dev/sda disk_set pmbr_boot on", "grub2-install --target=i386-pc --force --skip-fs-probe /dev/sda"},
		},
		{
			name: "efi without nvram",
			args: []string{"--efi"},
			want: []string{"--target=x86_64-efi", "--no-nvram --removable"},
		},
		{
			name:    "secure boot on bios",
			args:    []string{"--secure-boot", "/dev/sda"},
			wantErr: true,
		},
		{
			name:    "bad pmbr",
			args:    []string{"--pmbr", "flip", "/dev/sda"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			out, err := e.run(t, append([]string{"install", "--dry-run"}, tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestMetricsFile(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(e.dir, "bootcfg.prom")

	_, err := e.run(t, "--metrics-file", path, "show")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "bootcfg_read_total")
}

func TestConfigErrors(t *testing.T) {
	e := newTestEnv(t)

	cmd := NewCommand()
	cmd.Writer = &bytes.Buffer{}
	err := cmd.Run(context.Background(), []string{name, "--config", filepath.Join(e.dir, "missing.yaml"), "show"})
	assert.Error(t, err)

	writeFile(t, e.config, "logLevel: loud\n")
	_, err = e.run(t, "show")
	assert.Error(t, err)

	require.NoError(t, os.Remove(e.paths.Default))
	writeFile(t, e.config, "root: "+e.dir+"\npaths:\n  default: "+e.paths.Default+"\n")
	_, err = e.run(t, "show")
	assert.Error(t, err)
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    serializer.Format
		wantErr bool
	}{
		{format: "yaml", want: serializer.FormatYAML},
		{format: "json", want: serializer.FormatJSON},
		{format: "table", want: serializer.FormatTable},
		{format: "xml", wantErr: true},
		{format: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{&cli.StringFlag{Name: "format", Value: tt.format}},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.want {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.want)
					}
					return nil
				},
			}
			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}
