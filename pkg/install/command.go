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
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
	"github.com/NVIDIA/bootcfg/pkg/platform"
)

// ErrUnsupportedPlatform is returned when no GRUB target fits the
// architecture and firmware combination.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Installer binaries.
const (
	GrubInstallBin = "/usr/sbin/grub2-install"
	ShimInstallBin = "/usr/sbin/shim-install"
	MkconfigBin    = "/usr/sbin/grub2-mkconfig"
	SetDefaultBin  = "/usr/sbin/grub2-set-default"
	PartedBin      = "/usr/sbin/parted"

	trustedGrubDir = "/usr/lib/trustedgrub2"
)

// Command is a fully assembled process invocation.
type Command struct {
	Path string
	Args []string
	// Env is added to the inherited environment.
	Env map[string]string
	// Unset is removed from the inherited environment.
	Unset   []string
	Timeout time.Duration
}

// Name is the base name of the binary.
func (c Command) Name() string {
	return c.Path[strings.LastIndex(c.Path, "/")+1:]
}

// String renders the command as a shell-like line for logs and dry runs.
func (c Command) String() string {
	var sb strings.Builder
	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		fmt.Fprintf(&sb, "%s=%s ", k, c.Env[k])
	}
	sb.WriteString(c.Path)
	for _, a := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(a)
	}
	return sb.String()
}

// GrubInstall builds grub2-install or shim-install invocations.
type GrubInstall struct {
	Arch platform.Arch
	EFI  bool
	// EFIVarsPresent false means firmware boot entries cannot be stored and
	// GRUB goes to the removable media path.
	EFIVarsPresent bool
}

// Target returns the grub2-install --target for the platform.
func (g GrubInstall) Target() (string, error) {
	switch g.Arch {
	case platform.ArchI386:
		if g.EFI {
			return "i386-efi", nil
		}
		return "i386-pc", nil
	case platform.ArchX86_64:
		if g.EFI {
			return "x86_64-efi", nil
		}
		return "i386-pc", nil
	case platform.ArchPPC:
		if g.EFI {
			return "", fmt.Errorf("%w: EFI on ppc", ErrUnsupportedPlatform)
		}
		return "powerpc-ieee1275", nil
	case platform.ArchS390:
		if g.EFI {
			return "", fmt.Errorf("%w: EFI on s390", ErrUnsupportedPlatform)
		}
		return "s390x-emu", nil
	case platform.ArchAarch64:
		if !g.EFI {
			return "", fmt.Errorf("%w: aarch64 supports only EFI", ErrUnsupportedPlatform)
		}
		return "arm64-efi", nil
	default:
		return "", fmt.Errorf("%w: architecture %q", ErrUnsupportedPlatform, g.Arch)
	}
}

// Commands returns one invocation per device. Without devices GRUB is
// installed only where no device is needed (s390 and EFI); otherwise the
// result is empty because the user chose not to install a boot record.
func (g GrubInstall) Commands(devices []string, secureBoot, trustedBoot bool) ([]Command, error) {
	if secureBoot && !g.EFI {
		return nil, fmt.Errorf("%w: secure boot requires EFI", ErrUnsupportedPlatform)
	}
	if trustedBoot && g.EFI {
		return nil, fmt.Errorf("%w: trusted boot is not available with EFI", ErrUnsupportedPlatform)
	}

	base := Command{Timeout: defaults.InstallTimeout}
	if secureBoot {
		base.Path = ShimInstallBin
		base.Args = []string{"--config-file=" + defaults.GrubCfgPath}
	} else {
		target, err := g.Target()
		if err != nil {
			return nil, err
		}
		base.Path = GrubInstallBin
		base.Args = []string{"--target=" + target, "--force", "--skip-fs-probe"}
		if trustedBoot {
			base.Args = append(base.Args, "--directory="+trustedGrubDir+"/"+target)
		}
	}
	if g.EFI && !g.EFIVarsPresent {
		base.Args = append(base.Args, "--no-nvram", "--removable")
	}

	if len(devices) == 0 {
		if g.Arch == platform.ArchS390 || g.EFI {
			return []Command{base}, nil
		}
		return nil, nil
	}

	cmds := make([]Command, 0, len(devices))
	for _, dev := range devices {
		c := base
		c.Args = append(slices.Clone(base.Args), dev)
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// Mkconfig regenerates the boot menu at output with the given locale
// overrides.
func Mkconfig(output string, env map[string]string, unset []string) Command {
	return Command{
		Path:    MkconfigBin,
		Args:    []string{"-o", output},
		Env:     maps.Clone(env),
		Unset:   slices.Clone(unset),
		Timeout: defaults.MkconfigTimeout,
	}
}

// SetDefault stores the default menu entry in grubenv.
func SetDefault(entry string) Command {
	return Command{
		Path:    SetDefaultBin,
		Args:    []string{entry},
		Timeout: defaults.SetDefaultTimeout,
	}
}

// PMBRAction is what to do with the protective MBR boot flag on GPT disks.
type PMBRAction string

const (
	PMBRNothing PMBRAction = "nothing"
	PMBRAdd     PMBRAction = "add"
	PMBRRemove  PMBRAction = "remove"
)

// ParsePMBRAction accepts nothing, add and remove. Empty means nothing.
func ParsePMBRAction(s string) (PMBRAction, error) {
	switch a := PMBRAction(s); a {
	case "":
		return PMBRNothing, nil
	case PMBRNothing, PMBRAdd, PMBRRemove:
		return a, nil
	default:
		return "", fmt.Errorf("unknown PMBR action %q, expected nothing, add or remove", s)
	}
}

// PMBR returns the parted invocations applying action to every disk.
func PMBR(action PMBRAction, disks []string) []Command {
	var state string
	switch action {
	case PMBRAdd:
		state = "on"
	case PMBRRemove:
		state = "off"
	default:
		return nil
	}
	cmds := make([]Command, 0, len(disks))
	for _, d := range disks {
		cmds = append(cmds, Command{
			Path:    PartedBin,
			Args:    []string{"-s", d, "disk_set", "pmbr_boot", state},
			Timeout: defaults.PartedTimeout,
		})
	}
	return cmds
}
