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
	"context"

	"github.com/urfave/cli/v3"
	"k8s.io/utils/ptr"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/install"
)

func installCmd() *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Install GRUB to the given devices",
		ArgsUsage: "[device...]",
		Description: `Set the protective MBR flag and run grub2-install, or shim-install for
secure boot, once per device. Without devices the configured install devices
are used; on s390 and EFI systems GRUB is installed without a device.

  bootcfg install --dry-run /dev/sda`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "efi",
				Usage: "Install the EFI target (default: detected)",
			},
			&cli.BoolFlag{
				Name:  "secure-boot",
				Usage: "Install a signed bootloader through shim",
			},
			&cli.BoolFlag{
				Name:  "trusted-boot",
				Usage: "Install the measured boot GRUB",
			},
			&cli.StringFlag{
				Name:  "pmbr",
				Usage: "Protective MBR boot flag: add, remove or nothing",
			},
			dryRunFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, g, err := loadSystem(ctx, cmd)
			if err != nil {
				return err
			}
			facts, err := probe(ctx, cfg)
			if err != nil {
				return err
			}

			efi := facts.EFI
			if cfg.Install.EFI != nil {
				efi = *cfg.Install.EFI
			}
			if cmd.IsSet("efi") {
				efi = cmd.Bool("efi")
			}
			if cmd.IsSet("secure-boot") {
				g.SecureBoot = ptr.To(cmd.Bool("secure-boot"))
			}
			if cmd.IsSet("trusted-boot") {
				g.TrustedBoot = ptr.To(cmd.Bool("trusted-boot"))
			}
			if ptr.Deref(g.SecureBoot, false) && !facts.SecureBootAvailable() {
				return apperrors.NewWithContext(apperrors.ErrCodeUnsupportedPlatform,
					"secure boot is not available on this machine", map[string]any{"arch": string(facts.Arch)})
			}

			pmbr := cfg.Install.PMBR
			if cmd.IsSet("pmbr") {
				pmbr = cmd.String("pmbr")
			}
			if g.PMBRAction, err = install.ParsePMBRAction(pmbr); err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid --pmbr", err)
			}

			devices := cmd.Args().Slice()
			if len(devices) == 0 {
				devices = cfg.Install.Devices
			}
			gi := install.GrubInstall{
				Arch:           facts.Arch,
				EFI:            efi,
				EFIVarsPresent: facts.WritableEFIVars(),
			}
			return g.Install(ctx, gi, devices, devices)
		},
	}
}
