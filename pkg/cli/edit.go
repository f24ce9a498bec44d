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
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bootcfg/pkg/grub"
)

func serialCmd() *cli.Command {
	return &cli.Command{
		Name:  "serial",
		Usage: "Configure the serial console",
		Commands: []*cli.Command{
			{
				Name:      "enable",
				Usage:     "Use a serial console for GRUB and the kernel",
				ArgsUsage: `"serial --unit=0 --speed=115200 [--parity=no] [--word=8]"`,
				Flags:     []cli.Flag{writeFlag(), dryRunFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
					if args == "" {
						return fmt.Errorf("serial console arguments are required")
					}
					_, g, err := loadSystem(ctx, cmd)
					if err != nil {
						return err
					}
					if err := g.EnableSerialConsole(args); err != nil {
						return err
					}
					return commit(ctx, cmd, g)
				},
			},
			{
				Name:  "disable",
				Usage: "Remove serial console settings",
				Flags: []cli.Flag{writeFlag(), dryRunFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, g, err := loadSystem(ctx, cmd)
					if err != nil {
						return err
					}
					g.DisableSerialConsole()
					return commit(ctx, cmd, g)
				},
			},
		},
	}
}

func mitigationsCmd() *cli.Command {
	return &cli.Command{
		Name:      "mitigations",
		Usage:     "Show or set the CPU mitigations policy",
		ArgsUsage: "[auto|nosmt|off]",
		Flags:     []cli.Flag{writeFlag(), dryRunFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, g, err := loadSystem(ctx, cmd)
			if err != nil {
				return err
			}
			if cmd.Args().Len() == 0 {
				fmt.Fprintln(stdout(cmd), g.CPUMitigations())
				return nil
			}
			m, err := grub.ParseCPUMitigations(cmd.Args().First())
			if err != nil {
				return err
			}
			if err := g.SetCPUMitigations(m); err != nil {
				return err
			}
			return commit(ctx, cmd, g)
		},
	}
}

func menuCmd() *cli.Command {
	return &cli.Command{
		Name:  "menu",
		Usage: "List boot menu entries; the saved default is marked with *",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, g, err := loadSystem(ctx, cmd)
			if err != nil {
				return err
			}
			w := stdout(cmd)
			if g.Sections == nil || len(g.Sections.All) == 0 {
				fmt.Fprintln(w, "no boot menu entries")
				return nil
			}
			for _, name := range g.Sections.Names() {
				mark := " "
				if name == g.Sections.Default {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s\n", mark, name)
			}
			return nil
		},
	}
}
