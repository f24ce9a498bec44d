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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/version"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the current bootloader configuration",
		Description: `Read /etc/default/grub, the boot menu, grubenv and the password script
and print them as a BootloaderConfig document.

  bootcfg show --format json
  bootcfg show --output cm://kube-system/node-boot`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print a short human readable summary instead of the document",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, g, err := loadSystem(ctx, cmd)
			if err != nil {
				return err
			}
			if cmd.Bool("summary") {
				for _, line := range g.Summary() {
					fmt.Fprintln(stdout(cmd), line)
				}
				return nil
			}
			return writeDocument(ctx, cmd, g.ToProfile(header.KindBootloaderConfig, version.Tag))
		},
	}
}
