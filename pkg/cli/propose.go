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

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
)

func proposeCmd() *cli.Command {
	return &cli.Command{
		Name:  "propose",
		Usage: "Fill in proposed defaults for this machine",
		Description: `Probe the platform and propose terminal, timeout, kernel command line,
resume device, serial console and boot state. Settings already present are
kept unless --empty starts from a blank configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "empty",
				Usage: "Ignore the current configuration",
			},
			writeFlag(),
			dryRunFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}
			var g *bootloader.Grub2
			if cmd.Bool("empty") {
				g = newGrub2(cfg, cmd)
			} else if _, g, err = loadSystem(ctx, cmd); err != nil {
				return err
			}

			facts, err := probe(ctx, cfg)
			if err != nil {
				return err
			}
			p := &bootloader.Proposer{
				Facts:    facts,
				Swap:     cfg.Swap(),
				Resolver: cfg.Resolver(),
			}
			if err := g.Propose(ctx, p); err != nil {
				return err
			}
			return commit(ctx, cmd, g)
		},
	}
}
