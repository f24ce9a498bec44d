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
	"golang.org/x/time/rate"

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
	"github.com/NVIDIA/bootcfg/pkg/server"
	"github.com/NVIDIA/bootcfg/pkg/version"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the node's bootloader configuration over HTTP",
		Description: `Start a read-only HTTP endpoint. The configuration is read from disk on
every request.

  GET /v1/config?format=json|yaml   BootloaderConfig document
  GET /v1/summary                   short summary
  GET /health, /ready, /metrics

  bootcfg serve --port 9100`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Usage:   "Listen address",
				Sources: cli.EnvVars("BOOTCFG_ADDRESS"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Listen port (defaults to $PORT or 8080)",
				Sources: cli.EnvVars("BOOTCFG_PORT"),
			},
			&cli.Float64Flag{
				Name:  "rate-limit",
				Usage: "API requests per second",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  "rate-limit-burst",
				Usage: "API request burst",
				Value: 200,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}

			sc := server.NewConfig()
			sc.Name = name
			sc.Version = version.Tag
			sc.Address = cmd.String("address")
			if cmd.IsSet("port") {
				sc.Port = cmd.Int("port")
			}
			sc.RateLimit = rate.Limit(cmd.Float64("rate-limit"))
			sc.RateLimitBurst = cmd.Int("rate-limit-burst")
			sc.Handlers = server.Handlers(func(ctx context.Context) (*bootloader.Grub2, error) {
				g := newGrub2(cfg, cmd)
				if err := g.Read(ctx); err != nil {
					return nil, err
				}
				return g, nil
			}, version.Tag)

			return server.New(server.WithConfig(sc)).Start(ctx)
		},
	}
}
