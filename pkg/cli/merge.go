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

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/oci"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
	"github.com/NVIDIA/bootcfg/pkg/version"
)

func registryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "plain-http",
			Usage: "Use HTTP instead of HTTPS for the registry",
		},
		&cli.BoolFlag{
			Name:  "insecure-tls",
			Usage: "Skip registry TLS certificate verification",
		},
	}
}

func registryOptions(cmd *cli.Command) oci.RegistryOptions {
	return oci.RegistryOptions{
		PlainHTTP:   cmd.Bool("plain-http"),
		InsecureTLS: cmd.Bool("insecure-tls"),
	}
}

func mergeCmd() *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: "Merge a profile over the current configuration",
		Description: `Settings decided by the profile replace the current ones; kernel
parameters are combined with the profile's taking precedence.

The profile may be a YAML, JSON or JSONC file, an http(s) URL, a ConfigMap
(cm://namespace/name) or an OCI artifact (oci://registry/repository:tag).

  bootcfg merge --profile gpu-nodes.yaml --write`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "profile",
				Aliases:  []string{"p"},
				Usage:    "Profile location",
				Required: true,
			},
			kubeconfigFlag(),
			writeFlag(),
			dryRunFlag(),
		}, registryFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, g, err := loadSystem(ctx, cmd)
			if err != nil {
				return err
			}
			p, err := loadProfile(ctx, cmd, cmd.String("profile"))
			if err != nil {
				return err
			}
			override, err := bootloader.FromProfile(p, cfg.BootloaderOptions()...)
			if err != nil {
				return err
			}
			g.Merge(override)
			return commit(ctx, cmd, g)
		},
	}
}

// loadProfile reads and validates a profile. Exported configurations are
// accepted as profiles.
func loadProfile(ctx context.Context, cmd *cli.Command, location string) (*bootloader.Profile, error) {
	var p *bootloader.Profile
	if oci.IsReference(location) {
		ref, err := oci.ParseReference(location)
		if err != nil {
			return nil, err
		}
		data, mediaType, err := oci.Pull(ctx, ref, registryOptions(cmd))
		if err != nil {
			return nil, err
		}
		format := serializer.FormatYAML
		if mediaType == oci.MediaTypeProfileJSON {
			format = serializer.FormatJSON
		}
		p = &bootloader.Profile{}
		if err := serializer.Unmarshal(format, data, p); err != nil {
			return nil, fmt.Errorf("failed to load %q: %w", location, err)
		}
	} else {
		var err error
		if p, err = serializer.FromFileWithKubeconfig[bootloader.Profile](ctx, location, cmd.String("kubeconfig")); err != nil {
			return nil, err
		}
	}

	expected := header.KindBootloaderProfile
	if p.Kind == header.KindBootloaderConfig {
		expected = header.KindBootloaderConfig
	}
	if err := p.Validate(expected, version.Tag); err != nil {
		return nil, fmt.Errorf("invalid profile %q: %w", location, err)
	}
	return p, nil
}
