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
	"path"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/oci"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
	"github.com/NVIDIA/bootcfg/pkg/version"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the current configuration as a reusable profile",
		Description: `Write a BootloaderProfile holding the decided settings of this machine.
The profile can be merged on other machines, optionally after pushing it
to an OCI registry:

  bootcfg export --output gpu-nodes.yaml
  bootcfg export --push oci://ghcr.io/acme/boot-profiles:gpu-nodes`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "push",
				Usage: "Push the profile as an OCI artifact (oci://registry/repository:tag)",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		}, registryFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, g, err := loadSystem(ctx, cmd)
			if err != nil {
				return err
			}
			p := g.ToProfile(header.KindBootloaderProfile, version.Tag)

			target := cmd.String("push")
			if target == "" || cmd.IsSet("output") {
				if err := writeDocument(ctx, cmd, p); err != nil {
					return err
				}
			}
			if target == "" {
				return nil
			}
			return pushProfile(ctx, cmd, target, p)
		},
	}
}

func pushProfile(ctx context.Context, cmd *cli.Command, target string, p any) error {
	ref, err := oci.ParseReference(target)
	if err != nil {
		return err
	}
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}
	mediaType := oci.MediaTypeProfileYAML
	switch format {
	case serializer.FormatJSON:
		mediaType = oci.MediaTypeProfileJSON
	case serializer.FormatTable:
		format = serializer.FormatYAML
	}
	data, err := serializer.Marshal(format, p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
	defer cancel()

	res, err := oci.Push(ctx, ref, data, oci.PushOptions{
		RegistryOptions: registryOptions(cmd),
		MediaType:       mediaType,
		Title:           path.Base(ref.Repository) + "." + string(format),
		Version:         version.Tag,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "pushed %s@%s\n", res.Reference, res.Digest)
	return nil
}
