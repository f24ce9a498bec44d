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
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
	"github.com/NVIDIA/bootcfg/pkg/config"
	"github.com/NVIDIA/bootcfg/pkg/install"
	"github.com/NVIDIA/bootcfg/pkg/k8s/client"
	"github.com/NVIDIA/bootcfg/pkg/platform"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path or ConfigMap URI (cm://namespace/name). Default: stdout",
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Usage:   "Path to kubeconfig for ConfigMap locations",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
}

func writeFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "write",
		Aliases: []string{"w"},
		Usage:   "Persist the configuration and regenerate the boot menu",
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Print installer commands instead of running them",
	}
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

func stdout(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func runnerFor(cmd *cli.Command) install.Runner {
	if cmd.Bool("dry-run") {
		return &install.DryRunner{Out: stdout(cmd)}
	}
	return install.NewExecRunner()
}

func newGrub2(cfg *config.Config, cmd *cli.Command) *bootloader.Grub2 {
	opts := append(cfg.BootloaderOptions(),
		bootloader.WithRunner(runnerFor(cmd)),
		bootloader.WithLogger(slog.Default()))
	return bootloader.New(opts...)
}

// loadSystem reads the current configuration.
func loadSystem(ctx context.Context, cmd *cli.Command) (*config.Config, *bootloader.Grub2, error) {
	cfg, err := configFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	g := newGrub2(cfg, cmd)
	if err := g.Read(ctx); err != nil {
		return nil, nil, err
	}
	return cfg, g, nil
}

func probe(ctx context.Context, cfg *config.Config) (*platform.Facts, error) {
	f, err := platform.NewProber(cfg.ProberOptions()...).Probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to probe platform: %w", err)
	}
	return f, nil
}

// commit writes g when --write is set, otherwise prints its summary.
func commit(ctx context.Context, cmd *cli.Command, g *bootloader.Grub2) error {
	if cmd.Bool("write") {
		return g.Write(ctx)
	}
	w := stdout(cmd)
	for _, line := range g.Summary() {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "(not written, use --write to apply)")
	return nil
}

// writeDocument serializes doc to --output in --format.
func writeDocument(ctx context.Context, cmd *cli.Command, doc any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	var ser serializer.Serializer
	switch out := strings.TrimSpace(cmd.String("output")); {
	case out == "":
		ser = serializer.NewWriter(format, stdout(cmd))
	case strings.HasPrefix(out, serializer.ConfigMapURIScheme):
		cs, _, cerr := client.GetKubeClient(cmd.String("kubeconfig"))
		if cerr != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", cerr)
		}
		s, serr := serializer.NewFileWriterOrStdout(format, out)
		if serr != nil {
			return serr
		}
		ser = s.(*serializer.ConfigMapWriter).WithKubeClient(cs)
	default:
		if ser, err = serializer.NewFileWriterOrStdout(format, out); err != nil {
			return err
		}
	}
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}()

	return ser.Serialize(ctx, doc)
}
