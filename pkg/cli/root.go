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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bootcfg/pkg/config"
	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/logging"
	"github.com/NVIDIA/bootcfg/pkg/version"
)

const name = "bootcfg"

type configKey struct{}

// Execute runs the command line and exits non-zero on failure. Called by
// main.main().
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewCommand returns the root command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Manage the GRUB2 bootloader configuration",
		Version:               version.Current().String(),
		EnableShellCompletion: true,
		Description: `bootcfg reads, proposes, merges and writes /etc/default/grub and
regenerates the boot menu with grub2-mkconfig.

Commands that change the configuration only print a summary unless --write
is given. With --dry-run installer commands are printed instead of run.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				Value:   config.DefaultPath(),
				Sources: cli.EnvVars("BOOTCFG_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("BOOTCFG_LOG_LEVEL", logging.EnvLogLevel),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Resolve system files below this directory",
				Sources: cli.EnvVars("BOOTCFG_ROOT"),
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "Write Prometheus metrics in textfile format after the command",
				Sources: cli.EnvVars("BOOTCFG_METRICS_FILE"),
			},
		},
		Before: initSession,
		After:  writeMetrics,
		Commands: []*cli.Command{
			showCmd(),
			proposeCmd(),
			mergeCmd(),
			serialCmd(),
			mitigationsCmd(),
			menuCmd(),
			installCmd(),
			exportCmd(),
			serveCmd(),
			agentCmd(),
		},
	}
}

// initSession loads the configuration and sets up logging once flags are
// parsed. An explicitly given config file must exist.
func initSession(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	var (
		cfg *config.Config
		err error
	)
	if cmd.IsSet("config") {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return ctx, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if root := cmd.String("root"); root != "" {
		cfg.Root = root
	}
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}

	logging.SetDefaultStructuredLoggerWithLevel(name, version.Tag, cfg.LogLevel)
	slog.Debug("starting",
		"name", name,
		"version", version.Tag,
		"commit", version.Commit,
		"date", version.Date,
		"logLevel", cfg.LogLevel,
		"root", cfg.Root)

	return context.WithValue(ctx, configKey{}, cfg), nil
}

func writeMetrics(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("metrics-file")
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to write metrics", err)
	}
	return nil
}

func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not initialized")
	}
	return cfg, nil
}
