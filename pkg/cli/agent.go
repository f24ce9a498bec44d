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
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/k8s/agent"
	"github.com/NVIDIA/bootcfg/pkg/k8s/client"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
	"github.com/NVIDIA/bootcfg/pkg/version"
)

func agentImage() string {
	tag := version.Tag
	if tag == "" || tag == "dev" {
		tag = "latest"
	}
	return defaults.AgentImage + ":" + tag
}

// parseNodeSelector turns key=value pairs into a selector.
func parseNodeSelector(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	sel := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid node selector %q, expected key=value", p), map[string]any{"selector": p})
		}
		sel[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return sel, nil
}

func resultConfigMap(namespace, node string) string {
	name := "bootcfg-agent-result"
	if node != "" {
		name = "bootcfg-" + node
	}
	return serializer.ConfigMapURIScheme + namespace + "/" + name
}

func agentConfigFromFlags(cmd *cli.Command, debug bool) (agent.Config, error) {
	sel, err := parseNodeSelector(cmd.StringSlice("node-selector"))
	if err != nil {
		return agent.Config{}, err
	}
	ns := cmd.String("namespace")
	out := cmd.String("configmap")
	if out == "" {
		out = resultConfigMap(ns, cmd.String("node"))
	}
	ac := agent.Config{
		Namespace:        ns,
		JobName:          cmd.String("job-name"),
		Image:            cmd.String("image"),
		ImagePullSecrets: cmd.StringSlice("image-pull-secret"),
		NodeName:         cmd.String("node"),
		NodeSelector:     sel,
		Output:           out,
		Debug:            debug,
	}
	return ac, ac.Validate()
}

func agentCmd() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Read the bootloader configuration of a Kubernetes node",
		Description: `Run bootcfg in a Job on the node, with the host filesystem mounted
read-only, and print the BootloaderConfig it reports.

  bootcfg agent --node worker-7
  bootcfg agent --node worker-7 --format json --output worker-7.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "node",
				Usage: "Node to read",
			},
			&cli.StringSliceFlag{
				Name:  "node-selector",
				Usage: "Node selector as key=value, instead of or in addition to --node",
			},
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Value:   "kube-system",
				Usage:   "Namespace for the Job and its result",
			},
			&cli.StringFlag{
				Name:  "image",
				Value: agentImage(),
				Usage: "bootcfg image to run",
			},
			&cli.StringSliceFlag{
				Name:  "image-pull-secret",
				Usage: "Image pull secret name",
			},
			&cli.StringFlag{
				Name:  "job-name",
				Value: "bootcfg-agent",
				Usage: "Name of the Job and its RBAC resources",
			},
			&cli.StringFlag{
				Name:  "configmap",
				Usage: "ConfigMap the node writes to (cm://namespace/name). Default: cm://<namespace>/bootcfg-<node>",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.AgentJobTimeout,
				Usage: "How long to wait for the Job",
			},
			&cli.BoolFlag{
				Name:  "cleanup",
				Value: true,
				Usage: "Remove the Job and RBAC resources when done",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}
			ac, err := agentConfigFromFlags(cmd, strings.EqualFold(cfg.LogLevel, "debug"))
			if err != nil {
				return err
			}

			cs, _, err := client.GetKubeClient(cmd.String("kubeconfig"))
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to get kubernetes client", err)
			}

			d := agent.NewDeployer(cs, ac)
			if cmd.Bool("cleanup") {
				defer func() {
					if cerr := d.Cleanup(context.WithoutCancel(ctx), agent.CleanupOptions{Enabled: true}); cerr != nil {
						slog.Warn("failed to clean up agent", "error", cerr)
					}
				}()
			}
			if err := d.Deploy(ctx); err != nil {
				return err
			}

			slog.Info("waiting for agent", "node", ac.NodeName, "job", ac.JobName, "namespace", ac.Namespace)
			if err := d.WaitForCompletion(ctx, cmd.Duration("timeout")); err != nil {
				if logs, lerr := d.GetPodLogs(ctx); lerr == nil {
					fmt.Fprintln(cmd.Root().ErrWriter, logs)
				}
				return err
			}

			p, err := d.GetResult(ctx)
			if err != nil {
				return err
			}
			return writeDocument(ctx, cmd, p)
		},
	}
}
