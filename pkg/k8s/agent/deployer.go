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

package agent

import (
	"context"
	"log/slog"
	"time"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
)

// Deploy validates the configuration, checks permissions and creates the
// RBAC resources, the agent configuration and the Job.
func (d *Deployer) Deploy(ctx context.Context) error {
	if err := d.config.Validate(); err != nil {
		return err
	}

	if _, err := d.CheckPermissions(ctx); err != nil {
		return err
	}

	steps := []struct {
		what string
		fn   func(context.Context) error
	}{
		{"ServiceAccount", d.ensureServiceAccount},
		{"Role", d.ensureRole},
		{"RoleBinding", d.ensureRoleBinding},
		{"agent configuration", d.ensureAgentConfig},
		{"Job", d.ensureJob},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return apperrors.WrapWithContext(apperrors.ErrCodeInternal, "failed to create "+s.what, err,
				map[string]any{"namespace": d.config.Namespace, "job": d.config.JobName})
		}
	}

	slog.Debug("agent deployed",
		"namespace", d.config.Namespace,
		"job", d.config.JobName,
		"node", d.config.NodeName,
		"output", d.config.Output)
	return nil
}

// WaitForCompletion blocks until the Job succeeds or fails.
func (d *Deployer) WaitForCompletion(ctx context.Context, timeout time.Duration) error {
	return d.waitForJobCompletion(ctx, timeout)
}

// GetResult reads the BootloaderConfig the node wrote.
func (d *Deployer) GetResult(ctx context.Context) (*bootloader.Profile, error) {
	namespace, name, err := serializer.ParseConfigMapURI(d.config.Output)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid output", err)
	}

	data, format, err := serializer.ReadConfigMap(ctx, d.clientset, namespace, name)
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeNotFound, "agent result not found", err,
				map[string]any{"configMap": d.config.Output})
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to read agent result", err)
	}

	var p bootloader.Profile
	if err := serializer.Unmarshal(format, data, &p); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid agent result", err)
	}
	if p.Kind != header.KindBootloaderConfig {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "agent result is not a BootloaderConfig",
			map[string]any{"kind": string(p.Kind)})
	}
	return &p, nil
}

// Cleanup removes what Deploy created. Nothing is removed unless enabled,
// which keeps the resources around for debugging.
func (d *Deployer) Cleanup(ctx context.Context, opts CleanupOptions) error {
	if !opts.Enabled {
		return nil
	}
	if err := d.config.Validate(); err != nil {
		return err
	}

	steps := []struct {
		what string
		fn   func(context.Context) error
	}{
		{"Job", d.deleteJob},
		{"agent configuration", d.deleteAgentConfig},
		{"RoleBinding", d.deleteRoleBinding},
		{"Role", d.deleteRole},
		{"ServiceAccount", d.deleteServiceAccount},
	}
	if opts.RemoveResult {
		steps = append(steps, struct {
			what string
			fn   func(context.Context) error
		}{"result", d.deleteResult})
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to delete "+s.what, err)
		}
	}
	return nil
}

func ignoreAlreadyExists(err error) error {
	if k8serrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

func ignoreNotFound(err error) error {
	if k8serrors.IsNotFound(err) {
		return nil
	}
	return err
}
