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

/*
Package agent reads the bootloader configuration of a cluster node.

A Deployer runs bootcfg in a Kubernetes Job pinned to the node. The host
filesystem is mounted read-only at /host and a generated configuration
points every bootloader file below it. The Job runs "bootcfg show" and
stores the BootloaderConfig document in a ConfigMap, which the Deployer
reads back once the Job completes.

# Deployment Strategy

The ServiceAccount, Role and RoleBinding are created idempotently and
reused when present. The agent configuration ConfigMap and the Job are
replaced on every run so each read starts from a clean state.

# Usage Example

	cs, _, err := client.GetKubeClient("")
	if err != nil {
		return err
	}
	d := agent.NewDeployer(cs, agent.Config{
		Namespace: "kube-system",
		JobName:   "bootcfg-agent",
		Image:     "ghcr.io/nvidia/bootcfg:v0.3.0",
		NodeName:  "worker-7",
		Output:    "cm://kube-system/bootcfg-worker-7",
	})
	if err := d.Deploy(ctx); err != nil {
		return err
	}
	defer d.Cleanup(ctx, agent.CleanupOptions{Enabled: true})
	if err := d.WaitForCompletion(ctx, defaults.AgentJobTimeout); err != nil {
		return err
	}
	profile, err := d.GetResult(ctx)

# Required Permissions

Deploy checks with SelfSubjectAccessReview that the caller may create
ServiceAccounts, Roles, RoleBindings, ConfigMaps and Jobs, and delete Jobs,
in the target namespace.
*/
package agent
