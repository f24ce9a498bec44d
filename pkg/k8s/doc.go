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

// Package k8s groups the Kubernetes integration of bootcfg.
//
// # Sub-packages
//
// client: cached clientset construction for a kubeconfig, falling back to
// the in-cluster service account.
//
//	cs, _, err := client.GetKubeClient(kubeconfig)
//
// agent: runs bootcfg in a Job on a node and reads back the
// BootloaderConfig it stores in a ConfigMap.
//
//	d := agent.NewDeployer(cs, agent.Config{
//	    Namespace: "kube-system",
//	    JobName:   "bootcfg-agent",
//	    Image:     "ghcr.io/nvidia/bootcfg:latest",
//	    NodeName:  "worker-7",
//	    Output:    "cm://kube-system/bootcfg-worker-7",
//	})
//
// ConfigMap documents themselves are read and written by the serializer
// package, which uses the client sub-package.
package k8s
