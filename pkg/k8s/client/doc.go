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

// Package client builds Kubernetes clients for exporting configurations
// to ConfigMaps.
//
// Clients are cached per kubeconfig file for the life of the process:
//
//	cs, _, err := client.GetKubeClient("")
//	if err != nil {
//		return err
//	}
//	cm, err := cs.CoreV1().ConfigMaps("kube-system").Get(ctx, "bootcfg", metav1.GetOptions{})
//
// An empty kubeconfig resolves to $KUBECONFIG, then ~/.kube/config, then the
// in-cluster service account.
package client
