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

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is kubernetes.Interface, aliased so callers can pass fakes.
type Interface = kubernetes.Interface

type cached struct {
	client Interface
	config *rest.Config
	err    error
}

var (
	mu      sync.Mutex
	clients = map[string]cached{}
)

// GetKubeClient returns a client for kubeconfig, reusing the one built for
// the same file earlier in the process. An empty kubeconfig is resolved as
// described for ResolveKubeconfig.
func GetKubeClient(kubeconfig string) (Interface, *rest.Config, error) {
	path := ResolveKubeconfig(kubeconfig)

	mu.Lock()
	defer mu.Unlock()
	if c, ok := clients[path]; ok {
		return c.client, c.config, c.err
	}
	cs, cfg, err := BuildKubeClient(path)
	c := cached{config: cfg, err: err}
	if err == nil {
		c.client = cs
	}
	clients[path] = c
	return c.client, c.config, c.err
}

// ResolveKubeconfig picks the kubeconfig file: the explicit path, then
// $KUBECONFIG, then ~/.kube/config when it exists. It returns "" when the
// in-cluster service account should be used.
func ResolveKubeconfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// BuildKubeClient creates an uncached client. An empty kubeconfig means the
// in-cluster configuration.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	var (
		config *rest.Config
		err    error
	)
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	cs, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return cs, config, nil
}
