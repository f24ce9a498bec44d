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
	"fmt"
	"regexp"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
)

const (
	// DefaultHostRoot is where the node's filesystem is mounted.
	DefaultHostRoot = "/host"

	// agentConfigDir is where the generated configuration is mounted. It
	// is the directory bootcfg reads its configuration from by default.
	agentConfigDir = "/etc/bootcfg"

	labelName      = "app.kubernetes.io/name"
	labelComponent = "app.kubernetes.io/component"
	labelInstance  = "app.kubernetes.io/instance"
	labelHostname  = "kubernetes.io/hostname"
)

var dnsLabel = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// Config describes one agent run.
type Config struct {
	Namespace string
	// ServiceAccountName defaults to JobName.
	ServiceAccountName string
	JobName            string
	Image              string
	ImagePullSecrets   []string

	// NodeName pins the Job to a node. NodeSelector may be used instead.
	NodeName     string
	NodeSelector map[string]string
	Tolerations  []corev1.Toleration

	// Output is the cm://namespace/name the node writes its document to.
	// It must be in Namespace.
	Output string

	// HostRoot is where the node's filesystem is mounted in the container.
	HostRoot string
	Debug    bool
}

// Validate fills defaults and checks required fields.
func (c *Config) Validate() error {
	invalid := func(field, msg string) error {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, msg, map[string]any{"field": field})
	}

	if c.Namespace == "" {
		return invalid("namespace", "namespace is required")
	}
	if !dnsLabel.MatchString(c.JobName) || len(c.JobName) > 52 {
		return invalid("jobName", fmt.Sprintf("job name %q is not a valid DNS label of at most 52 characters", c.JobName))
	}
	if c.Image == "" {
		return invalid("image", "image is required")
	}
	if c.NodeName == "" && len(c.NodeSelector) == 0 {
		return invalid("nodeName", "a node name or node selector is required")
	}

	ns, _, err := serializer.ParseConfigMapURI(c.Output)
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest, "invalid output", err,
			map[string]any{"field": "output"})
	}
	if ns != c.Namespace {
		return invalid("output", fmt.Sprintf("output ConfigMap must be in namespace %q", c.Namespace))
	}

	if c.ServiceAccountName == "" {
		c.ServiceAccountName = c.JobName
	}
	if c.HostRoot == "" {
		c.HostRoot = DefaultHostRoot
	}
	return nil
}

// Deployer runs the agent Job.
type Deployer struct {
	clientset kubernetes.Interface
	config    Config
}

// NewDeployer returns a Deployer for config.
func NewDeployer(clientset kubernetes.Interface, config Config) *Deployer {
	return &Deployer{
		clientset: clientset,
		config:    config,
	}
}

// CleanupOptions controls what Cleanup removes.
type CleanupOptions struct {
	// Enabled removes the Job, its configuration and the RBAC resources.
	Enabled bool
	// RemoveResult also deletes the output ConfigMap.
	RemoveResult bool
}

func (d *Deployer) labels() map[string]string {
	return map[string]string{
		labelName:      "bootcfg",
		labelComponent: "agent",
		labelInstance:  d.config.JobName,
	}
}

func (d *Deployer) configMapName() string {
	return d.config.JobName + "-config"
}
