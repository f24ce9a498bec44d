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
	"fmt"
	"maps"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/bootcfg/pkg/config"
	"github.com/NVIDIA/bootcfg/pkg/defaults"
	"github.com/NVIDIA/bootcfg/pkg/serializer"
)

const agentConfigKey = "config.yaml"

// agentConfig points every bootloader file below the host mount.
func (d *Deployer) agentConfig() ([]byte, error) {
	c := config.ForRoot(d.config.HostRoot)
	if d.config.Debug {
		c.LogLevel = "debug"
	}
	return c.Marshal()
}

func (d *Deployer) ensureAgentConfig(ctx context.Context) error {
	data, err := d.agentConfig()
	if err != nil {
		return err
	}
	cm := &corev1.ConfigMap{
		ObjectMeta: d.objectMeta(d.configMapName()),
		Data:       map[string]string{agentConfigKey: string(data)},
	}

	api := d.clientset.CoreV1().ConfigMaps(d.config.Namespace)
	if _, err := api.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
		if ignoreAlreadyExists(err) != nil {
			return err
		}
		_, err = api.Update(ctx, cm, metav1.UpdateOptions{})
		return err
	}
	return nil
}

func (d *Deployer) deleteAgentConfig(ctx context.Context) error {
	err := d.clientset.CoreV1().ConfigMaps(d.config.Namespace).
		Delete(ctx, d.configMapName(), metav1.DeleteOptions{})
	return ignoreNotFound(err)
}

func (d *Deployer) deleteResult(ctx context.Context) error {
	namespace, name, err := serializer.ParseConfigMapURI(d.config.Output)
	if err != nil {
		return err
	}
	return ignoreNotFound(d.clientset.CoreV1().ConfigMaps(namespace).Delete(ctx, name, metav1.DeleteOptions{}))
}

// ensureJob replaces any previous Job of the same name.
func (d *Deployer) ensureJob(ctx context.Context) error {
	err := d.clientset.BatchV1().Jobs(d.config.Namespace).Delete(ctx, d.config.JobName, metav1.DeleteOptions{
		PropagationPolicy: ptr.To(metav1.DeletePropagationForeground),
	})
	if ignoreNotFound(err) != nil {
		return fmt.Errorf("failed to delete existing Job: %w", err)
	}
	if err == nil {
		if werr := d.waitForJobDeletion(ctx); werr != nil {
			return fmt.Errorf("timeout waiting for Job deletion: %w", werr)
		}
	}

	_, err = d.clientset.BatchV1().Jobs(d.config.Namespace).Create(ctx, d.buildJob(), metav1.CreateOptions{})
	return err
}

func (d *Deployer) nodeSelector() map[string]string {
	sel := maps.Clone(d.config.NodeSelector)
	if d.config.NodeName != "" {
		if sel == nil {
			sel = map[string]string{}
		}
		sel[labelHostname] = d.config.NodeName
	}
	return sel
}

func (d *Deployer) tolerations() []corev1.Toleration {
	if len(d.config.Tolerations) > 0 {
		return d.config.Tolerations
	}
	// the target may be a tainted control plane or accelerator node
	return []corev1.Toleration{{Operator: corev1.TolerationOpExists}}
}

func (d *Deployer) args() []string {
	return []string{"show", "--output", d.config.Output, "--format", string(serializer.FormatYAML)}
}

func (d *Deployer) buildJob() *batchv1.Job {
	labels := d.labels()
	return &batchv1.Job{
		ObjectMeta: d.objectMeta(d.config.JobName),
		Spec: batchv1.JobSpec{
			Completions:             ptr.To(int32(1)),
			Parallelism:             ptr.To(int32(1)),
			BackoffLimit:            ptr.To(int32(0)),
			TTLSecondsAfterFinished: ptr.To(int32(3600)),
			ActiveDeadlineSeconds:   ptr.To(int64(defaults.AgentJobTimeout.Seconds())),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					ServiceAccountName: d.config.ServiceAccountName,
					RestartPolicy:      corev1.RestartPolicyNever,
					NodeSelector:       d.nodeSelector(),
					Tolerations:        d.tolerations(),
					ImagePullSecrets:   toLocalObjectReferences(d.config.ImagePullSecrets),
					SecurityContext: &corev1.PodSecurityContext{
						RunAsUser:  ptr.To(int64(0)),
						RunAsGroup: ptr.To(int64(0)),
					},
					Containers: []corev1.Container{
						{
							Name:  "bootcfg",
							Image: d.config.Image,
							Args:  d.args(),
							Env: []corev1.EnvVar{
								{
									Name: "NODE_NAME",
									ValueFrom: &corev1.EnvVarSource{
										FieldRef: &corev1.ObjectFieldSelector{FieldPath: "spec.nodeName"},
									},
								},
							},
							Resources: corev1.ResourceRequirements{
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("50m"),
									corev1.ResourceMemory: resource.MustParse("64Mi"),
								},
								Limits: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("500m"),
									corev1.ResourceMemory: resource.MustParse("256Mi"),
								},
							},
							SecurityContext: &corev1.SecurityContext{
								ReadOnlyRootFilesystem:   ptr.To(true),
								AllowPrivilegeEscalation: ptr.To(false),
								Capabilities: &corev1.Capabilities{
									Drop: []corev1.Capability{"ALL"},
								},
							},
							VolumeMounts: []corev1.VolumeMount{
								{Name: "host", MountPath: d.config.HostRoot, ReadOnly: true},
								{Name: "config", MountPath: agentConfigDir, ReadOnly: true},
							},
						},
					},
					Volumes: []corev1.Volume{
						{
							Name: "host",
							VolumeSource: corev1.VolumeSource{
								HostPath: &corev1.HostPathVolumeSource{
									Path: "/",
									Type: ptr.To(corev1.HostPathDirectory),
								},
							},
						},
						{
							Name: "config",
							VolumeSource: corev1.VolumeSource{
								ConfigMap: &corev1.ConfigMapVolumeSource{
									LocalObjectReference: corev1.LocalObjectReference{Name: d.configMapName()},
								},
							},
						},
					},
				},
			},
		},
	}
}

func (d *Deployer) deleteJob(ctx context.Context) error {
	err := d.clientset.BatchV1().Jobs(d.config.Namespace).Delete(ctx, d.config.JobName, metav1.DeleteOptions{
		PropagationPolicy: ptr.To(metav1.DeletePropagationForeground),
	})
	return ignoreNotFound(err)
}

func (d *Deployer) waitForJobDeletion(ctx context.Context) error {
	return wait.PollUntilContextTimeout(ctx, defaults.AgentPollInterval, defaults.AgentJobDeletionTimeout, true,
		func(ctx context.Context) (bool, error) {
			_, err := d.clientset.BatchV1().Jobs(d.config.Namespace).Get(ctx, d.config.JobName, metav1.GetOptions{})
			if err == nil {
				return false, nil
			}
			if ignoreNotFound(err) == nil {
				return true, nil
			}
			return false, err
		},
	)
}

func toLocalObjectReferences(names []string) []corev1.LocalObjectReference {
	if len(names) == 0 {
		return nil
	}
	refs := make([]corev1.LocalObjectReference, len(names))
	for i, name := range names {
		refs[i] = corev1.LocalObjectReference{Name: name}
	}
	return refs
}
