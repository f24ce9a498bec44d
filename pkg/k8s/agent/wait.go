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
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
)

// jobDone reports whether job finished and, if so, whether it failed.
func jobDone(job *batchv1.Job) (bool, error) {
	for _, c := range job.Status.Conditions {
		if c.Status != corev1.ConditionTrue {
			continue
		}
		switch c.Type {
		case batchv1.JobComplete:
			return true, nil
		case batchv1.JobFailed:
			return true, apperrors.NewWithContext(apperrors.ErrCodeInternal, "agent job failed",
				map[string]any{"job": job.Name, "reason": c.Reason, "message": c.Message})
		}
	}
	return false, nil
}

func (d *Deployer) waitForJobCompletion(ctx context.Context, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	jobs := d.clientset.BatchV1().Jobs(d.config.Namespace)
	job, err := jobs.Get(timeoutCtx, d.config.JobName, metav1.GetOptions{})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNotFound, "failed to get agent job", err)
	}
	if done, jerr := jobDone(job); done {
		return jerr
	}

	watcher, err := jobs.Watch(timeoutCtx, metav1.ListOptions{
		FieldSelector:   "metadata.name=" + d.config.JobName,
		ResourceVersion: job.ResourceVersion,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to watch agent job", err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-timeoutCtx.Done():
			return apperrors.NewWithContext(apperrors.ErrCodeTimeout, "timed out waiting for agent job",
				map[string]any{"job": d.config.JobName, "timeout": timeout.String()})

		case event, ok := <-watcher.ResultChan():
			if !ok {
				return apperrors.New(apperrors.ErrCodeInternal, "agent job watch closed unexpectedly")
			}
			if event.Type == watch.Error {
				return apperrors.NewWithContext(apperrors.ErrCodeInternal, "agent job watch error",
					map[string]any{"event": fmt.Sprintf("%v", event.Object)})
			}
			if event.Type == watch.Deleted {
				return apperrors.New(apperrors.ErrCodeNotFound, "agent job was deleted")
			}
			job, ok := event.Object.(*batchv1.Job)
			if !ok || job.Name != d.config.JobName {
				continue
			}
			if done, jerr := jobDone(job); done {
				return jerr
			}
		}
	}
}

// GetPodLogs returns the output of the agent's pod, for diagnosing a
// failed run.
func (d *Deployer) GetPodLogs(ctx context.Context) (string, error) {
	pods, err := d.clientset.CoreV1().Pods(d.config.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelInstance + "=" + d.config.JobName,
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to list agent pods", err)
	}
	if len(pods.Items) == 0 {
		return "", apperrors.NewWithContext(apperrors.ErrCodeNotFound, "no pods found for agent job",
			map[string]any{"job": d.config.JobName})
	}

	pod := pods.Items[0]
	logs, err := d.clientset.CoreV1().Pods(d.config.Namespace).GetLogs(pod.Name, &corev1.PodLogOptions{}).Stream(ctx)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to stream agent logs", err)
	}
	defer logs.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, logs); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to read agent logs", err)
	}
	return buf.String(), nil
}
