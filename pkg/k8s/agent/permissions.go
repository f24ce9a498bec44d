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
	"strings"

	authv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
)

// PermissionCheck is the outcome of one access review.
type PermissionCheck struct {
	Resource  string
	Verb      string
	Namespace string
	Allowed   bool
	Reason    string
}

// CheckPermissions verifies the caller can deploy and clean up the agent.
// All checks are returned, along with an error naming the missing ones.
func (d *Deployer) CheckPermissions(ctx context.Context) ([]PermissionCheck, error) {
	ns := d.config.Namespace
	required := []struct {
		resource string
		verb     string
	}{
		{"serviceaccounts", "create"},
		{"roles", "create"},
		{"rolebindings", "create"},
		{"configmaps", "create"},
		{"configmaps", "get"},
		{"jobs", "create"},
		{"jobs", "delete"},
		{"pods", "list"},
	}

	checks := make([]PermissionCheck, 0, len(required))
	var missing []string
	for _, r := range required {
		allowed, reason, err := d.checkPermission(ctx, r.resource, r.verb, ns)
		if err != nil {
			return checks, apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("failed to check permission to %s %s", r.verb, r.resource), err)
		}
		checks = append(checks, PermissionCheck{
			Resource:  r.resource,
			Verb:      r.verb,
			Namespace: ns,
			Allowed:   allowed,
			Reason:    reason,
		})
		if !allowed {
			missing = append(missing, r.verb+" "+r.resource)
		}
	}

	if len(missing) > 0 {
		return checks, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("missing required permissions in namespace %q: %s", ns, strings.Join(missing, ", ")),
			map[string]any{"missing": missing})
	}
	return checks, nil
}

func (d *Deployer) checkPermission(ctx context.Context, resource, verb, namespace string) (bool, string, error) {
	review := &authv1.SelfSubjectAccessReview{
		Spec: authv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authv1.ResourceAttributes{
				Verb:      verb,
				Resource:  resource,
				Namespace: namespace,
			},
		},
	}

	result, err := d.clientset.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, "", err
	}
	return result.Status.Allowed, result.Status.Reason, nil
}
