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

package oci

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
)

// URIScheme prefixes registry locations: oci://registry/repository:tag.
const URIScheme = "oci://"

// DefaultTag is used when a reference carries no tag.
const DefaultTag = "latest"

var registryPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?(:[0-9]+)?$`)

// Reference locates a profile artifact in a registry.
type Reference struct {
	Registry   string
	Repository string
	Tag        string
}

// IsReference reports whether s uses the oci:// scheme.
func IsReference(s string) bool {
	return strings.HasPrefix(s, URIScheme)
}

// ParseReference parses oci://registry/repository[:tag]. A missing tag
// becomes DefaultTag. Digests are not accepted.
func ParseReference(s string) (*Reference, error) {
	if !IsReference(s) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"OCI reference must start with "+URIScheme, map[string]any{"reference": s})
	}
	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(s, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, ok := ref.(reference.Digested); ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference must use a tag, not a digest")
	}

	r := &Reference{
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
		Tag:        DefaultTag,
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		r.Tag = tagged.Tag()
	}
	if err := ValidateRegistryReference(r.Registry, r.Repository); err != nil {
		return nil, err
	}
	return r, nil
}

// ValidateRegistryReference checks registry host and repository path.
func ValidateRegistryReference(registry, repository string) error {
	host := strings.TrimPrefix(strings.TrimPrefix(registry, "https://"), "http://")
	if host == "" || !registryPattern.MatchString(host) {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"invalid registry host", map[string]any{"registry": registry})
	}
	if repository == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "repository is required")
	}
	if _, err := reference.ParseNormalizedNamed(host + "/" + repository); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid repository", err)
	}
	return nil
}

// String returns the oci:// form.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns registry/repository:tag.
func (r *Reference) ImageReference() string {
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// Repo returns registry/repository.
func (r *Reference) Repo() string {
	return r.Registry + "/" + r.Repository
}
