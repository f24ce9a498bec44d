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
	"context"
	"crypto/tls"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
)

const (
	// ArtifactType marks manifests holding a bootloader profile.
	ArtifactType = "application/vnd.nvidia.bootcfg.profile"
	// MediaTypeProfileYAML is the layer media type of a YAML profile.
	MediaTypeProfileYAML = "application/vnd.nvidia.bootcfg.profile.v1+yaml"
	// MediaTypeProfileJSON is the layer media type of a JSON profile.
	MediaTypeProfileJSON = "application/vnd.nvidia.bootcfg.profile.v1+json"
)

// RegistryOptions controls the registry connection.
type RegistryOptions struct {
	// PlainHTTP uses HTTP instead of HTTPS.
	PlainHTTP bool
	// InsecureTLS skips certificate verification.
	InsecureTLS bool
}

// PushOptions describes a profile artifact.
type PushOptions struct {
	RegistryOptions
	// MediaType of the profile layer, MediaTypeProfileYAML when empty.
	MediaType string
	// Title is stored as org.opencontainers.image.title on the layer.
	Title string
	// Version is stored as org.opencontainers.image.version.
	Version string
	// Created overrides the creation timestamp for reproducible pushes.
	Created string
}

// PushResult is the outcome of a push.
type PushResult struct {
	Digest    string
	Reference string
}

// Push uploads data as a single-layer profile artifact to ref.
func Push(ctx context.Context, ref *Reference, data []byte, opts PushOptions) (*PushResult, error) {
	repo, err := newRepository(ref, opts.RegistryOptions)
	if err != nil {
		return nil, err
	}
	slog.Info("pushing profile", "reference", ref.String(), "size", len(data))
	res, err := PushTo(ctx, repo, ref.Tag, data, opts)
	if err != nil {
		return nil, err
	}
	res.Reference = ref.ImageReference()
	return res, nil
}

// PushTo packs data into a local store and copies it to dst under tag.
func PushTo(ctx context.Context, dst oras.Target, tag string, data []byte, opts PushOptions) (*PushResult, error) {
	if tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push a profile")
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "profile is empty")
	}

	mediaType := opts.MediaType
	if mediaType == "" {
		mediaType = MediaTypeProfileYAML
	}

	store := memory.New()
	layer, err := oras.PushBytes(ctx, store, mediaType, data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to stage profile", err)
	}
	if opts.Title != "" {
		layer.Annotations = map[string]string{ociv1.AnnotationTitle: opts.Title}
	}

	created := opts.Created
	if created == "" {
		created = time.Now().UTC().Format(time.RFC3339)
	}
	annotations := map[string]string{
		ociv1.AnnotationCreated: created,
		ociv1.AnnotationVendor:  "NVIDIA",
		ociv1.AnnotationSource:  "https://github.com/NVIDIA/bootcfg",
	}
	if opts.Version != "" {
		annotations[ociv1.AnnotationVersion] = opts.Version
	}

	manifest, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layer},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := store.Tag(ctx, manifest, tag); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to tag manifest", err)
	}

	desc, err := oras.Copy(ctx, store, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to push profile", err)
	}
	return &PushResult{Digest: desc.Digest.String(), Reference: tag}, nil
}

// Pull downloads the profile stored at ref and returns its bytes and layer
// media type.
func Pull(ctx context.Context, ref *Reference, opts RegistryOptions) ([]byte, string, error) {
	repo, err := newRepository(ref, opts)
	if err != nil {
		return nil, "", err
	}
	slog.Debug("pulling profile", "reference", ref.String())
	return PullFrom(ctx, repo, ref.Tag)
}

// PullFrom reads the profile tagged tag from src.
func PullFrom(ctx context.Context, src oras.ReadOnlyTarget, tag string) ([]byte, string, error) {
	_, raw, err := oras.FetchBytes(ctx, src, tag, oras.DefaultFetchBytesOptions)
	if err != nil {
		return nil, "", apperrors.WrapWithContext(apperrors.ErrCodeNotFound, "failed to fetch manifest", err,
			map[string]any{"tag": tag})
	}
	var m ociv1.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to decode manifest", err)
	}
	if m.ArtifactType != ArtifactType {
		return nil, "", apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "artifact is not a bootcfg profile",
			map[string]any{"artifactType": m.ArtifactType})
	}
	for _, l := range m.Layers {
		if l.MediaType != MediaTypeProfileYAML && l.MediaType != MediaTypeProfileJSON {
			continue
		}
		data, err := content.FetchAll(ctx, src, l)
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to fetch profile layer", err)
		}
		return data, l.MediaType, nil
	}
	return nil, "", apperrors.New(apperrors.ErrCodeNotFound, "artifact holds no profile layer")
}

func newRepository(ref *Reference, opts RegistryOptions) (*remote.Repository, error) {
	if ref == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	repo, err := remote.NewRepository(ref.Repo())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)
	return repo, nil
}

// createAuthClient uses Docker credentials when available.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credentials unavailable", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	c := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		c.Credential = credentials.Credential(credStore)
	}
	return c
}
