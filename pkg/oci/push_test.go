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
	"encoding/json"
	"testing"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
)

const profileYAML = "kind: BootloaderProfile\napiVersion: bootcfg.nvidia.com/v1alpha1\nspec:\n  timeout: \"3\"\n"

func TestPushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	dst := memory.New()

	res, err := PushTo(ctx, dst, "gpu", []byte(profileYAML), PushOptions{
		Title:   "profile.yaml",
		Version: "v1.0.0",
		Created: "2025-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Digest)

	data, mediaType, err := PullFrom(ctx, dst, "gpu")
	require.NoError(t, err)
	assert.Equal(t, profileYAML, string(data))
	assert.Equal(t, MediaTypeProfileYAML, mediaType)

	_, raw, err := oras.FetchBytes(ctx, dst, "gpu", oras.DefaultFetchBytesOptions)
	require.NoError(t, err)
	var m ociv1.Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, ArtifactType, m.ArtifactType)
	assert.Equal(t, "v1.0.0", m.Annotations[ociv1.AnnotationVersion])
	assert.Equal(t, "2025-01-01T00:00:00Z", m.Annotations[ociv1.AnnotationCreated])
	require.Len(t, m.Layers, 1)
	assert.Equal(t, "profile.yaml", m.Layers[0].Annotations[ociv1.AnnotationTitle])
}

func TestPushReproducible(t *testing.T) {
	ctx := context.Background()
	opts := PushOptions{MediaType: MediaTypeProfileJSON, Created: "2025-01-01T00:00:00Z"}

	a, err := PushTo(ctx, memory.New(), "t", []byte(`{"spec":{}}`), opts)
	require.NoError(t, err)
	b, err := PushTo(ctx, memory.New(), "t", []byte(`{"spec":{}}`), opts)
	require.NoError(t, err)
	assert.Equal(t, a.Digest, b.Digest)
}

func TestPushToValidation(t *testing.T) {
	ctx := context.Background()

	_, err := PushTo(ctx, memory.New(), "", []byte("x"), PushOptions{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))

	_, err = PushTo(ctx, memory.New(), "t", nil, PushOptions{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))

	_, err = Push(ctx, nil, []byte("x"), PushOptions{})
	assert.Error(t, err)
}

func TestPullFromErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, _, err := PullFrom(ctx, store, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

	layer, err := oras.PushBytes(ctx, store, "text/plain", []byte("other"))
	require.NoError(t, err)
	desc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, "application/vnd.example",
		oras.PackManifestOptions{Layers: []ociv1.Descriptor{layer}})
	require.NoError(t, err)
	require.NoError(t, store.Tag(ctx, desc, "foreign"))

	_, _, err = PullFrom(ctx, store, "foreign")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))
}
