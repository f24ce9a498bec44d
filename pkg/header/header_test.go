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

package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	h := New(WithKind(KindBootloaderProfile), WithMetadata("owner", "ops"))
	assert.Equal(t, KindBootloaderProfile, h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "ops", h.Metadata["owner"])
	assert.Same(t, h, h.GetHeader())
}

func TestInit(t *testing.T) {
	h := New(WithMetadata("stale", "x"), WithAPIVersion("old/v0"))
	h.Init(KindBootloaderConfig, "v1.0.0")
	assert.Equal(t, KindBootloaderConfig, h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "v1.0.0", h.Metadata["version"])
	assert.NotEmpty(t, h.Metadata["timestamp"])
	assert.NotContains(t, h.Metadata, "stale")

	h.Init(KindBootloaderProfile, "")
	assert.NotContains(t, h.Metadata, "version")
}

func TestKind(t *testing.T) {
	assert.True(t, KindBootloaderConfig.IsValid())
	assert.True(t, KindBootloaderProfile.IsValid())
	assert.False(t, Kind("Snapshot").IsValid())
	assert.Equal(t, "BootloaderProfile", KindBootloaderProfile.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		header   Header
		expected Kind
		running  string
		wantErr  bool
	}{
		{
			name:     "matching",
			header:   Header{Kind: KindBootloaderProfile, APIVersion: APIVersion},
			expected: KindBootloaderProfile,
			running:  "v1.0.0",
		},
		{
			name:     "wrong kind",
			header:   Header{Kind: KindBootloaderConfig, APIVersion: APIVersion},
			expected: KindBootloaderProfile,
			wantErr:  true,
		},
		{
			name:     "wrong api version",
			header:   Header{Kind: KindBootloaderProfile, APIVersion: "bootcfg.nvidia.com/v2"},
			expected: KindBootloaderProfile,
			wantErr:  true,
		},
		{
			name:     "written by newer release",
			header:   Header{Kind: KindBootloaderProfile, APIVersion: APIVersion, Metadata: map[string]string{"version": "v2.0.0"}},
			expected: KindBootloaderProfile,
			running:  "v1.4.0",
			wantErr:  true,
		},
		{
			name:     "written by older release",
			header:   Header{Kind: KindBootloaderProfile, APIVersion: APIVersion, Metadata: map[string]string{"version": "v1.0.0"}},
			expected: KindBootloaderProfile,
			running:  "v1.4.0",
		},
		{
			name:     "dev build skips version check",
			header:   Header{Kind: KindBootloaderProfile, APIVersion: APIVersion, Metadata: map[string]string{"version": "v9.0.0"}},
			expected: KindBootloaderProfile,
			running:  "dev",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.header.Validate(tt.expected, tt.running)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
