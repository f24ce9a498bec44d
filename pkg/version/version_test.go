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

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr error
	}{
		{in: "v1.2.3", want: Version{1, 2, 3, ""}},
		{in: "1.2", want: Version{1, 2, 0, ""}},
		{in: "2", want: Version{2, 0, 0, ""}},
		{in: "v0.4.1-rc.1", want: Version{0, 4, 1, "-rc.1"}},
		{in: "1.0.0+build.5", want: Version{1, 0, 0, "+build.5"}},
		{in: "", wantErr: ErrEmptyVersion},
		{in: "dev", wantErr: ErrMalformed},
		{in: "1.2.3.4", wantErr: ErrMalformed},
		{in: "1..2", wantErr: ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"1.3.0", "1.2.9", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.2", "1.2.0", 0},
		{"1.2.3-rc.1", "1.2.3", 0},
	}
	for _, tt := range tests {
		a, b := mustParse(t, tt.a), mustParse(t, tt.b)
		assert.Equal(t, tt.want, a.Compare(b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, tt.want > 0, a.IsNewer(b))
	}
}

func TestCurrent(t *testing.T) {
	i := Current()
	assert.Equal(t, Tag, i.Version)
	assert.Contains(t, i.String(), Commit)
	assert.Equal(t, "v1.0.0", Version{Major: 1}.String())
}

func mustParse(t *testing.T, s string) Version {
	t.Helper()
	v, err := ParseVersion(s)
	require.NoError(t, err)
	return v
}
