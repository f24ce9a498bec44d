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

package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name   string            `json:"name" yaml:"name"`
	Count  int               `json:"count" yaml:"count"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Tags   []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func TestWriterFormats(t *testing.T) {
	d := doc{Name: "grub", Count: 2, Labels: map[string]string{"b": "2", "a": "1"}, Tags: []string{"x"}}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatJSON, []string{`"name": "grub"`, `"count": 2`}},
		{FormatYAML, []string{"name: grub", "count: 2", "labels:\n  a: \"1\""}},
		{FormatTable, []string{"FIELD", "labels.a", "tags.[0]"}},
		{Format("xml"), []string{`"name": "grub"`}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(tt.format, &buf)
			require.NoError(t, w.Serialize(context.Background(), d))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestWriterTableSorted(t *testing.T) {
	b, err := Marshal(FormatTable, map[string]any{"z": 1, "a": "x", "m": nil})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[2], "a "))
	assert.True(t, strings.HasPrefix(lines[3], "m "))
	assert.Contains(t, lines[3], "<nil>")
	assert.True(t, strings.HasPrefix(lines[4], "z "))

	b, err = Marshal(FormatTable, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "<empty>\n", string(b))
}

func TestNewFileWriterOrStdout(t *testing.T) {
	s, err := NewFileWriterOrStdout(FormatJSON, "  ")
	require.NoError(t, err)
	assert.IsType(t, &Writer{}, s)

	s, err = NewFileWriterOrStdout(FormatYAML, "cm://ns/name")
	require.NoError(t, err)
	cw, ok := s.(*ConfigMapWriter)
	require.True(t, ok)
	assert.Equal(t, "ns", cw.namespace)
	assert.Equal(t, "name", cw.name)

	_, err = NewFileWriterOrStdout(FormatYAML, "cm://ns")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	s, err = NewFileWriterOrStdout(FormatYAML, path)
	require.NoError(t, err)
	require.NoError(t, s.Serialize(context.Background(), doc{Name: "file"}))
	w := s.(*Writer)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "name: file")

	_, err = NewFileWriterOrStdout(FormatJSON, filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.Error(t, err)
}
