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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "resource not found")

	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "resource not found" {
		t.Errorf("expected message 'resource not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("no such device")
	ctx := map[string]any{
		"device": "/dev/sdz1",
	}

	err := WrapWithContext(ErrCodeUnknownDevice, "resolve failed", cause, ctx)

	if err.Code != ErrCodeUnknownDevice {
		t.Errorf("expected code %s, got %s", ErrCodeUnknownDevice, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["device"] != "/dev/sdz1" {
		t.Errorf("expected device to be /dev/sdz1")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeBrokenConfiguration, "file missing"),
			expected: "[BROKEN_CONFIGURATION] file missing",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	inner := New(ErrCodeUnsupportedPlatform, "no efi on s390")
	wrapped := fmt.Errorf("install: %w", inner)

	if got := CodeOf(wrapped); got != ErrCodeUnsupportedPlatform {
		t.Errorf("CodeOf() = %q, want %q", got, ErrCodeUnsupportedPlatform)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeUnknownDevice, "unknown device")
	outer := Wrap(ErrCodeBrokenConfiguration, "propose failed", inner)

	if !IsCode(outer, ErrCodeBrokenConfiguration) {
		t.Error("expected outer code to match")
	}
	if !IsCode(outer, ErrCodeUnknownDevice) {
		t.Error("expected nested code to match")
	}
	if IsCode(outer, ErrCodeTimeout) {
		t.Error("unexpected match for TIMEOUT")
	}
	if IsCode(nil, ErrCodeInternal) {
		t.Error("nil error must not match")
	}
}
