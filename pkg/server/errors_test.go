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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code apperrors.ErrorCode
		want int
	}{
		{apperrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{apperrors.ErrCodeInvalidSerialConsole, http.StatusBadRequest},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeUnknownDevice, http.StatusNotFound},
		{apperrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{apperrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{apperrors.ErrCodeUnsupportedPlatform, http.StatusNotImplemented},
		{apperrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{apperrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{apperrors.ErrCodeBrokenConfiguration, http.StatusInternalServerError},
		{apperrors.ErrCodeInternal, http.StatusInternalServerError},
		{apperrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	tests := []struct {
		code apperrors.ErrorCode
		want bool
	}{
		{apperrors.ErrCodeInvalidRequest, false},
		{apperrors.ErrCodeNotFound, false},
		{apperrors.ErrCodeMethodNotAllowed, false},
		{apperrors.ErrCodeBrokenConfiguration, false},
		{apperrors.ErrCodeTimeout, true},
		{apperrors.ErrCodeUnavailable, true},
		{apperrors.ErrCodeRateLimitExceeded, true},
		{apperrors.ErrCodeInternal, true},
		{apperrors.ErrorCode("SOMETHING_ELSE"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, retryableFromCode(tt.code))
		})
	}
}

func TestMergeDetails(t *testing.T) {
	assert.Nil(t, mergeDetails(nil, nil))
	assert.Nil(t, mergeDetails(map[string]any{}, map[string]any{}))

	got := mergeDetails(
		map[string]any{"a": 1, "shared": "old"},
		map[string]any{"b": 2, "shared": "new"},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "shared": "new"}, got)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-123"))
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest, "bad request", false, map[string]any{"k": "v"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decodeError(t, w)
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
	assert.Equal(t, "bad request", resp.Message)
	assert.Equal(t, "req-123", resp.RequestID)
	assert.False(t, resp.Retryable)
	assert.Equal(t, "v", resp.Details["k"])
	assert.False(t, resp.Timestamp.IsZero())
}

func TestWriteErrorGeneratesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound,
		apperrors.ErrCodeNotFound, "missing", false, nil)

	resp := decodeError(t, w)
	assert.NotEmpty(t, resp.RequestID)
	assert.Nil(t, resp.Details)
}

func TestWriteErrorFromErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
		wantRetry  bool
		wantDetail map[string]any
	}{
		{
			name:       "structured with context and cause",
			err:        apperrors.WrapWithContext(apperrors.ErrCodeUnavailable, "grubenv locked", errors.New("busy"), map[string]any{"file": "grubenv"}),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
			wantMsg:    "grubenv locked",
			wantRetry:  true,
			wantDetail: map[string]any{"file": "grubenv", "extra": "yes", "error": "busy"},
		},
		{
			name:       "wrapped structured",
			err:        errors.Join(errors.New("outer"), apperrors.New(apperrors.ErrCodeBrokenConfiguration, "grub defaults missing")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "BROKEN_CONFIGURATION",
			wantMsg:    "grub defaults missing",
			wantDetail: map[string]any{"extra": "yes"},
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "fallback",
			wantRetry:  true,
			wantDetail: map[string]any{"extra": "yes", "error": "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteErrorFromErr(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "fallback", map[string]any{"extra": "yes"})

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.wantRetry, resp.Retryable)
			assert.Equal(t, tt.wantDetail, resp.Details)
		})
	}
}
