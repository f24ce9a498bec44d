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
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
)

// HTTPReaderUserAgent identifies profile downloads.
const HTTPReaderUserAgent = "bootcfg/1.0"

// HTTPReaderOption configures an HTTPReader.
type HTTPReaderOption func(*HTTPReader)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) HTTPReaderOption {
	return func(r *HTTPReader) {
		r.client = c
	}
}

// WithMaxSize caps the accepted response size in bytes.
func WithMaxSize(n int64) HTTPReaderOption {
	return func(r *HTTPReader) {
		r.maxSize = n
	}
}

// HTTPReader downloads profiles over HTTP(S).
type HTTPReader struct {
	client  *http.Client
	maxSize int64
}

// NewHTTPReader returns a reader with bounded timeouts and TLS 1.2+.
func NewHTTPReader(opts ...HTTPReaderOption) *HTTPReader {
	r := &HTTPReader{
		client: &http.Client{
			Timeout: defaults.HTTPClientTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: defaults.HTTPConnectTimeout}).DialContext,
				TLSHandshakeTimeout: defaults.HTTPConnectTimeout,
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				IdleConnTimeout:     30 * time.Second,
			},
		},
		maxSize: defaults.HTTPMaxProfileSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read fetches url. Non-200 responses and bodies over the size cap fail.
func (r *HTTPReader) Read(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", HTTPReaderUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed for url %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, r.maxSize)
	}
	return data, nil
}
