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

package defaults

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ProbeTimeout", ProbeTimeout, 1 * time.Second, 30 * time.Second},
		{"MkconfigTimeout", MkconfigTimeout, 30 * time.Second, 10 * time.Minute},
		{"InstallTimeout", InstallTimeout, 1 * time.Minute, 15 * time.Minute},
		{"PartedTimeout", PartedTimeout, 5 * time.Second, 2 * time.Minute},
		{"SetDefaultTimeout", SetDefaultTimeout, 5 * time.Second, 2 * time.Minute},
		{"ConfigMapWriteTimeout", ConfigMapWriteTimeout, 10 * time.Second, 60 * time.Second},
		{"OCIPushTimeout", OCIPushTimeout, 30 * time.Second, 10 * time.Minute},
		{"HTTPClientTimeout", HTTPClientTimeout, 5 * time.Second, 2 * time.Minute},
		{"HTTPConnectTimeout", HTTPConnectTimeout, 1 * time.Second, 30 * time.Second},
		{"ServerReadTimeout", ServerReadTimeout, 1 * time.Second, 1 * time.Minute},
		{"ServerWriteTimeout", ServerWriteTimeout, 5 * time.Second, 2 * time.Minute},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 5 * time.Minute},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 5 * time.Second, 2 * time.Minute},
		{"AgentJobTimeout", AgentJobTimeout, 1 * time.Minute, 30 * time.Minute},
		{"AgentJobDeletionTimeout", AgentJobDeletionTimeout, 5 * time.Second, 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s = %v, below minimum %v", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s = %v, above maximum %v", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestPathsAreAbsolute(t *testing.T) {
	paths := []string{
		GrubDefaultPath,
		GrubCfgPath,
		GrubEnvPath,
		PasswordScriptPath,
		SysconfigBootloaderPath,
		SysconfigLanguagePath,
		FstabPath,
		ConfigPath,
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			t.Errorf("path %q is not absolute", p)
		}
		if strings.HasSuffix(p, "/") {
			t.Errorf("path %q has trailing slash", p)
		}
	}
}
