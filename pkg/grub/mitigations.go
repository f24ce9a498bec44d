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

package grub

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/NVIDIA/bootcfg/pkg/kernel"
)

// ErrManualMitigations is returned when asked to write the manual setting,
// which has no single kernel value.
var ErrManualMitigations = errors.New("manual CPU mitigations cannot be written to the kernel command line")

// CPUMitigations is the kernel "mitigations=" policy.
type CPUMitigations string

const (
	MitigationsAuto   CPUMitigations = "auto"
	MitigationsNoSMT  CPUMitigations = "nosmt"
	MitigationsOff    CPUMitigations = "off"
	MitigationsManual CPUMitigations = "manual"
)

// DefaultMitigations applies when the kernel line says nothing.
const DefaultMitigations = MitigationsAuto

const mitigationsKey = "mitigations"

var kernelValues = map[CPUMitigations]string{
	MitigationsAuto:  "auto",
	MitigationsNoSMT: "auto,nosmt",
	MitigationsOff:   "off",
}

// ParseCPUMitigations accepts the user-facing names auto, nosmt, off and manual.
func ParseCPUMitigations(s string) (CPUMitigations, error) {
	switch m := CPUMitigations(s); m {
	case MitigationsAuto, MitigationsNoSMT, MitigationsOff, MitigationsManual:
		return m, nil
	default:
		return "", fmt.Errorf("unknown CPU mitigations %q, expected one of auto, nosmt, off, manual", s)
	}
}

// MitigationsFromKernelParams reads the last mitigations= token. Any value
// other than the known ones means the user manages mitigations by hand.
func MitigationsFromKernelParams(l *kernel.List) CPUMitigations {
	v := l.Parameter(mitigationsKey)
	if !v.Present() {
		return DefaultMitigations
	}
	if v.IsFlag() {
		return MitigationsManual
	}
	for m, kv := range kernelValues {
		if kv == v.String() {
			return m
		}
	}
	return MitigationsManual
}

// KernelValue returns the value written after "mitigations=".
func (m CPUMitigations) KernelValue() (string, error) {
	v, ok := kernelValues[m]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrManualMitigations, m)
	}
	return v, nil
}

// Modify drops every mitigations token from l and appends the one for m.
// l is unchanged on error.
func (m CPUMitigations) Modify(l *kernel.List) error {
	v, err := m.KernelValue()
	if err != nil {
		return err
	}
	l.RemoveParameter(kernel.Matcher{Key: mitigationsKey})
	l.AddParameter(mitigationsKey, v, kernel.AppendPlacer{})
	return nil
}

// String implements fmt.Stringer.
func (m CPUMitigations) String() string { return string(m) }

// MitigationsMatcher selects any mitigations token with a value.
var MitigationsMatcher = kernel.Matcher{Key: mitigationsKey, ValueMatcher: regexp.MustCompile(`.+`)}
