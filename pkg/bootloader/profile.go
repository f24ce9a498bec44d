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

package bootloader

import (
	"maps"
	"slices"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/grub"
	"github.com/NVIDIA/bootcfg/pkg/header"
	"github.com/NVIDIA/bootcfg/pkg/install"
	"github.com/NVIDIA/bootcfg/pkg/kernel"
	"k8s.io/utils/ptr"
)

// Profile is the portable form of a configuration. Fields left out are
// undecided, so a profile can describe just the settings it wants to change.
type Profile struct {
	header.Header `json:",inline" yaml:",inline"`

	Spec   ProfileSpec    `json:"spec" yaml:"spec"`
	Status *ProfileStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// ProfileSpec holds the settings.
type ProfileSpec struct {
	KernelParams        *string `json:"kernelParams,omitempty" yaml:"kernelParams,omitempty"`
	XenHypervisorParams *string `json:"xenHypervisorParams,omitempty" yaml:"xenHypervisorParams,omitempty"`
	XenKernelParams     *string `json:"xenKernelParams,omitempty" yaml:"xenKernelParams,omitempty"`

	Timeout       *string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	HiddenTimeout *string `json:"hiddenTimeout,omitempty" yaml:"hiddenTimeout,omitempty"`
	Distributor   *string `json:"distributor,omitempty" yaml:"distributor,omitempty"`
	Gfxmode       *string `json:"gfxmode,omitempty" yaml:"gfxmode,omitempty"`
	Theme         *string `json:"theme,omitempty" yaml:"theme,omitempty"`
	DefaultEntry  *string `json:"defaultEntry,omitempty" yaml:"defaultEntry,omitempty"`
	SerialConsole *string `json:"serialConsole,omitempty" yaml:"serialConsole,omitempty"`
	Terminal      []string `json:"terminal,omitempty" yaml:"terminal,omitempty"`

	OSProber      *bool `json:"osProber,omitempty" yaml:"osProber,omitempty"`
	Cryptodisk    *bool `json:"cryptodisk,omitempty" yaml:"cryptodisk,omitempty"`
	RecoveryEntry *bool `json:"recoveryEntry,omitempty" yaml:"recoveryEntry,omitempty"`

	Generic map[string]string `json:"generic,omitempty" yaml:"generic,omitempty"`

	// CPUMitigations is applied as an explicit choice.
	CPUMitigations string `json:"cpuMitigations,omitempty" yaml:"cpuMitigations,omitempty"`
	PMBRAction     string `json:"pmbrAction,omitempty" yaml:"pmbrAction,omitempty"`
	DefaultSection string `json:"defaultSection,omitempty" yaml:"defaultSection,omitempty"`

	Password    *ProfilePassword `json:"password,omitempty" yaml:"password,omitempty"`
	TrustedBoot *bool            `json:"trustedBoot,omitempty" yaml:"trustedBoot,omitempty"`
	SecureBoot  *bool            `json:"secureBoot,omitempty" yaml:"secureBoot,omitempty"`
}

// ProfilePassword protects the boot menu. Plain is hashed on load and never
// written back.
type ProfilePassword struct {
	Encrypted    string `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
	Plain        string `json:"plain,omitempty" yaml:"plain,omitempty"`
	Unrestricted bool   `json:"unrestricted,omitempty" yaml:"unrestricted,omitempty"`
}

// ProfileStatus is read-only information added when exporting a system.
type ProfileStatus struct {
	CPUMitigations string   `json:"cpuMitigations" yaml:"cpuMitigations"`
	Sections       []string `json:"sections,omitempty" yaml:"sections,omitempty"`
	Summary        []string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// ToProfile exports g. Kernel lines are always written; other settings only
// when decided.
func (g *Grub2) ToProfile(kind header.Kind, toolVersion string) *Profile {
	d := g.Default
	p := &Profile{}
	p.Init(kind, toolVersion)

	s := &p.Spec
	s.KernelParams = ptr.To(d.KernelParams.Serialize())
	s.XenHypervisorParams = ptr.To(d.XenHypervisorParams.Serialize())
	s.XenKernelParams = ptr.To(d.XenKernelParams.Serialize())
	s.Timeout = clonePtr(d.Timeout)
	s.HiddenTimeout = clonePtr(d.HiddenTimeout)
	s.Distributor = clonePtr(d.Distributor)
	s.Gfxmode = clonePtr(d.Gfxmode)
	s.Theme = clonePtr(d.Theme)
	s.DefaultEntry = clonePtr(d.DefaultEntry)
	s.SerialConsole = clonePtr(d.SerialConsole)
	if raw := d.RawTerminal(); raw != nil {
		s.Terminal = strings.Fields(*raw)
		if s.Terminal == nil {
			s.Terminal = []string{}
		}
	}
	s.OSProber = d.OSProber.Ptr()
	s.Cryptodisk = d.Cryptodisk.Ptr()
	s.RecoveryEntry = d.RecoveryEntry.Ptr()
	if d.Generic.Len() > 0 {
		s.Generic = d.Generic.Map()
	}
	if m, ok := g.ExplicitCPUMitigations(); ok {
		s.CPUMitigations = m.String()
	}
	if g.PMBRAction != install.PMBRNothing {
		s.PMBRAction = string(g.PMBRAction)
	}
	if g.Sections != nil {
		s.DefaultSection = g.Sections.Default
	}
	if g.Password != nil {
		s.Password = &ProfilePassword{
			Encrypted:    g.Password.Encrypted,
			Unrestricted: g.Password.Unrestricted,
		}
	}
	s.TrustedBoot = clonePtr(g.TrustedBoot)
	s.SecureBoot = clonePtr(g.SecureBoot)

	if kind == header.KindBootloaderConfig {
		p.Status = &ProfileStatus{
			CPUMitigations: g.CPUMitigations().String(),
			Summary:        g.Summary(),
		}
		if g.Sections != nil {
			p.Status.Sections = g.Sections.Names()
		}
	}
	return p
}

// FromProfile builds a configuration holding only what p decides. Options
// are applied as for New.
func FromProfile(p *Profile, opts ...Option) (*Grub2, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "profile is required")
	}
	g := New(opts...)
	d := g.Default
	s := p.Spec

	for _, l := range []struct {
		name string
		text *string
		dst  *kernel.List
	}{
		{"kernelParams", s.KernelParams, d.KernelParams},
		{"xenHypervisorParams", s.XenHypervisorParams, d.XenHypervisorParams},
		{"xenKernelParams", s.XenKernelParams, d.XenKernelParams},
	} {
		if l.text == nil {
			continue
		}
		if err := l.dst.Replace(*l.text); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid kernel parameters in profile", err,
				map[string]any{"field": l.name})
		}
	}

	d.Timeout = clonePtr(s.Timeout)
	d.HiddenTimeout = clonePtr(s.HiddenTimeout)
	d.Distributor = clonePtr(s.Distributor)
	d.Gfxmode = clonePtr(s.Gfxmode)
	d.Theme = clonePtr(s.Theme)
	d.DefaultEntry = clonePtr(s.DefaultEntry)
	d.SerialConsole = clonePtr(s.SerialConsole)
	if s.Terminal != nil {
		d.SetRawTerminal(ptr.To(strings.Join(s.Terminal, " ")))
	}
	d.OSProber = grub.BoolFromPtr(s.OSProber)
	d.Cryptodisk = grub.BoolFromPtr(s.Cryptodisk)
	d.RecoveryEntry = grub.BoolFromPtr(s.RecoveryEntry)
	for _, k := range slices.Sorted(maps.Keys(s.Generic)) {
		d.Generic.Set(k, s.Generic[k])
	}

	if s.CPUMitigations != "" {
		m, err := grub.ParseCPUMitigations(s.CPUMitigations)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid CPU mitigations in profile", err)
		}
		if err := g.SetCPUMitigations(m); err != nil {
			return nil, err
		}
	}

	action, err := install.ParsePMBRAction(s.PMBRAction)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid PMBR action in profile", err)
	}
	g.PMBRAction = action
	g.Sections.Default = s.DefaultSection

	if pw := s.Password; pw != nil {
		switch {
		case pw.Plain != "":
			if g.Password, err = NewPassword(pw.Plain, pw.Unrestricted); err != nil {
				return nil, err
			}
		case pw.Encrypted != "":
			g.Password = &Password{Encrypted: pw.Encrypted, Unrestricted: pw.Unrestricted}
		}
	}
	g.TrustedBoot = clonePtr(s.TrustedBoot)
	g.SecureBoot = clonePtr(s.SecureBoot)
	return g, nil
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return ptr.To(*v)
}
