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
	"log/slog"
	"regexp"
	"slices"

	"github.com/NVIDIA/bootcfg/pkg/grub"
	"github.com/NVIDIA/bootcfg/pkg/install"
	"github.com/NVIDIA/bootcfg/pkg/kernel"
	"k8s.io/utils/ptr"
)

var resumeMatcher = kernel.Matcher{Key: "resume", ValueMatcher: regexp.MustCompile(`.+`)}

// Merge applies other on top of g. Settings other leaves undecided do not
// touch g; the password is always taken from other.
func (g *Grub2) Merge(other *Grub2) {
	if other == nil {
		return
	}
	d, od := g.Default, other.Default

	for _, f := range []struct {
		dst **string
		src *string
	}{
		{&d.SerialConsole, od.SerialConsole},
		{&d.Timeout, od.Timeout},
		{&d.HiddenTimeout, od.HiddenTimeout},
		{&d.Distributor, od.Distributor},
		{&d.Gfxmode, od.Gfxmode},
		{&d.Theme, od.Theme},
		{&d.DefaultEntry, od.DefaultEntry},
	} {
		if f.src != nil {
			*f.dst = ptr.To(*f.src)
		}
	}

	if raw := od.RawTerminal(); raw != nil {
		d.SetRawTerminal(raw)
	}
	for _, k := range od.Generic.Keys() {
		v, _ := od.Generic.Get(k)
		d.Generic.Set(k, v)
	}
	if od.OSProber.Defined() {
		d.OSProber = od.OSProber
	}
	if od.Cryptodisk.Defined() {
		d.Cryptodisk = od.Cryptodisk
	}

	mergeKernelList(d.KernelParams, od.KernelParams)
	mergeKernelList(d.XenHypervisorParams, od.XenHypervisorParams)
	mergeKernelList(d.XenKernelParams, od.XenKernelParams)

	if m, ok := other.ExplicitCPUMitigations(); ok {
		if err := g.SetCPUMitigations(m); err != nil {
			g.logger.Warn("keeping merged CPU mitigations", slog.String("value", m.String()),
				slog.String("error", err.Error()))
		}
	}

	g.Password = other.Password.Clone()

	if other.PMBRAction != "" && other.PMBRAction != install.PMBRNothing {
		g.PMBRAction = other.PMBRAction
	}
	if other.Sections != nil && other.Sections.Default != "" {
		if g.Sections == nil {
			g.Sections = &Sections{}
		}
		g.Sections.Default = other.Sections.Default
	}
	if other.TrustedBoot != nil {
		g.TrustedBoot = ptr.To(*other.TrustedBoot)
	}
	if other.SecureBoot != nil {
		g.SecureBoot = ptr.To(*other.SecureBoot)
	}

	mergeTotal.Inc()
	kernelParamsGauge.Set(float64(d.KernelParams.Len()))
}

// mergeKernelList appends override to base and drops exact duplicate tokens,
// keeping the last occurrence. A noresume in override cancels any resume
// target in base and an override mitigations token cancels base's.
func mergeKernelList(base, override *kernel.List) {
	if override.Empty() {
		return
	}
	if override.Parameter("noresume").Present() {
		base.RemoveParameter(resumeMatcher)
	}
	if override.Parameter("mitigations").Present() {
		base.RemoveParameter(grub.MitigationsMatcher)
	}

	tokens := append(base.Tokens(), override.Tokens()...)
	slices.Reverse(tokens)
	seen := make(map[string]struct{}, len(tokens))
	kept := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		kept = append(kept, t)
	}
	slices.Reverse(kept)
	base.SetTokens(kept)
}
